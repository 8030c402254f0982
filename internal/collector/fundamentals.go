package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockOracle/internal/model"
)

// YahooSummaryProvider implements MetricsProvider with the quoteSummary API.
type YahooSummaryProvider struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooSummaryProvider creates a provider with optional proxy support.
func NewYahooSummaryProvider(proxyURL string, timeout time.Duration) *YahooSummaryProvider {
	return &YahooSummaryProvider{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

const summaryModules = "price,summaryDetail,defaultKeyStatistics,financialData,assetProfile,earningsTrend,incomeStatementHistory"

// yfValue is Yahoo's {"raw": 1.2, "fmt": "1.20"} number wrapper. Missing
// values arrive as {} so Raw stays nil.
type yfValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type yfTrend struct {
	Period           string   `json:"period"`
	Growth           *yfValue `json:"growth"`
	EarningsEstimate struct {
		Avg        *yfValue `json:"avg"`
		YearAgoEps *yfValue `json:"yearAgoEps"`
	} `json:"earningsEstimate"`
	RevenueEstimate struct {
		Avg    *yfValue `json:"avg"`
		Growth *yfValue `json:"growth"`
	} `json:"revenueEstimate"`
	EpsTrend struct {
		Current *yfValue `json:"current"`
	} `json:"epsTrend"`
	EpsRevisions struct {
		UpLast7days  *yfValue `json:"upLast7days"`
		UpLast30days *yfValue `json:"upLast30days"`
	} `json:"epsRevisions"`
}

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail *struct {
				PreviousClose    *yfValue `json:"previousClose"`
				Open             *yfValue `json:"open"`
				DayLow           *yfValue `json:"dayLow"`
				DayHigh          *yfValue `json:"dayHigh"`
				FiftyTwoWeekLow  *yfValue `json:"fiftyTwoWeekLow"`
				FiftyTwoWeekHigh *yfValue `json:"fiftyTwoWeekHigh"`
				Volume           *yfValue `json:"volume"`
				MarketCap        *yfValue `json:"marketCap"`
				TrailingPE       *yfValue `json:"trailingPE"`
				DividendYield    *yfValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			FinancialData *struct {
				CurrentPrice *yfValue `json:"currentPrice"`
			} `json:"financialData"`
			DefaultKeyStatistics *struct {
				TrailingEps       *yfValue `json:"trailingEps"`
				SharesOutstanding *yfValue `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
				Website  string `json:"website"`
			} `json:"assetProfile"`
			EarningsTrend *struct {
				Trend []yfTrend `json:"trend"`
			} `json:"earningsTrend"`
			IncomeStatementHistory *struct {
				Statements []struct {
					EndDate   *yfValue `json:"endDate"`
					NetIncome *yfValue `json:"netIncome"`
				} `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func putNumber(m model.Metrics, key string, v *yfValue) {
	if v != nil && v.Raw != nil {
		m[key] = *v.Raw
	}
}

func putPercent(m model.Metrics, key string, v *yfValue) {
	if v != nil && v.Raw != nil {
		m[key] = fmt.Sprintf("%.2f%%", *v.Raw*100)
	}
}

func putString(m model.Metrics, key, v string) {
	if v != "" {
		m[key] = v
	}
}

// FetchFundamentals downloads the company snapshot, analyst estimates and
// the annual EPS trend (net income over shares outstanding).
func (p *YahooSummaryProvider) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", p.BaseURL, url.PathEscape(symbol), summaryModules)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo summary fetch: %w", err)
	}
	defer resp.Body.Close()

	var out yfSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("yahoo summary: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("yahoo summary decode: %w", err)
	}
	if out.QuoteSummary.Error != nil {
		return nil, model.DataErrorf("no fundamentals for %q: %s", symbol, out.QuoteSummary.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo summary: status %d", resp.StatusCode)
	}
	if len(out.QuoteSummary.Result) == 0 {
		return nil, model.DataErrorf("no fundamentals for %q", symbol)
	}
	r := out.QuoteSummary.Result[0]

	f := &model.Fundamentals{
		Symbol:   symbol,
		Source:   "yahoo",
		Overview: model.Metrics{"Symbol": symbol},
		Analysis: model.Metrics{},
	}
	ov := f.Overview
	if r.FinancialData != nil {
		putNumber(ov, "Current Price", r.FinancialData.CurrentPrice)
	}
	if sd := r.SummaryDetail; sd != nil {
		putNumber(ov, "Previous Close", sd.PreviousClose)
		putNumber(ov, "Open", sd.Open)
		putNumber(ov, "Day Low", sd.DayLow)
		putNumber(ov, "Day High", sd.DayHigh)
		putNumber(ov, "52 Week Low", sd.FiftyTwoWeekLow)
		putNumber(ov, "52 Week High", sd.FiftyTwoWeekHigh)
		putNumber(ov, "Volume", sd.Volume)
		putNumber(ov, "Market Cap", sd.MarketCap)
		putNumber(ov, "PE Ratio", sd.TrailingPE)
		putNumber(ov, "Dividend Yield", sd.DividendYield)
	}
	var shares *yfValue
	if ks := r.DefaultKeyStatistics; ks != nil {
		putNumber(ov, "EPS", ks.TrailingEps)
		shares = ks.SharesOutstanding
	}
	if ap := r.AssetProfile; ap != nil {
		putString(ov, "Sector", ap.Sector)
		putString(ov, "Industry", ap.Industry)
		putString(ov, "Website", ap.Website)
	}

	if r.EarningsTrend != nil {
		mapAnalysis(f.Analysis, r.EarningsTrend.Trend)
	}

	if r.IncomeStatementHistory != nil && shares != nil && shares.Raw != nil && *shares.Raw != 0 {
		for _, st := range r.IncomeStatementHistory.Statements {
			if st.EndDate == nil || st.EndDate.Raw == nil || st.NetIncome == nil || st.NetIncome.Raw == nil {
				continue
			}
			f.EPSTrend = append(f.EPSTrend, model.EPSPoint{
				Period: dateOnly(time.Unix(int64(*st.EndDate.Raw), 0).UTC()),
				EPS:    *st.NetIncome.Raw / *shares.Raw,
			})
		}
		sort.Slice(f.EPSTrend, func(i, j int) bool { return f.EPSTrend[i].Period.Before(f.EPSTrend[j].Period) })
	}
	return f, nil
}

func mapAnalysis(m model.Metrics, trends []yfTrend) {
	byPeriod := make(map[string]yfTrend, len(trends))
	for _, t := range trends {
		byPeriod[t.Period] = t
	}
	if q, ok := byPeriod["0q"]; ok {
		putNumber(m, "Revenue Estimate - Current Qtr", q.RevenueEstimate.Avg)
		putNumber(m, "EPS Trend - Current Qtr", q.EpsTrend.Current)
		putNumber(m, "Current Estimate", q.EarningsEstimate.Avg)
		putNumber(m, "Up Last 7 Days", q.EpsRevisions.UpLast7days)
		putNumber(m, "Up Last 30 Days", q.EpsRevisions.UpLast30days)
		putPercent(m, "Current Qtr", q.Growth)
	}
	if q, ok := byPeriod["+1q"]; ok {
		putNumber(m, "Revenue Estimate - Next Qtr", q.RevenueEstimate.Avg)
		putPercent(m, "Next Qtr", q.Growth)
	}
	if y, ok := byPeriod["0y"]; ok {
		putNumber(m, "EPS Trend - Current Year", y.EpsTrend.Current)
		putNumber(m, "Year Ago EPS", y.EarningsEstimate.YearAgoEps)
		putPercent(m, "Sales Growth (year/est)", y.RevenueEstimate.Growth)
		putPercent(m, "Current Year", y.Growth)
	}
	if y, ok := byPeriod["+1y"]; ok {
		putPercent(m, "Next Year", y.Growth)
	}
}
