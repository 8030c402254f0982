package strategy

import (
	"StockOracle/internal/model"
)

// Inputs is what the engine scores.
type Inputs struct {
	Row         model.IndicatorRow
	Range       model.PriceRange
	NextClose   float64
	HasForecast bool
}

// longestMA returns the longest moving average that has a value.
func (in Inputs) longestMA() (int, float64, bool) {
	best := 0
	for w, v := range in.Row.MA {
		if v.Valid && w > best {
			best = w
		}
	}
	if best == 0 {
		return 0, 0, false
	}
	return best, in.Row.MA[best].Float64, true
}

// Tiers maps minimum total scores to decisions, highest first.
var Tiers = []struct {
	MinScore float64
	Tier     model.DecisionTier
}{
	{1.0, model.DecisionTier{Label: "Strong Buy", Decision: model.DecisionStrongBuy}},
	{0.4, model.DecisionTier{Label: "Buy", Decision: model.DecisionBuy}},
	{-0.4, model.DecisionTier{Label: "Hold", Decision: model.DecisionHold}},
	{-1.0, model.DecisionTier{Label: "Sell", Decision: model.DecisionSell}},
}

// DefaultTier is the tier for scores below -1.0.
var DefaultTier = model.DecisionTier{Label: "Strong Sell", Decision: model.DecisionStrongSell}

func mapTier(totalScore float64) model.DecisionTier {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t.Tier
		}
	}
	return DefaultTier
}

// Evaluate computes the trade signal. Factors without data score zero and
// are marked unavailable.
func Evaluate(in Inputs) *model.TradeSignal {
	f1 := scoreMADeviation(in)
	f2 := scoreRSI(in)
	f3 := scoreMACD(in)
	f5 := scoreForecast(in)

	var sum float64
	var n int
	for _, f := range []model.FactorScore{f1, f2, f3, f5} {
		if f.Available {
			sum += f.RawScore
			n++
		}
	}
	otherFactorsAvg := 0.0
	if n > 0 {
		otherFactorsAvg = sum / float64(n)
	}
	f4 := score52WeekPosition(in, otherFactorsAvg)

	factors := []model.FactorScore{f1, f2, f3, f4, f5}
	var total float64
	for _, f := range factors {
		total += f.Weighted
	}

	signal := &model.TradeSignal{
		Factors:    factors,
		TotalScore: total,
		Tier:       mapTier(total),
	}
	if rsi := in.Row.RSI; rsi.Valid {
		switch {
		case rsi.Float64 > 85:
			signal.WarningMsg = "RSI above 85: overbought, consider taking profit"
		case rsi.Float64 < 15:
			signal.WarningMsg = "RSI below 15: oversold, expect high volatility"
		}
	}
	return signal
}
