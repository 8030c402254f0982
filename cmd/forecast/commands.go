package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guregu/null/v6"
	"github.com/spf13/cobra"

	"StockOracle/internal/app"
	"StockOracle/internal/config"
	"StockOracle/internal/export"
	"StockOracle/internal/logger"
	"StockOracle/internal/model"
)

const runTimeout = 5 * time.Minute

type options struct {
	configPath string
	horizon    int
	csvPath    string
	rows       int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "forecast",
		Short:         "Stock indicators and next-days close forecasts",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", envOr("CONFIG_PATH", "configs/config.yaml"), "config file")

	root.AddCommand(newAnalyzeCmd(opts), newPredictCmd(opts), newIndicatorsCmd(opts))
	return root
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Full analysis: indicators, backtest, forecast, signal and advice (JSON)",
		Example: `  forecast analyze RELIANCE.NS
  forecast analyze TCS.NS --horizon 14 --csv tcs_history.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, cancel, err := setup(opts)
			if err != nil {
				return err
			}
			defer cancel()
			defer a.Close()

			report, err := a.Analyzer.Analyze(ctx, strings.ToUpper(args[0]), opts.horizon)
			if err != nil {
				return err
			}
			if opts.csvPath != "" {
				if err := writeFile(opts.csvPath, func(w io.Writer) error {
					return export.WriteSeries(w, report.Series)
				}); err != nil {
					return err
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	addHorizonFlag(cmd, opts)
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "also write the price history to this CSV file")
	return cmd
}

func newPredictCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict <symbol>",
		Short: "Forecast the next closes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, cancel, err := setup(opts)
			if err != nil {
				return err
			}
			defer cancel()
			defer a.Close()

			report, err := a.Analyzer.Analyze(ctx, strings.ToUpper(args[0]), opts.horizon)
			if err != nil {
				return err
			}
			if opts.csvPath != "" {
				return writeFile(opts.csvPath, func(w io.Writer) error {
					return export.WriteForecast(w, report.Forecast)
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s last close %.2f on %s\n", report.Symbol, report.LastBar.Close, report.LastBar.Time.Format("2006-01-02"))
			if bt := report.Backtest; bt != nil {
				fmt.Fprintf(out, "backtest RMSE %.2f MAE %.2f MAPE %.2f%%\n", bt.RMSE, bt.MAE, bt.MAPE)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tPREDICTED CLOSE")
			for _, p := range report.Forecast {
				fmt.Fprintf(tw, "%s\t%.2f\n", p.Date.Format("2006-01-02"), p.PredictedClose)
			}
			return tw.Flush()
		},
	}
	addHorizonFlag(cmd, opts)
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "write the forecast to this CSV file instead of stdout")
	return cmd
}

func newIndicatorsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indicators <symbol>",
		Short: "Show the latest indicator rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, cancel, err := setup(opts)
			if err != nil {
				return err
			}
			defer cancel()
			defer a.Close()

			frame, err := a.Analyzer.Indicators(ctx, strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			if opts.csvPath != "" {
				series := &model.PriceSeries{Symbol: frame.Symbol, Bars: frame.Bars}
				if err := writeFile(opts.csvPath, func(w io.Writer) error {
					return export.WriteSeries(w, series)
				}); err != nil {
					return err
				}
			}
			return printIndicators(cmd.OutOrStdout(), a.Config.Indicators.MAWindows, frame.Tail(opts.rows))
		},
	}
	cmd.Flags().IntVar(&opts.rows, "rows", 10, "number of most recent rows")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "also write the price history to this CSV file")
	return cmd
}

func printIndicators(out io.Writer, windows []int, rows []model.IndicatorRow) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := []string{"DATE", "CLOSE"}
	for _, w := range windows {
		header = append(header, fmt.Sprintf("MA%d", w))
	}
	header = append(header, "RSI", "MACD", "SIGNAL", "HIST")
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		cells := []string{r.Date.Format("2006-01-02"), fmt.Sprintf("%.2f", r.Close)}
		for _, w := range windows {
			cells = append(cells, cell(r.MA[w]))
		}
		cells = append(cells, cell(r.RSI), cell(r.MACD), cell(r.Signal), cell(r.Histogram))
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func cell(v null.Float) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

func addHorizonFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().IntVar(&opts.horizon, "horizon", 0, fmt.Sprintf("days to forecast (1-%d, default from config)", config.MaxHorizon))
}

func setup(opts *options) (*app.App, context.Context, context.CancelFunc, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	if opts.horizon == 0 {
		opts.horizon = cfg.Forecast.Horizon
	}
	if opts.horizon < 1 || opts.horizon > config.MaxHorizon {
		return nil, nil, nil, model.ConfigErrorf("--horizon must be between 1 and %d", config.MaxHorizon)
	}
	// Logs go to stderr so stdout stays machine readable.
	log, err := logger.NewWithOutput(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, nil, err
	}
	a, err := app.New(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	return a, ctx, cancel, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
