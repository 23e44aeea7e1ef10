package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/weblog/internal/config"
	"github.com/atikulmunna/weblog/internal/metrics"
	"github.com/atikulmunna/weblog/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve [paths...]",
	Short: "Analyze access logs and serve the results over HTTP",
	Long: `Analyze the given access logs once, then serve the report as JSON.

Endpoints:
  /healthz                   liveness and dataset size
  /api/report?top=N          full report
  /api/summary               line counts and invalid preview
  /api/invalid?offset&limit  every invalid line, paged
  /api/content-size          average, min, max content size
  /api/response-codes        status code counts
  /api/top-error-endpoints   endpoints with most non-200 responses
  /api/daily                 status code counts per day of month
  /metrics                   Prometheus metrics`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", config.Default().Port, "HTTP listen port")
	cobra.CheckErr(viper.BindPFlag(config.KeyPort, serveCmd.Flags().Lookup("port")))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	m := metrics.New()
	res, err := loadDataset(ctx, cfg, log, args, m)
	if err != nil {
		return err
	}
	if res.interrupted {
		return ctx.Err()
	}

	srv := server.New(server.Dataset{
		Files:       res.files,
		Batch:       res.batch,
		Accumulator: res.acc,
		TopN:        cfg.TopN,
		Preview:     cfg.Preview,
	}, m, log)
	return srv.Run(ctx, cfg.Addr())
}
