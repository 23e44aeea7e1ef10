package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/atikulmunna/weblog/internal/model"
	"github.com/atikulmunna/weblog/internal/output"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Parse access logs and print statistics",
	Long: `Parse one or more access logs (files, glob patterns, or "-" for stdin)
and print a report: content size statistics, response code counts, the top
error endpoints, and response codes per day. Files ending in .gz are
decompressed on the fly.

Files are parsed in parallel. If interrupted, the report covers the lines
each worker had finished, which need not be a prefix of the input; input
read from stdin is always reported up to the last line read.

Examples:
  weblog analyze access_log_Jul95
  weblog analyze "logs/**/access*.log.gz" --top 20
  zcat access.log.gz | weblog analyze - --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	renderer, err := output.New(cfg.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	res, err := runAnalysis(ctx, cfg, log, args, nil)
	if err != nil {
		return err
	}
	if res.interrupted {
		log.Warn().Int("lines", res.batch.Total()).Msg("report covers a partial input")
	}

	rep, repErr := res.report(cfg)
	if err := renderer.Render(rep); err != nil {
		return errors.Wrap(err, "render report")
	}
	if errors.Is(repErr, model.ErrEmptyDataset) {
		return errors.New("no valid log records to aggregate")
	}
	return repErr
}
