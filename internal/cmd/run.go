package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/weblog/internal/aggregator"
	"github.com/atikulmunna/weblog/internal/config"
	"github.com/atikulmunna/weblog/internal/input"
	"github.com/atikulmunna/weblog/internal/logging"
	"github.com/atikulmunna/weblog/internal/model"
	"github.com/atikulmunna/weblog/internal/stream"
)

// analysis is the partitioned input of a run and its reduction.
type analysis struct {
	files       []string
	batch       *stream.Batch
	acc         *aggregator.Accumulator
	interrupted bool
}

// setup loads the configuration and the logger shared by all commands.
func setup(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("interrupted, finishing with the input read so far")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// runAnalysis reads every input, partitions the lines and reduces the records.
// Cancellation stops reading; whatever was parsed is still aggregated.
func runAnalysis(ctx context.Context, cfg config.Config, log zerolog.Logger, patterns []string, obs stream.Observer) (*analysis, error) {
	files, err := input.Expand(patterns)
	if err != nil {
		return nil, err
	}

	opts := stream.Options{Workers: cfg.Workers, Observer: obs}
	res := &analysis{files: files, batch: &stream.Batch{}}

	for _, path := range files {
		b, err := readFile(ctx, path, opts)
		if b != nil {
			res.batch.Append(b)
		}
		if err != nil {
			if ctx.Err() != nil {
				res.interrupted = true
				break
			}
			return nil, err
		}
		log.Debug().Str("source", path).Int("lines", b.Total()).Int("failed", b.Failed()).Msg("read input")
	}

	acc, err := aggregator.Parallel(context.WithoutCancel(ctx), res.batch.Records, cfg.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate")
	}
	res.acc = acc

	logSummary(log, res.batch.Summary(cfg.Preview))
	return res, nil
}

// loadDataset reads every input, then streams the lines in order through a
// Pipeline that keeps the partition and folds records into one Accumulator.
func loadDataset(ctx context.Context, cfg config.Config, log zerolog.Logger, patterns []string, obs stream.Observer) (*analysis, error) {
	files, err := input.Expand(patterns)
	if err != nil {
		return nil, err
	}
	lines, err := input.ReadAll(files)
	if err != nil {
		return nil, err
	}

	acc := aggregator.New()
	pl := stream.NewPipeline(stream.Feed(ctx, lines), acc, stream.Options{Observer: obs})
	batch, err := pl.Run(ctx)
	res := &analysis{files: files, batch: batch, acc: acc}
	if err != nil {
		if ctx.Err() == nil {
			return nil, err
		}
		res.interrupted = true
	}

	logSummary(log, batch.Summary(cfg.Preview))
	return res, nil
}

// readFile parses one input. Standard input is consumed as a stream so an
// interrupt keeps the prefix read so far; files are parsed in parallel.
func readFile(ctx context.Context, path string, opts stream.Options) (*stream.Batch, error) {
	if path == input.Stdin {
		rc, err := input.Open(path)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return stream.Scan(ctx, rc, "stdin", opts)
	}

	lines, err := input.ReadLines(path)
	if err != nil {
		return nil, err
	}
	return stream.Process(ctx, lines, opts)
}

// logSummary reports the partition counts and a bounded sample of invalid lines.
func logSummary(log zerolog.Logger, s model.Summary) {
	if s.Failed > 0 {
		log.Warn().Int("failed", s.Failed).Msg("invalid loglines found")
		for _, inv := range s.Preview {
			log.Warn().
				Str("source", inv.Source).
				Int("line", inv.Number).
				Str("reason", inv.Reason).
				Str("kind", inv.Kind).
				Str("text", inv.Text).
				Msg("invalid logline")
		}
	}
	log.Info().
		Int("total", s.Total).
		Int("parsed", s.Parsed).
		Int("failed", s.Failed).
		Msgf("read %d lines, successfully parsed %d lines, failed to parse %d lines", s.Total, s.Parsed, s.Failed)
}

// report builds the run report. An empty record set is reported and then
// returned as an error.
func (a *analysis) report(cfg config.Config) (aggregator.Report, error) {
	return aggregator.NewReport(a.batch.Summary(cfg.Preview), a.acc, cfg.TopN)
}
