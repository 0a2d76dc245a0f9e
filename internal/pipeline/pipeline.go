package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sales-analyzer/internal/aggregate"
	"github.com/sells-group/sales-analyzer/internal/config"
	"github.com/sells-group/sales-analyzer/internal/fetcher"
	"github.com/sells-group/sales-analyzer/internal/ingest"
	"github.com/sells-group/sales-analyzer/internal/model"
	"github.com/sells-group/sales-analyzer/internal/normalize"
	"github.com/sells-group/sales-analyzer/internal/store"
)

// Result is the outcome of analyzing one source. Records is the canonical
// set the dashboard was computed from; it lives only as long as the Result.
type Result struct {
	RunID     string
	Source    string
	Records   []model.CanonicalRecord
	Dashboard model.Dashboard
	Stats     model.RunStats
}

// Pipeline turns a sales export into a dashboard: resolve the source, read
// it into a raw table, normalize it and aggregate every summary view.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	resolver *fetcher.Resolver
	ingest   ingest.Options
}

// New creates a Pipeline. st may be nil to disable the run log; resolver may
// be nil to use one built from cfg.Fetch.
func New(cfg *config.Config, st store.Store, resolver *fetcher.Resolver) (*Pipeline, error) {
	opts, err := IngestOptions(cfg.Ingest)
	if err != nil {
		return nil, err
	}
	if resolver == nil {
		resolver = NewResolver(cfg)
	}
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		resolver: resolver,
		ingest:   opts,
	}, nil
}

// IngestOptions converts the ingest section of the config into reader options.
func IngestOptions(c config.IngestConfig) (ingest.Options, error) {
	delim, err := c.DelimiterRune()
	if err != nil {
		return ingest.Options{}, eris.Wrap(err, "pipeline: ingest options")
	}
	return ingest.Options{
		MaxBytes:   c.MaxBytes,
		MaxRows:    c.MaxRows,
		Delimiter:  delim,
		Encoding:   c.Encoding,
		SheetIndex: c.SheetIndex,
		SheetName:  c.SheetName,
	}, nil
}

// NewResolver builds a source resolver from the fetch and ingest sections.
func NewResolver(cfg *config.Config) *fetcher.Resolver {
	return fetcher.NewResolver(fetcher.Options{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
		MaxBytes:   cfg.Ingest.MaxBytes,
	})
}

// DashboardOptions returns aggregation options for a category, falling back
// to the configured ranking length when topN is zero.
func (p *Pipeline) DashboardOptions(category string, topN int) aggregate.Options {
	if topN <= 0 {
		topN = p.cfg.Analysis.TopN
	}
	return aggregate.Options{Category: category, TopN: topN}
}

// Run analyzes a local path or a remote URL.
func (p *Pipeline) Run(ctx context.Context, src string, opts aggregate.Options) (*Result, error) {
	log := zap.L().With(zap.String("source", src))
	start := time.Now()

	run := p.startRun(ctx, src)

	dir, err := os.MkdirTemp(p.cfg.Fetch.TempDir, "sales-analyzer-*")
	if err != nil {
		return nil, p.fail(ctx, run, eris.Wrap(err, "pipeline: create temp dir"))
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	p.setStatus(ctx, run, model.RunStatusReading)
	local, err := p.resolver.Resolve(ctx, src, dir)
	if err != nil {
		return nil, p.fail(ctx, run, err)
	}

	table, err := ingest.ReadFile(ctx, local, p.ingest)
	if err != nil {
		return nil, p.fail(ctx, run, err)
	}
	table.Source = src

	log.Debug("pipeline: table read", zap.Int("rows", table.Len()), zap.Int("columns", len(table.Header)))
	return p.analyze(ctx, run, table, opts, start)
}

// RunReader analyzes an already open input. name selects the parser by its
// extension.
func (p *Pipeline) RunReader(ctx context.Context, name string, r io.Reader, opts aggregate.Options) (*Result, error) {
	start := time.Now()
	run := p.startRun(ctx, name)

	p.setStatus(ctx, run, model.RunStatusReading)
	table, err := ingest.Read(ctx, name, r, p.ingest)
	if err != nil {
		return nil, p.fail(ctx, run, err)
	}
	return p.analyze(ctx, run, table, opts, start)
}

func (p *Pipeline) analyze(ctx context.Context, run *model.Run, table model.RawTable, opts aggregate.Options, start time.Time) (*Result, error) {
	p.setStatus(ctx, run, model.RunStatusNormalizing)
	rep, err := normalize.NormalizeWithReport(table)
	if err != nil {
		return nil, p.fail(ctx, run, err)
	}

	res := &Result{
		Source:    table.Source,
		Records:   rep.Records,
		Dashboard: aggregate.BuildDashboard(rep.Records, opts),
		Stats: model.RunStats{
			RowsRead:    rep.RowsRead,
			RowsKept:    len(rep.Records),
			RowsDropped: rep.Dropped,
			Columns:     rep.Mapping.Columns,
			DurationMs:  time.Since(start).Milliseconds(),
		},
	}

	if run != nil {
		res.RunID = run.ID
		if err := p.store.CompleteRun(ctx, run.ID, &res.Stats); err != nil {
			zap.L().Warn("pipeline: failed to complete run", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	fields := []zap.Field{
		zap.String("source", table.Source),
		zap.Int("rows_read", res.Stats.RowsRead),
		zap.Int("rows_kept", res.Stats.RowsKept),
		zap.Int("rows_dropped", res.Stats.RowsDropped),
		zap.String("category", res.Dashboard.Category),
		zap.Int64("duration_ms", res.Stats.DurationMs),
	}
	if rep.Dropped > 0 {
		zap.L().Warn("pipeline: rows dropped for unparseable dates", fields...)
	} else {
		zap.L().Info("pipeline: analysis complete", fields...)
	}
	return res, nil
}

// startRun records a new run when the run log is enabled. Failures to record
// are logged and never stop the analysis.
func (p *Pipeline) startRun(ctx context.Context, src string) *model.Run {
	if p.store == nil {
		return nil
	}
	run, err := p.store.CreateRun(ctx, src)
	if err != nil {
		zap.L().Warn("pipeline: failed to create run", zap.String("source", src), zap.Error(err))
		return nil
	}
	return run
}

func (p *Pipeline) setStatus(ctx context.Context, run *model.Run, status model.RunStatus) {
	if run == nil {
		return
	}
	if err := p.store.UpdateRunStatus(ctx, run.ID, status); err != nil {
		zap.L().Warn("pipeline: failed to update status", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// fail records err against run and returns it unchanged.
func (p *Pipeline) fail(ctx context.Context, run *model.Run, err error) error {
	kind := Classify(err)
	zap.L().Error("pipeline: analysis failed", zap.String("kind", string(kind)), zap.Error(err))
	if run == nil {
		return err
	}
	runErr := &model.RunError{Message: err.Error(), Kind: kind}
	if ferr := p.store.FailRun(ctx, run.ID, runErr); ferr != nil {
		zap.L().Warn("pipeline: failed to record failure", zap.String("run_id", run.ID), zap.Error(ferr))
	}
	return err
}
