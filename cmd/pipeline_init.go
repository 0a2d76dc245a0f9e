package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sales-analyzer/internal/pipeline"
	"github.com/sells-group/sales-analyzer/internal/store"
)

// pipelineEnv holds the run log and the pipeline used by the analyze, export
// and serve commands.
type pipelineEnv struct {
	Store    store.Store // nil when the run log is disabled
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline opens the run log and builds the Pipeline. Callers should
// defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(cfg, st, nil)
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, eris.Wrap(err, "init pipeline")
	}

	zap.L().Debug("pipeline initialized",
		zap.String("store", cfg.Store.Driver),
		zap.Int64("max_bytes", cfg.Ingest.MaxBytes),
		zap.Int("max_rows", cfg.Ingest.MaxRows),
	)
	return &pipelineEnv{Store: st, Pipeline: p}, nil
}
