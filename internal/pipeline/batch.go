package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sales-analyzer/internal/aggregate"
)

// Outcome is the result of one source in a batch. Exactly one of Result and
// Err is set.
type Outcome struct {
	Source string
	Result *Result
	Err    error
}

// RunAll analyzes each source independently with at most concurrency sources
// in flight. Outcomes are returned in source order; a failing source does not
// stop the others. Each source yields its own record set and nothing is merged.
func (p *Pipeline) RunAll(ctx context.Context, sources []string, opts aggregate.Options, concurrency int) []Outcome {
	if concurrency < 1 {
		concurrency = 1
	}
	out := make([]Outcome, len(sources))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, src := range sources {
		g.Go(func() error {
			res, err := p.Run(gCtx, src, opts)
			out[i] = Outcome{Source: src, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for _, o := range out {
		if o.Err != nil {
			failed++
		}
	}
	zap.L().Info("pipeline: batch complete",
		zap.Int("sources", len(sources)),
		zap.Int("failed", failed),
		zap.Int("concurrency", concurrency),
	)
	return out
}
