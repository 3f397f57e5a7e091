package geninst

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one batch request.
type Result struct {
	ID     string
	Input  string
	Output *Descriptor
	Err    error
}

// InstantiateAll parses and instantiates every text concurrently. Request
// failures are reported per result; the returned error is only set when ctx
// is done before all requests ran.
func (e *Engine) InstantiateAll(ctx context.Context, texts []string) ([]Result, error) {
	results := make([]Result, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, text := range texts {
		results[i] = Result{ID: uuid.NewString(), Input: text}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := &results[i]
			log := e.logger.With("request", r.ID)
			r.Output, r.Err = e.InstantiateText(text)
			if r.Err != nil {
				log.Info("request failed", "input", text, "error", r.Err)
			} else {
				log.Debug("request done", "input", text, "output", r.Output.Name())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
