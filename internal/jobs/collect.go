package jobs

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Collect queries every source concurrently and concatenates the results in
// source order. A failing source is logged and contributes nothing.
func Collect(ctx context.Context, logger *zap.Logger, sources []Source, q Query) *Jobs {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([][]*Job, len(sources))

	var g errgroup.Group
	for idx, source := range sources {
		g.Go(func() error {
			found, err := source.Fetch(ctx, q)
			if err != nil {
				logger.Warn("job source failed", zap.String("source", source.Name()), zap.Error(err))
				return nil
			}
			logger.Debug("job source fetched", zap.String("source", source.Name()), zap.Int("jobs", len(found)))
			results[idx] = found
			return nil
		})
	}
	_ = g.Wait()

	all := &Jobs{}
	for _, found := range results {
		all.Items = append(all.Items, found...)
	}
	return all
}
