package video

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/shinji-kodama/ved/internal/model"
)

// ProbeAll probes paths with at most limit concurrent ffprobe processes
// and returns the results in input order. The first failure cancels the
// remaining probes.
func ProbeAll(ctx context.Context, p Prober, paths []string, limit int) ([]model.VideoInfo, error) {
	if limit < 1 {
		limit = 1
	}
	out := make([]model.VideoInfo, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			info, err := p.Probe(gctx, path)
			if err != nil {
				return err
			}
			out[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
