package pwgen

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/phonopass/pkg/phonetic"
	"github.com/verte-zerg/phonopass/pkg/weighted"
)

// BatchRequest describes a batch of independent generations.
type BatchRequest struct {
	Count   int
	Digits  int
	Workers int
	// Seed makes the batch reproducible when Seeded is set. Worker w uses
	// Seed+w, so the output also depends on Workers.
	Seed   int64
	Seeded bool
}

// Batch generates req.Count passwords spread over req.Workers goroutines,
// each owning its own Generator. Results are returned in index order.
// Source options in opts are overridden per worker.
func Batch(ctx context.Context, table *phonetic.Table, req BatchRequest, opts ...Option) ([]string, error) {
	if req.Count < 0 {
		return nil, fmt.Errorf("count must be >= 0, got %d", req.Count)
	}
	workers := req.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > req.Count {
		workers = req.Count
	}
	out := make([]string, req.Count)
	if req.Count == 0 {
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		workerOpts := append(append([]Option(nil), opts...), workerSource(req, w))
		gen, err := New(table, workerOpts...)
		if err != nil {
			return nil, err
		}
		start := w
		g.Go(func() error {
			for i := start; i < req.Count; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				pw, err := gen.Generate(req.Digits)
				if err != nil {
					return fmt.Errorf("password %d: %w", i+1, err)
				}
				out[i] = pw
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func workerSource(req BatchRequest, worker int) Option {
	if req.Seeded {
		return WithSeed(req.Seed + int64(worker))
	}
	return WithSource(weighted.CryptoSource{})
}
