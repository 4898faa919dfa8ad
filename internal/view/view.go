// Package view holds the state and fetch gate shared by the catalog, review and
// organization views.
package view

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// State is the lifecycle of a mounted view.
type State int

const (
	Loading State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// Gather runs fetches concurrently and waits for all of them. If any fetch fails the
// whole batch fails with the first error; results written by the others must be discarded
// by the caller.
func Gather(ctx context.Context, fetches ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, fetch := range fetches {
		g.Go(func() error {
			return fetch(gctx)
		})
	}
	return g.Wait()
}
