package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// defaultConcurrency bounds the number of lookups in flight per batch.
const defaultConcurrency = 8

// settled is the outcome of one call in a settle batch.
type settled[T any] struct {
	Value T
	Err   error
}

// settle calls fn for every input concurrently and waits for all calls.
// A failing call does not cancel its siblings; results keep input order.
func settle[I, O any](ctx context.Context, limit int, inputs []I, fn func(context.Context, I) (O, error)) []settled[O] {
	out := make([]settled[O], len(inputs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, in := range inputs {
		g.Go(func() error {
			v, err := fn(ctx, in)
			out[i] = settled[O]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// all calls fn for every input concurrently and returns the first error,
// cancelling the calls still running.
func all[I, O any](ctx context.Context, limit int, inputs []I, fn func(context.Context, I) (O, error)) ([]O, error) {
	out := make([]O, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, in := range inputs {
		g.Go(func() error {
			v, err := fn(gctx, in)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// TaskResult is the outcome of one task of a sequential run.
type TaskResult[I any] struct {
	Input I
	Err   error
}

// sequential runs fn over inputs strictly in order, starting each task only
// after the previous one returned. A failed task does not stop the run.
func sequential[I any](ctx context.Context, inputs []I, fn func(context.Context, I) error) []TaskResult[I] {
	results := make([]TaskResult[I], 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			results = append(results, TaskResult[I]{Input: in, Err: err})
			continue
		}
		results = append(results, TaskResult[I]{Input: in, Err: fn(ctx, in)})
	}
	return results
}

// countFailed returns the number of failed tasks.
func countFailed[I any](results []TaskResult[I]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
