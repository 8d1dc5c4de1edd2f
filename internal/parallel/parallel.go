package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EffectiveJobs resolves a caller supplied parallelism degree.
// Values <= 0 mean one worker per available CPU.
func EffectiveJobs(nJobs int) int {
	if nJobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return nJobs
}

// Slice is a half-open range [Start, End).
type Slice struct {
	Start, End int
}

// Len returns the number of elements in s.
func (s Slice) Len() int { return s.End - s.Start }

// EvenSlices splits [0, n) into at most parts contiguous slices whose sizes
// differ by at most one. Empty slices are never returned.
func EvenSlices(n, parts int) []Slice {
	if n <= 0 {
		return nil
	}
	if parts <= 0 {
		parts = 1
	}
	parts = min(parts, n)
	out := make([]Slice, 0, parts)
	start := 0
	for i := 0; i < parts; i++ {
		size := n / parts
		if i < n%parts {
			size++
		}
		out = append(out, Slice{Start: start, End: start + size})
		start += size
	}
	return out
}

// Task identifies one work unit of a Grid run.
type Task struct {
	Row, Col int
}

// Tasks enumerates every (row, col) pair, rows outermost.
func Tasks(rows, cols int) []Task {
	tasks := make([]Task, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			tasks = append(tasks, Task{Row: r, Col: c})
		}
	}
	return tasks
}

// Grid runs fn for every (row, col) task on at most jobs goroutines and
// returns the results indexed as out[row][col]. The first error cancels the
// context handed to the remaining tasks and is returned; partial results are
// discarded.
func Grid[T any](ctx context.Context, rows, cols, jobs int, fn func(ctx context.Context, t Task) (T, error)) ([][]T, error) {
	out := make([][]T, rows)
	for r := range out {
		out[r] = make([]T, cols)
	}

	tasks := Tasks(rows, cols)
	if jobs == 1 {
		for _, t := range tasks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			v, err := fn(ctx, t)
			if err != nil {
				return nil, err
			}
			out[t.Row][t.Col] = v
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(EffectiveJobs(jobs))
	for _, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(gctx, t)
			if err != nil {
				return err
			}
			out[t.Row][t.Col] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Each runs fn for i in [0, n) on at most jobs goroutines.
func Each(ctx context.Context, n, jobs int, fn func(ctx context.Context, i int) error) error {
	_, err := Grid(ctx, n, 1, jobs, func(ctx context.Context, t Task) (struct{}, error) {
		return struct{}{}, fn(ctx, t.Row)
	})
	return err
}
