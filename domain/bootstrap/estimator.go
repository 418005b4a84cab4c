package bootstrap

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"bootstat/domain/core"
)

// Estimator evaluates a Statistic across paired resample matrices and
// records one estimate per draw, in draw order. Because row i of any two
// matrices from the same SampleBootstrap call came from the same index
// vector, two estimate vectors computed over those matrices can be
// differenced element-wise.
type Estimator struct {
	// Workers caps concurrent draw evaluations. Zero or one evaluates
	// sequentially. Results are written by draw index, so the output is
	// identical for every worker count.
	Workers int
}

// ComputeEstimates maps stat over the rows of a and b. Row i of a is paired
// with row i of b. The estimate recorded for draw i is stat's Estimate
// field; auxiliary values are dropped here. A statistic error aborts the
// whole computation and names the draw it failed on. Non-finite estimates
// are recorded unmodified.
func (e Estimator) ComputeEstimates(ctx context.Context, stat Statistic, a, b Matrix) ([]float64, error) {
	if stat == nil {
		return nil, core.ErrNilStatistic
	}
	if a.Draws() == 0 || b.Draws() == 0 {
		return nil, core.ErrEmptyInput
	}
	if a.Draws() != b.Draws() {
		return nil, core.NewRowMismatchError(a.Draws(), b.Draws())
	}

	if e.Workers <= 1 {
		return e.computeSequential(ctx, stat, a, b)
	}
	return e.computeConcurrent(ctx, stat, a, b)
}

func (e Estimator) computeSequential(ctx context.Context, stat Statistic, a, b Matrix) ([]float64, error) {
	estimates := make([]float64, a.Draws())
	for i := 0; i < a.Draws(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, err := stat(a[i], b[i])
		if err != nil {
			return nil, core.NewDrawError(i, err)
		}
		estimates[i] = value.Estimate
	}
	return estimates, nil
}

// computeConcurrent fans draw evaluations out behind a weighted semaphore.
// Each goroutine writes its own slot, so draw order is preserved and the
// result matches the sequential path exactly.
func (e Estimator) computeConcurrent(ctx context.Context, stat Statistic, a, b Matrix) ([]float64, error) {
	draws := a.Draws()
	estimates := make([]float64, draws)

	sem := semaphore.NewWeighted(int64(e.Workers))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		firstDraw = -1
	)

	recordErr := func(draw int, err error) {
		mu.Lock()
		defer mu.Unlock()
		// Keep the error from the earliest draw so failures are
		// reported deterministically.
		if firstDraw == -1 || draw < firstDraw {
			firstDraw = draw
			firstErr = err
		}
		cancel()
	}

	for i := 0; i < draws; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context canceled: either a statistic already failed or
			// the caller gave up. Stop submitting work.
			break
		}
		wg.Add(1)
		go func(draw int) {
			defer wg.Done()
			defer sem.Release(1)
			value, err := stat(a[draw], b[draw])
			if err != nil {
				recordErr(draw, core.NewDrawError(draw, err))
				return
			}
			estimates[draw] = value.Estimate
		}(i)
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return estimates, nil
}
