package linear

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// blockSize is the number of rows (models or statistics) handled by one task.
// The partition does not depend on the worker count, so every block is
// computed by the same kernel call whatever the parallelism.
const blockSize = 32

// forEachBlock calls fn for consecutive [lo, hi) ranges covering [0, n),
// running at most workers calls at once. A panic in fn is returned as an
// error instead of crashing the process.
func forEachBlock(n, workers int, fn func(lo, hi int)) error {
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += blockSize {
		lo := lo
		hi := min(lo+blockSize, n)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.Errorf("block [%d, %d): panic: %v", lo, hi, r)
				}
			}()
			fn(lo, hi)
			return nil
		})
	}
	return g.Wait()
}
