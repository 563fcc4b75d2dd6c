/*
Package workers runs blocking bridge work off the interaction loop.

A Pool has a fixed number of workers and a bounded queue. Each submission returns
a Future; the caller either waits on it or hands it to ApplyOn so the result is
applied on the interaction loop. Tasks run under a recover guard: a panicking
task resolves its future with ErrTaskPanic instead of crashing the process.

Example Usage:

	pool := workers.NewPool(2, 32, logger)
	defer pool.Close()

	fut, err := workers.Submit(ctx, pool, "complete-transfer", func(ctx context.Context) (string, error) {
		return downloads.Save(name, data)
	})
	if err != nil {
		return err
	}
	fut.ApplyOn(loop, func(path string, err error) {
		// runs on the interaction loop
	})
*/
package workers
