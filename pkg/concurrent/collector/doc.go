// Package collector provides a bounded, blocking, single-consumer batch
// collector.
//
// Any number of goroutines call Enqueue. One goroutine calls Run, which drains
// the queue and hands items to a Performer in batches of at most
// MaxBatchSize. A batch is closed either when it is full or when the queue is
// momentarily empty, so an item at the head of the queue never waits longer
// than one performer call.
//
// Shutdown is requested with Close. Everything enqueued before Close is
// delivered, then Run returns nil. Items enqueued after Close are rejected.
//
// A Performer that returns an error or panics loses its batch: the failure is
// logged and the loop continues with the next batch. Performers that need
// retries must implement them.
//
//	c, err := collector.New[Event](collector.PerformerFunc[Event](store), settings.Collector{
//		MaxQueueSize: 1024,
//		MaxBatchSize: 128,
//	}, collector.WithLogger(log))
//	go c.Run(ctx)
//	_ = c.Enqueue(ctx, ev)
//	_ = c.Close(ctx)
//	<-c.Done()
package collector
