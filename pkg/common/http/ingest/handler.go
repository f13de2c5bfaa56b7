package ingest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/huynhanx03/go-commons/pkg/concurrent/collector"
)

// Enqueuer accepts items for asynchronous batch processing.
// *collector.Collector satisfies it.
type Enqueuer[T any] interface {
	Enqueue(ctx context.Context, item T) error
}

// Request is the body accepted by Handler.
type Request[T any] struct {
	Items []T `json:"items" binding:"required,min=1"`
}

// Response reports how many items of the request were enqueued.
type Response struct {
	Accepted int    `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

// Handler enqueues every item of the request body into sink. Enqueue blocks
// while the queue is full, so a slow performer slows the client down.
func Handler[T any](sink Enqueuer[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request[T]
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
			return
		}

		ctx := c.Request.Context()
		for i, item := range req.Items {
			if err := sink.Enqueue(ctx, item); err != nil {
				c.JSON(statusOf(err), Response{Accepted: i, Error: err.Error()})
				return
			}
		}

		c.JSON(http.StatusAccepted, Response{Accepted: len(req.Items)})
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, collector.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, collector.ErrInterrupted):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
