package datastore

import (
	"context"
	"errors"

	"github.com/minhyannv/task-go-prioritize/internal/future"
)

var errRemove = errors.New("remove unsupported")

type failingAccess struct {
	QueueAccess
}

func (failingAccess) RemoveFromQueue(_ context.Context, ex *Executor, _, _ string) *future.Future {
	return ex.Fail(errRemove)
}
