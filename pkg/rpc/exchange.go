package rpc

import (
	"context"
	"fmt"

	"github.com/igd-protocol/igd-go/pkg/wire"
)

// Begin encodes the action, dispatches it on its own goroutine, and
// returns the pending future. The future completes with the decoded
// payload, a protocol fault, or a transport error - never more than one.
func Begin[T any](ctx context.Context, c Caller, endpoint, serviceType, action string, args []wire.Arg, onComplete func(Outcome[T])) *Future[T] {
	fut := NewFuture[T](onComplete)

	body, err := wire.EncodeActionRequest(serviceType, action, args)
	if err != nil {
		fut.Complete(Outcome[T]{Err: fmt.Errorf("encode %s: %w", action, err)})
		return fut
	}

	go func() {
		data, err := c.Call(ctx, endpoint, serviceType, action, body)
		if err != nil {
			fut.Complete(Outcome[T]{Err: err})
			return
		}

		value, fault, err := wire.DecodeActionResponse[T](data)
		switch {
		case err != nil:
			fut.Complete(Outcome[T]{Err: err})
		case fault != nil:
			fut.Complete(Outcome[T]{Fault: fault})
		default:
			fut.Complete(Outcome[T]{Value: value})
		}
	}()

	return fut
}
