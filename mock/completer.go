package mock

import (
	"context"

	"github.com/fwojciec/revise"
)

var _ revise.Completer = (*Completer)(nil)

// Completer is a mock implementation of revise.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, system, user string) (string, error)
}

func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	return c.CompleteFn(ctx, system, user)
}
