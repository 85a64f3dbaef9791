package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Failover walks an ordered provider chain, trying the next client on
// transport failures and 5xx responses. Client-side rejections (4xx) are
// returned immediately: retrying a request the provider deemed invalid
// would fail everywhere.
type Failover struct {
	clients []Client
	log     *slog.Logger
}

// NewFailover creates a failover client over an ordered provider chain.
func NewFailover(clients []Client, log *slog.Logger) *Failover {
	if log == nil {
		log = slog.Default()
	}
	return &Failover{clients: clients, log: log}
}

// Name identifies the failover chain in logs.
func (f *Failover) Name() string { return "failover" }

// Complete tries each client in order and returns the first usable result.
func (f *Failover) Complete(ctx context.Context, req Request) (Result, error) {
	if len(f.clients) == 0 {
		return Result{}, errors.New("no providers configured")
	}

	var lastErr error
	for _, c := range f.clients {
		res, err := c.Complete(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) && se.Code < 500 {
			return Result{}, err
		}
		f.log.Warn("provider failed, trying next", "provider", c.Name(), "error", err.Error())
	}
	return Result{}, fmt.Errorf("all providers failed: %w", lastErr)
}
