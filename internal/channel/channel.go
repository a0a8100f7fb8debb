package channel

import (
	"context"
	"errors"

	"wishbook/internal/render"
)

// ErrDeliveryFailed reports that the transport or provider rejected a send
// attempt. Terminal for that attempt; nothing in this package retries.
var ErrDeliveryFailed = errors.New("delivery failed")

type Result int

const (
	// Sent means the transport accepted the message.
	Sent Result = iota
	// Skipped means the channel has no credentials configured and
	// deliberately did nothing. Degraded/demo mode, not a failure.
	Skipped
	// Failed means the transport or provider rejected the message.
	Failed
)

func (r Result) String() string {
	switch r {
	case Sent:
		return "sent"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Adapter delivers a rendered message to one destination over one medium.
type Adapter interface {
	Send(ctx context.Context, msg render.RenderedMessage, destination string) (Result, error)
}
