package messaging

import (
	"context"
	"sync"

	"go-wa-dispatch/src/domain/transport"
)

// SerialSender allows one send in flight at a time across every caller that
// shares it. The campaign runner and the queue drainer both go through one
// instance.
type SerialSender struct {
	next transport.ISender
	mu   sync.Mutex
}

// NewSerialSender wraps next so that calls through it never overlap.
func NewSerialSender(next transport.ISender) *SerialSender {
	return &SerialSender{next: next}
}

func (s *SerialSender) Send(ctx context.Context, address string, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.next.Send(ctx, address, text)
}
