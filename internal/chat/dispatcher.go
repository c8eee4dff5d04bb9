package chat

import (
	"context"
	"sync"
	"time"

	"ai-or-human-service/internal/domain"
)

// Dispatcher hands inbound messages to goroutines suspended in Wait.
// Each waiter receives at most one message; waiters are served in registration order.
type Dispatcher struct {
	mu      sync.Mutex
	waiters []*waiter
}

type waiter struct {
	match func(domain.Message) bool
	ch    chan domain.Message
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Pending is a registered, not yet satisfied wait.
type Pending struct {
	d *Dispatcher
	w *waiter
}

// Register starts listening for a message satisfying match. Messages delivered
// between Register and Pending.Wait are kept for the waiter.
func (d *Dispatcher) Register(match func(domain.Message) bool) *Pending {
	w := &waiter{match: match, ch: make(chan domain.Message, 1)}
	d.mu.Lock()
	d.waiters = append(d.waiters, w)
	d.mu.Unlock()
	return &Pending{d: d, w: w}
}

// Wait blocks until a delivered message satisfies match, the timeout elapses
// (domain.ErrResponseTimeout) or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context, match func(domain.Message) bool, timeout time.Duration) (domain.Message, error) {
	return d.Register(match).Wait(ctx, timeout)
}

func (p *Pending) Wait(ctx context.Context, timeout time.Duration) (domain.Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-p.w.ch:
		return msg, nil
	case <-timer.C:
		if msg, ok := p.d.cancel(p.w); ok {
			return msg, nil
		}
		return domain.Message{}, domain.ErrResponseTimeout
	case <-ctx.Done():
		if msg, ok := p.d.cancel(p.w); ok {
			return msg, nil
		}
		return domain.Message{}, ctx.Err()
	}
}

// Cancel unregisters the wait without blocking.
func (p *Pending) Cancel() {
	p.d.cancel(p.w)
}

// Deliver offers msg to the oldest matching waiter and reports whether it was consumed.
func (d *Dispatcher) Deliver(msg domain.Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, w := range d.waiters {
		if !w.match(msg) {
			continue
		}
		d.waiters = append(d.waiters[:i], d.waiters[i+1:]...)
		w.ch <- msg
		return true
	}
	return false
}

// Pending reports the number of suspended waiters.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.waiters)
}

// cancel unregisters w. A message delivered just before the lock was taken is returned.
func (d *Dispatcher) cancel(w *waiter) (domain.Message, bool) {
	d.mu.Lock()
	for i, candidate := range d.waiters {
		if candidate == w {
			d.waiters = append(d.waiters[:i], d.waiters[i+1:]...)
			break
		}
	}
	d.mu.Unlock()

	select {
	case msg := <-w.ch:
		return msg, true
	default:
		return domain.Message{}, false
	}
}
