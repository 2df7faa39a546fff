package core

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Broadcaster delivers text to registered clients.
type Broadcaster struct {
	registry     *Registry
	writeTimeout time.Duration
	log          *zerolog.Logger
}

// NewBroadcaster creates a broadcaster over registry. writeTimeout bounds every single send;
// zero leaves sends bounded only by the caller's context.
func NewBroadcaster(registry *Registry, writeTimeout time.Duration, logger *zerolog.Logger) *Broadcaster {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Broadcaster{
		registry:     registry,
		writeTimeout: writeTimeout,
		log:          logger,
	}
}

// Broadcast sends text to every client registered at call time and returns the number of
// successful deliveries. Clients registering afterwards do not get this message.
// Sends run concurrently and ignore cancellation of ctx, so a sender hanging up mid-broadcast
// does not cut delivery to everybody else. A recipient whose send fails is unregistered and closed.
func (b *Broadcaster) Broadcast(ctx context.Context, text string) int {
	recipients := b.registry.Snapshot()
	if len(recipients) == 0 {
		return 0
	}

	ctx = context.WithoutCancel(ctx)

	var delivered atomic.Int64
	var g errgroup.Group
	for _, c := range recipients {
		c := c
		g.Go(func() error {
			if err := b.send(ctx, c, text); err != nil {
				b.drop(c, err)
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	n := int(delivered.Load())
	b.log.Debug().Int("recipients", len(recipients)).Int("delivered", n).Msg("broadcast")
	return n
}

// SendTo delivers text to c only. The error is returned to the caller, which owns c's
// dispatch loop and decides whether to end it.
func (b *Broadcaster) SendTo(ctx context.Context, c *Client, text string) error {
	return b.send(ctx, c, text)
}

func (b *Broadcaster) send(ctx context.Context, c *Client, text string) error {
	if b.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.writeTimeout)
		defer cancel()
	}
	return c.Send(ctx, text)
}

func (b *Broadcaster) drop(c *Client, err error) {
	if b.registry.Unregister(c) {
		b.log.Warn().Err(err).Str("client_id", c.ID).Str("name", c.Name).Msg("broadcast send failed, dropping client")
	}
	_ = c.Close("send failed")
}
