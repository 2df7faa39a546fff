package core

import (
	"context"
	"testing"
	"time"
)

func TestBroadcastReachesEveryRegisteredClient(t *testing.T) {
	reg := NewRegistry(sequentialNames(), nil)
	b := NewBroadcaster(reg, time.Second, nil)

	conns := make([]*fakeConn, 5)
	for i := range conns {
		conns[i] = &fakeConn{}
		reg.Register(conns[i], "")
	}

	if n := b.Broadcast(context.Background(), "hello"); n != len(conns) {
		t.Fatalf("expected %d deliveries, got %d", len(conns), n)
	}
	for _, c := range conns {
		mustOnly(t, c, "hello")
	}
}

func TestBroadcastToleratesFailedRecipient(t *testing.T) {
	reg := NewRegistry(sequentialNames(), nil)
	b := NewBroadcaster(reg, time.Second, nil)

	good1, bad, good2 := &fakeConn{}, &fakeConn{fail: true}, &fakeConn{}
	reg.Register(good1, "")
	badClient := reg.Register(bad, "")
	reg.Register(good2, "")

	if n := b.Broadcast(context.Background(), "ping"); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	mustOnly(t, good1, "ping")
	mustOnly(t, good2, "ping")

	if reg.Contains(badClient) {
		t.Fatalf("failed recipient should be unregistered")
	}
	if bad.closeCount() != 1 {
		t.Fatalf("failed recipient should be closed once, got %d", bad.closeCount())
	}

	// Its own loop unregistering afterwards is a no-op.
	if reg.Unregister(badClient) {
		t.Fatalf("second unregister should be a no-op")
	}
}

func TestBroadcastIgnoresLateRegistrations(t *testing.T) {
	reg := NewRegistry(sequentialNames(), nil)
	b := NewBroadcaster(reg, time.Second, nil)

	late := &fakeConn{}
	early := &hookConn{onSend: func() { reg.Register(late, "") }}
	reg.Register(early, "")

	if n := b.Broadcast(context.Background(), "snapshot"); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if got := late.messages(); len(got) != 0 {
		t.Fatalf("late client must not receive the message, got %q", got)
	}
	if reg.Len() != 2 {
		t.Fatalf("late client should still be registered")
	}
}

func TestBroadcastSurvivesCancelledSenderContext(t *testing.T) {
	reg := NewRegistry(sequentialNames(), nil)
	b := NewBroadcaster(reg, time.Second, nil)

	ctxConn := &ctxCheckingConn{}
	reg.Register(ctxConn, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if n := b.Broadcast(ctx, "still delivered"); n != 1 {
		t.Fatalf("expected delivery despite cancelled sender context, got %d", n)
	}
}

func TestSendToReportsFailure(t *testing.T) {
	reg := NewRegistry(sequentialNames(), nil)
	b := NewBroadcaster(reg, time.Second, nil)
	client := reg.Register(&fakeConn{fail: true}, "")

	if err := b.SendTo(context.Background(), client, "x"); err == nil {
		t.Fatalf("expected unicast failure to be reported")
	}
	if !reg.Contains(client) {
		t.Fatalf("unicast failure is the caller's decision, client must stay registered")
	}
}

// hookConn runs onSend before recording a frame.
type hookConn struct {
	fakeConn
	onSend func()
}

func (c *hookConn) Send(ctx context.Context, text string) error {
	if c.onSend != nil {
		c.onSend()
	}
	return c.fakeConn.Send(ctx, text)
}

// ctxCheckingConn fails when handed an already cancelled context.
type ctxCheckingConn struct {
	fakeConn
}

func (c *ctxCheckingConn) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.fakeConn.Send(ctx, text)
}
