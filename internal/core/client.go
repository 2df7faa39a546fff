package core

import (
	"context"
	"sync"
)

// Conn is the transport side of a client: it delivers text frames and can be closed.
// Send must be safe to call from several goroutines at once.
type Conn interface {
	Send(ctx context.Context, text string) error
	Close(reason string) error
}

// Client is a chat participant as seen by the core layer.
type Client struct {
	ID   string
	Name string
	Addr string

	conn      Conn
	closeOnce sync.Once
	closeErr  error
}

// NewClient constructs a client bound to conn.
func NewClient(id, name, addr string, conn Conn) *Client {
	if name == "" {
		name = id
	}
	return &Client{
		ID:   id,
		Name: name,
		Addr: addr,
		conn: conn,
	}
}

// Send delivers one text frame to the client.
func (c *Client) Send(ctx context.Context, text string) error {
	return c.conn.Send(ctx, text)
}

// Close closes the underlying connection once; later calls return the first result.
func (c *Client) Close(reason string) error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close(reason)
	})
	return c.closeErr
}
