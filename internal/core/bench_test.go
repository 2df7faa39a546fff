package core

import (
	"context"
	"testing"
	"time"
)

// discardConn accepts every frame without recording it.
type discardConn struct{}

func (discardConn) Send(context.Context, string) error { return nil }
func (discardConn) Close(string) error                 { return nil }

func benchmarkBroadcast(b *testing.B, recipients int) {
	reg := NewRegistry(sequentialNames(), nil)
	for n := 0; n < recipients; n++ {
		reg.Register(discardConn{}, "")
	}
	bc := NewBroadcaster(reg, time.Second, nil)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if n := bc.Broadcast(ctx, "payload"); n != recipients {
			b.Fatalf("delivered %d of %d", n, recipients)
		}
	}
}

func BenchmarkBroadcast_10(b *testing.B)  { benchmarkBroadcast(b, 10) }
func BenchmarkBroadcast_100(b *testing.B) { benchmarkBroadcast(b, 100) }
func BenchmarkBroadcast_500(b *testing.B) { benchmarkBroadcast(b, 500) }
