package httptransport

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServeStopsOnCancel(t *testing.T) {
	cfg := ServerConfig{Address: "127.0.0.1:0", ReadTimeout: time.Second, ShutdownTimeout: time.Second}
	srv := NewServer(cfg, http.NotFoundHandler())
	require.Equal(t, time.Second, srv.ReadTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, cfg) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := ServerConfig{Address: ln.Addr().String(), ShutdownTimeout: time.Second}
	srv := NewServer(cfg, http.NotFoundHandler())
	err = Serve(context.Background(), srv, cfg)
	require.Error(t, err)
}
