package server

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestCreateServer(t *testing.T) {
	handler := http.NewServeMux()
	server := CreateServer(":8080", handler)

	if server.Addr != ":8080" {
		t.Errorf("Addr = %q, want %q", server.Addr, ":8080")
	}
	if server.Handler != handler {
		t.Error("Handler not set")
	}
	if server.ReadTimeout != 15*time.Second || server.WriteTimeout != 15*time.Second {
		t.Errorf("read/write timeouts = %v/%v, want 15s", server.ReadTimeout, server.WriteTimeout)
	}
	if server.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", server.IdleTimeout)
	}
	if server.ReadHeaderTimeout == 0 {
		t.Error("ReadHeaderTimeout not set")
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	server := CreateServer("127.0.0.1:0", http.NewServeMux())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, server, time.Second) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRunReportsListenErrors(t *testing.T) {
	server := CreateServer("127.0.0.1:-1", http.NewServeMux())

	if err := Run(context.Background(), server, time.Second); err == nil {
		t.Error("Run() error = nil, want listen error")
	}
}
