package httpserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/pkg/config"
)

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := New(config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second},
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("OK"))
		}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, zap.NewNop(), srv, ln, time.Second) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "OK" {
		t.Fatalf("expected OK, got %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeAndWait_Errors(t *testing.T) {
	if err := ServeAndWait(context.Background(), nil, nil, 0); err == nil {
		t.Fatal("expected error for nil server")
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	srv := &http.Server{Addr: ln.Addr().String(), ReadHeaderTimeout: time.Second}
	if err := ServeAndWait(context.Background(), nil, srv, time.Second); err == nil {
		t.Fatal("expected error when the address is taken")
	}
}

func TestNew(t *testing.T) {
	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: 8090, ReadTimeout: 2 * time.Second, WriteTimeout: 3 * time.Second}, http.NotFoundHandler())
	if srv.Addr != "127.0.0.1:8090" {
		t.Fatalf("unexpected addr %q", srv.Addr)
	}
	if srv.WriteTimeout != 3*time.Second {
		t.Fatalf("unexpected write timeout %v", srv.WriteTimeout)
	}
}
