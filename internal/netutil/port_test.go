package netutil

import (
	"net"
	"strings"
	"testing"
	"time"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func busyListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	return ln
}

func TestSelectBindAddrPreferredFree(t *testing.T) {
	addr := freeAddr(t)
	got, err := SelectBindAddr(" "+addr+" ", nil, false)
	if err != nil {
		t.Fatalf("SelectBindAddr() error = %v", err)
	}
	if got != addr {
		t.Fatalf("SelectBindAddr() = %q; want %q", got, addr)
	}
}

func TestSelectBindAddrFallback(t *testing.T) {
	busy := busyListener(t).Addr().String()
	free := freeAddr(t)

	got, err := SelectBindAddr(busy, []string{busy, "", free}, true)
	if err != nil {
		t.Fatalf("SelectBindAddr() error = %v", err)
	}
	if got != free {
		t.Fatalf("SelectBindAddr() = %q; want %q", got, free)
	}
}

func TestSelectBindAddrNoFallback(t *testing.T) {
	busy := busyListener(t).Addr().String()
	if _, err := SelectBindAddr(busy, []string{freeAddr(t)}, false); err == nil ||
		!strings.Contains(err.Error(), "fallback is disabled") {
		t.Fatalf("SelectBindAddr() error = %v; want fallback disabled", err)
	}
}

func TestSelectBindAddrExhausted(t *testing.T) {
	busy := busyListener(t).Addr().String()
	_, err := SelectBindAddr(busy, []string{busy, busy}, true)
	if err == nil {
		t.Fatalf("SelectBindAddr() error = nil; want exhausted")
	}
	if strings.Count(err.Error(), busy) != 1 {
		t.Fatalf("SelectBindAddr() error = %q; want %s listed once", err, busy)
	}
}

func TestListening(t *testing.T) {
	ln := busyListener(t)
	port := ln.Addr().(*net.TCPAddr).Port
	if !Listening("127.0.0.1", port, time.Second) {
		t.Fatalf("Listening() = false; want true for open listener")
	}
	_ = ln.Close()
	if Listening("127.0.0.1", port, 200*time.Millisecond) {
		t.Fatalf("Listening() = true; want false after close")
	}
}
