// Package netutil holds the listen-address helpers shared by the API server
// and the browser launcher.
package netutil

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

// SelectBindAddr returns preferred when it can be listened on, otherwise the
// first free candidate if autoFallback allows it. Duplicate candidates are
// probed once.
func SelectBindAddr(preferred string, candidates []string, autoFallback bool) (string, error) {
	var tried []string
	seen := make(map[string]bool, len(candidates)+1)
	probe := func(addr string) (bool, error) {
		addr = strings.TrimSpace(addr)
		if addr == "" || seen[addr] {
			return false, nil
		}
		seen[addr] = true
		tried = append(tried, addr)
		return IsAddrAvailable(addr)
	}

	if preferred != "" {
		ok, err := probe(preferred)
		if err != nil {
			return "", err
		}
		if ok {
			return strings.TrimSpace(preferred), nil
		}
		if !autoFallback {
			return "", fmt.Errorf("bind address %s is in use and fallback is disabled", preferred)
		}
	}

	for _, addr := range candidates {
		ok, err := probe(addr)
		if err != nil {
			return "", err
		}
		if ok {
			slog.Info("bind address fallback", "preferred", preferred, "selected", addr)
			return strings.TrimSpace(addr), nil
		}
	}
	return "", fmt.Errorf("no free bind address (tried %s)", strings.Join(tried, ", "))
}

// IsAddrAvailable reports whether addr can be listened on.
func IsAddrAvailable(addr string) (bool, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false, nil
	}
	if closeErr := ln.Close(); closeErr != nil {
		return false, closeErr
	}
	return true, nil
}

// Listening reports whether something accepts TCP connections on host:port.
func Listening(host string, port int, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, fmt.Sprint(port)), timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
