package httpserver

import (
	"net"
	"net/http"
	"strconv"
	"time"
)

// Loopback is where the server binds when authentication is off.
const Loopback = "127.0.0.1"

// ListenHost picks the interface to bind. Without API keys every request is
// anonymous, so only local callers may reach the server.
func ListenHost(host string, apiKeys []string) string {
	if len(apiKeys) == 0 {
		return Loopback
	}
	return host
}

// NewServer wraps h with the timeouts the API runs with. WriteTimeout is
// left open since a scan can run as long as the gitleaks timeout allows.
func NewServer(host string, port int, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
