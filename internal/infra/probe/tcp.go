package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/vietddude/fintrack/internal/core/gate"
)

// TCPProber checks that something accepts connections on addr.
type TCPProber struct {
	addr    string
	timeout time.Duration
}

// NewTCPProber creates a probe for host:port.
func NewTCPProber(addr string, timeout time.Duration) *TCPProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TCPProber{addr: addr, timeout: timeout}
}

// Probe implements gate.Prober.
func (p *TCPProber) Probe(ctx context.Context) error {
	host, port, err := net.SplitHostPort(p.addr)
	if err != nil || host == "" || port == "" {
		return gate.Misconfigured(fmt.Errorf("invalid address %q", p.addr))
	}

	d := net.Dialer{Timeout: p.timeout}
	conn, err := d.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return gate.Transient(err)
	}
	return conn.Close()
}
