package netcheck

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// TCPDialer opens and immediately closes a TCP connection, reporting
// how long connection establishment took.
type TCPDialer struct{}

func (TCPDialer) Dial(ctx context.Context, host string, port int, timeout time.Duration) Outcome {
	dialer := net.Dialer{Timeout: timeout}
	address := net.JoinHostPort(host, strconv.Itoa(port))

	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return Failure(fmt.Errorf("connect %s: %w", address, err))
	}
	elapsed := elapsedMs(start)
	_ = conn.Close()
	return Success(elapsed)
}
