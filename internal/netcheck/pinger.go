package netcheck

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/go-ping/ping"
)

// ExecPinger invokes the operating system's ping utility as a
// subprocess. The argument shape differs per platform but the contract
// does not: one echo request, bounded by timeout, success or failure.
type ExecPinger struct{}

func (ExecPinger) Ping(ctx context.Context, target string, timeout time.Duration) Outcome {
	args := pingArgs(runtime.GOOS, target, timeout)

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(cctx, args[0], args[1:]...)
	if err := cmd.Run(); err != nil {
		if cctx.Err() != nil {
			return Failure(fmt.Errorf("ping %s: timeout after %s", target, timeout))
		}
		return Failure(fmt.Errorf("ping %s: %w", target, err))
	}
	return Success(elapsedMs(start))
}

func pingArgs(goos, target string, timeout time.Duration) []string {
	if goos == "windows" {
		return []string{"ping", "-n", "1", "-w", strconv.Itoa(int(timeout.Milliseconds())), target}
	}
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	return []string{"ping", "-c", "1", "-W", strconv.Itoa(secs), target}
}

// ICMPPinger sends ICMP echo requests directly instead of shelling out.
// Unprivileged mode uses UDP datagram sockets; set Privileged when the
// process may open raw sockets.
type ICMPPinger struct {
	Privileged bool
}

func (p ICMPPinger) Ping(ctx context.Context, target string, timeout time.Duration) Outcome {
	pinger, err := ping.NewPinger(target)
	if err != nil {
		return Failure(fmt.Errorf("ping %s: %w", target, err))
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(p.Privileged)

	done := make(chan error, 1)
	go func() { done <- pinger.Run() }()
	select {
	case err = <-done:
	case <-ctx.Done():
		pinger.Stop()
		<-done
		return Failure(ctx.Err())
	}
	if err != nil {
		return Failure(fmt.Errorf("ping %s: %w", target, err))
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return Failure(errors.New("ping " + target + ": no reply within timeout"))
	}
	return Success(float64(stats.AvgRtt.Microseconds()) / 1000)
}
