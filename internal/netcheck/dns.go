package netcheck

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// TimedResolver measures name resolution time by querying the first
// nameserver from the host's resolver configuration directly. When no
// resolver configuration is available it falls back to the system
// resolver, which still yields a timed success-or-failure outcome.
type TimedResolver struct {
	conf *dns.ClientConfig
}

func NewTimedResolver() *TimedResolver {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil {
		return &TimedResolver{}
	}
	return &TimedResolver{conf: conf}
}

func (r *TimedResolver) Resolve(ctx context.Context, target string, timeout time.Duration) Outcome {
	start := time.Now()

	// Address literals resolve trivially, matching plain host lookup
	// semantics. Keeps IP targets from producing spurious NXDOMAIN.
	if net.ParseIP(target) != nil {
		return Success(elapsedMs(start))
	}

	if r.conf == nil || len(r.conf.Servers) == 0 {
		rctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if _, err := net.DefaultResolver.LookupHost(rctx, target); err != nil {
			return Failure(fmt.Errorf("resolve %s: %w", target, err))
		}
		return Success(elapsedMs(start))
	}

	client := &dns.Client{Timeout: timeout}
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(target), dns.TypeA)
	server := net.JoinHostPort(r.conf.Servers[0], r.conf.Port)

	resp, _, err := client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return Failure(fmt.Errorf("resolve %s: %w", target, err))
	}
	if resp.Rcode != dns.RcodeSuccess {
		return Failure(fmt.Errorf("resolve %s: rcode %s", target, dns.RcodeToString[resp.Rcode]))
	}
	return Success(elapsedMs(start))
}
