package dnscheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

const resolvConfPath = "/etc/resolv.conf"

// Checker asks a nameserver whether a hostname exists. An NXDOMAIN answer
// is reported as common.ErrDNSFailure only when the system resolver (hosts
// file, search domains) agrees; every other failure is returned as a plain
// error.
type Checker struct {
	client     *dns.Client
	servers    []string
	lookupHost func(ctx context.Context, host string) ([]string, error)
	logger     zerolog.Logger
}

// New builds a Checker. When cfg lists no servers the system resolv.conf
// is consulted.
func New(cfg config.ReachabilityConfig, logger zerolog.Logger) *Checker {
	timeout := cfg.DNSTimeout()
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultReachabilityDNSTimeoutMs) * time.Millisecond
	}

	servers := append([]string(nil), cfg.DNSServers...)
	if len(servers) == 0 {
		if conf, err := dns.ClientConfigFromFile(resolvConfPath); err == nil {
			for _, s := range conf.Servers {
				servers = append(servers, net.JoinHostPort(s, conf.Port))
			}
		}
	}

	checkerLogger := logger.With().Str("component", "DNSChecker").Logger()
	if len(servers) == 0 {
		checkerLogger.Warn().Msg("No nameservers available, DNS pre-check disabled")
	}

	return &Checker{
		client: &dns.Client{
			Net:          "udp",
			Timeout:      timeout,
			DialTimeout:  timeout,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		servers:    servers,
		lookupHost: net.DefaultResolver.LookupHost,
		logger:     checkerLogger,
	}
}

// CheckHost queries the A record of host. It returns nil when the name
// resolves (or exists without A records) and an error wrapping
// common.ErrDNSFailure on NXDOMAIN.
func (c *Checker) CheckHost(ctx context.Context, host string) error {
	host = strings.TrimSpace(host)
	if host == "" {
		return fmt.Errorf("hostname is empty")
	}
	if len(c.servers) == 0 {
		return fmt.Errorf("no nameservers configured")
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range c.servers {
		if err := ctx.Err(); err != nil {
			return err
		}

		resp, rtt, err := c.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			c.logger.Debug().Err(err).Str("server", server).Str("host", host).Msg("DNS exchange failed, trying next server")
			continue
		}

		c.logger.Debug().
			Str("host", host).
			Str("server", server).
			Str("rcode", dns.RcodeToString[resp.Rcode]).
			Dur("rtt", rtt).
			Msg("DNS pre-check answered")

		switch resp.Rcode {
		case dns.RcodeSuccess:
			return nil
		case dns.RcodeNameError:
			return c.confirmMissing(ctx, host, server)
		default:
			lastErr = fmt.Errorf("nameserver %s answered %s", server, dns.RcodeToString[resp.Rcode])
		}
	}

	return common.WrapErrorf(lastErr, "DNS pre-check for '%s' inconclusive", host)
}

// confirmMissing asks the system resolver about a name the nameserver
// denied. Names from /etc/hosts or reachable through search domains
// resolve there, and the HTTP probe uses the same resolver.
func (c *Checker) confirmMissing(ctx context.Context, host, server string) error {
	addrs, err := c.lookupHost(ctx, host)
	if err == nil {
		c.logger.Debug().Str("host", host).Strs("addrs", addrs).Msg("NXDOMAIN overridden by system resolver")
		return fmt.Errorf("nameserver %s answered NXDOMAIN but '%s' resolves locally", server, host)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return common.WrapErrorf(common.ErrDNSFailure, "host '%s' does not exist", host)
	}
	return common.WrapErrorf(err, "system lookup of '%s' failed after NXDOMAIN", host)
}
