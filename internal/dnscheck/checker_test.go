package dnscheck

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/miekg/dns"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFakeNameserver(t *testing.T) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		switch r.Question[0].Name {
		case "present.test.":
			rr, _ := dns.NewRR("present.test. 60 IN A 192.0.2.10")
			m.Answer = append(m.Answer, rr)
		case "broken.test.":
			m.Rcode = dns.RcodeServerFailure
		default:
			m.Rcode = dns.RcodeNameError
		}
		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	server := &dns.Server{PacketConn: pc, Handler: mux, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = server.ActivateAndServe() }()
	t.Cleanup(func() { _ = server.Shutdown() })

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("fake nameserver did not start")
	}
	return pc.LocalAddr().String()
}

// newTestChecker answers system lookups with "not found" so results depend
// only on the fake nameservers.
func newTestChecker(servers ...string) *Checker {
	cfg := config.NewDefaultReachabilityConfig()
	cfg.DNSServers = servers
	cfg.DNSTimeoutMillis = 500
	checker := New(cfg, zerolog.Nop())
	checker.lookupHost = func(_ context.Context, host string) ([]string, error) {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return checker
}

func TestChecker_CheckHost(t *testing.T) {
	addr := startFakeNameserver(t)
	checker := newTestChecker(addr)

	t.Run("existing host", func(t *testing.T) {
		assert.NoError(t, checker.CheckHost(context.Background(), "present.test"))
	})

	t.Run("nxdomain", func(t *testing.T) {
		err := checker.CheckHost(context.Background(), "missing.test")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrDNSFailure)
	})

	t.Run("server failure is inconclusive", func(t *testing.T) {
		err := checker.CheckHost(context.Background(), "broken.test")
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrDNSFailure)
	})

	t.Run("empty host", func(t *testing.T) {
		assert.Error(t, checker.CheckHost(context.Background(), " "))
	})
}

func TestChecker_FallsThroughToNextServer(t *testing.T) {
	addr := startFakeNameserver(t)

	// Nothing listens on the first address, so the exchange times out.
	dead, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	deadAddr := dead.LocalAddr().String()
	require.NoError(t, dead.Close())

	checker := newTestChecker(deadAddr, addr)
	assert.Equal(t, []string{deadAddr, addr}, checker.servers)

	err = checker.CheckHost(context.Background(), "missing.test")
	assert.ErrorIs(t, err, common.ErrDNSFailure)
}

func TestChecker_CancelledContext(t *testing.T) {
	addr := startFakeNameserver(t)
	checker := newTestChecker(addr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := checker.CheckHost(ctx, "present.test")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChecker_NXDOMAINOverriddenBySystemResolver(t *testing.T) {
	addr := startFakeNameserver(t)
	cfg := config.NewDefaultReachabilityConfig()
	cfg.DNSServers = []string{addr}
	cfg.DNSTimeoutMillis = 500
	checker := New(cfg, zerolog.Nop())

	// The fake nameserver denies localhost, the hosts file knows it.
	err := checker.CheckHost(context.Background(), "localhost")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrDNSFailure)
}

func TestChecker_NXDOMAINWithFailedSystemLookupIsInconclusive(t *testing.T) {
	addr := startFakeNameserver(t)
	checker := newTestChecker(addr)
	checker.lookupHost = func(_ context.Context, host string) ([]string, error) {
		return nil, &net.DNSError{Err: "i/o timeout", Name: host, IsTimeout: true}
	}

	err := checker.CheckHost(context.Background(), "missing.test")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrDNSFailure)
}

func TestChecker_NXDOMAINConfirmed(t *testing.T) {
	addr := startFakeNameserver(t)
	checker := newTestChecker(addr)
	checker.lookupHost = func(_ context.Context, host string) ([]string, error) {
		assert.Equal(t, "intranet", host)
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}

	assert.ErrorIs(t, checker.CheckHost(context.Background(), "intranet"), common.ErrDNSFailure)
}
