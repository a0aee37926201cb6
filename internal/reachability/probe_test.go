package reachability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/aleister1102/scamsiren/internal/dnscheck"
	"github.com/aleister1102/scamsiren/internal/models"
	"github.com/miekg/dns"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	mu      sync.Mutex
	results map[string]error
	calls   []string
}

func (f *fakeChecker) CheckHost(_ context.Context, host string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, host)
	return f.results[host]
}

// newProxiedProbe routes every request through server acting as an HTTP
// proxy, so tests can use arbitrary hostnames without real DNS.
func newProxiedProbe(t *testing.T, server *httptest.Server, checker HostChecker, mutate func(*config.ReachabilityConfig)) *Probe {
	t.Helper()
	httpCfg := config.NewDefaultHTTPClientConfig()
	if server != nil {
		httpCfg.Proxy = server.URL
	}
	cfg := config.NewDefaultReachabilityConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	probe, err := NewProbeFromConfig(httpCfg, cfg, checker, zerolog.Nop())
	require.NoError(t, err)
	return probe
}

func TestProbe_Exists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.Header.Get("User-Agent"), "ScamSiren/1.0")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	outcome := newProxiedProbe(t, nil, nil, nil).Probe(context.Background(), server.URL+"/login")

	assert.Equal(t, models.ReachabilityExists, outcome.State)
	assert.Equal(t, server.URL+"/login", outcome.URL)
	assert.Equal(t, http.StatusOK, outcome.StatusCode)
	assert.False(t, outcome.UsedWWWFallback)
}

func TestProbe_FollowsRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/end", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	outcome := newProxiedProbe(t, nil, nil, nil).Probe(context.Background(), server.URL+"/start")
	assert.Equal(t, models.ReachabilityExists, outcome.State)
	assert.Equal(t, server.URL+"/start", outcome.URL)
}

func TestProbe_ErrorStatusOnIPHostIsUnreachable(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	outcome := newProxiedProbe(t, nil, nil, nil).Probe(context.Background(), server.URL)

	assert.Equal(t, models.ReachabilityUnreachable, outcome.State)
	assert.Equal(t, http.StatusInternalServerError, outcome.StatusCode)
	assert.Equal(t, "HTTP status 500", outcome.Reason)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "IP hosts get no www fallback")
}

func TestProbe_ConnectionRefused(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	outcome := newProxiedProbe(t, nil, nil, nil).Probe(context.Background(), deadURL)
	assert.Equal(t, models.ReachabilityUnreachable, outcome.State)
	assert.Equal(t, deadURL, outcome.URL)
	assert.True(t, strings.HasPrefix(outcome.Reason, common.ErrConnectionFailure.Error()))
}

func TestProbe_DNSPrecheckNXDOMAIN(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	checker := &fakeChecker{results: map[string]error{
		"gone.test": common.WrapError(common.ErrDNSFailure, "host 'gone.test' does not exist"),
	}}

	outcome := newProxiedProbe(t, server, checker, nil).Probe(context.Background(), "http://gone.test/")

	assert.Equal(t, models.ReachabilityInvalid, outcome.State)
	assert.Empty(t, outcome.URL)
	assert.Equal(t, []string{"gone.test"}, checker.calls, "invalid is never retried with www")
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}

func TestProbe_DNSPrecheckInconclusive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := &fakeChecker{results: map[string]error{"flaky.test": errors.New("SERVFAIL")}}

	outcome := newProxiedProbe(t, server, checker, nil).Probe(context.Background(), "http://flaky.test/")
	assert.Equal(t, models.ReachabilityExists, outcome.State)
}

func TestProbe_DNSPrecheckDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := &fakeChecker{results: map[string]error{"site.test": common.ErrDNSFailure}}
	probe := newProxiedProbe(t, server, checker, func(c *config.ReachabilityConfig) { c.DNSPrecheck = false })

	outcome := probe.Probe(context.Background(), "http://site.test/")
	assert.Equal(t, models.ReachabilityExists, outcome.State)
	assert.Empty(t, checker.calls)
}

func wwwOnlyServer(t *testing.T, hosts *[]string) *httptest.Server {
	var mu sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*hosts = append(*hosts, r.Host)
		mu.Unlock()
		if strings.HasPrefix(r.Host, "www.") {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
}

func TestProbe_WWWFallback(t *testing.T) {
	var hosts []string
	server := wwwOnlyServer(t, &hosts)
	defer server.Close()

	outcome := newProxiedProbe(t, server, nil, nil).Probe(context.Background(), "http://site.test/promo")

	assert.Equal(t, models.ReachabilityExists, outcome.State)
	assert.Equal(t, "http://www.site.test/promo", outcome.URL)
	assert.True(t, outcome.UsedWWWFallback)
	assert.Equal(t, []string{"site.test", "www.site.test"}, hosts)
}

func TestProbe_WWWFallbackAlsoFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	outcome := newProxiedProbe(t, server, nil, nil).Probe(context.Background(), "http://site.test/")

	assert.Equal(t, models.ReachabilityUnreachable, outcome.State)
	assert.Equal(t, "http://site.test/", outcome.URL, "first outcome is kept")
	assert.False(t, outcome.UsedWWWFallback)
}

func TestProbe_NoFallbackForWWWHost(t *testing.T) {
	var hosts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hosts = append(hosts, r.Host)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	outcome := newProxiedProbe(t, server, nil, nil).Probe(context.Background(), "http://www.site.test/")
	assert.Equal(t, models.ReachabilityUnreachable, outcome.State)
	assert.Equal(t, []string{"www.site.test"}, hosts)
}

func TestProbe_WWWFallbackDisabled(t *testing.T) {
	var hosts []string
	server := wwwOnlyServer(t, &hosts)
	defer server.Close()

	probe := newProxiedProbe(t, server, nil, func(c *config.ReachabilityConfig) { c.EnableWWWFallback = false })
	outcome := probe.Probe(context.Background(), "http://site.test/")

	assert.Equal(t, models.ReachabilityUnreachable, outcome.State)
	assert.Equal(t, []string{"site.test"}, hosts)
}

// startDenyingNameserver answers NXDOMAIN for every name.
func startDenyingNameserver(t *testing.T) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	server := &dns.Server{
		PacketConn: pc,
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetRcode(r, dns.RcodeNameError)
			_ = w.WriteMsg(m)
		}),
		NotifyStartedFunc: func() { close(started) },
	}
	go func() { _ = server.ActivateAndServe() }()
	t.Cleanup(func() { _ = server.Shutdown() })

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("nameserver did not start")
	}
	return pc.LocalAddr().String()
}

func TestProbe_HostsFileNameDeniedByNameserver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.NewDefaultReachabilityConfig()
	cfg.DNSServers = []string{startDenyingNameserver(t)}
	cfg.DNSTimeoutMillis = 500
	checker := dnscheck.New(cfg, zerolog.Nop())

	probe, err := NewProbeFromConfig(config.NewDefaultHTTPClientConfig(), cfg, checker, zerolog.Nop())
	require.NoError(t, err)

	target := strings.Replace(server.URL, "127.0.0.1", "localhost", 1) + "/"
	outcome := probe.Probe(context.Background(), target)

	assert.Equal(t, models.ReachabilityExists, outcome.State, outcome.Reason)
	assert.Equal(t, target, outcome.URL)
}
