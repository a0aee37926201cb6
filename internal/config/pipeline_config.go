package config

import "time"

// RedirectConfig controls redirect chain resolution
type RedirectConfig struct {
	MaxHops        int `json:"max_hops,omitempty" yaml:"max_hops,omitempty" validate:"min=1,max=10"`
	HopTimeoutSecs int `json:"hop_timeout_secs,omitempty" yaml:"hop_timeout_secs,omitempty" validate:"min=1,max=120"`
	// Follow <meta http-equiv="refresh"> on the terminal page
	FollowMetaRefresh       bool `json:"follow_meta_refresh,omitempty" yaml:"follow_meta_refresh,omitempty"`
	MaxMetaRefreshBodyBytes int  `json:"max_meta_refresh_body_bytes,omitempty" yaml:"max_meta_refresh_body_bytes,omitempty" validate:"min=0"`
}

// NewDefaultRedirectConfig creates default redirect configuration
func NewDefaultRedirectConfig() RedirectConfig {
	return RedirectConfig{
		MaxHops:                 DefaultRedirectMaxHops,
		HopTimeoutSecs:          DefaultRedirectHopTimeoutSecs,
		MaxMetaRefreshBodyBytes: DefaultRedirectMaxMetaRefreshBytes,
	}
}

// HopTimeout returns the per hop timeout
func (c RedirectConfig) HopTimeout() time.Duration {
	return time.Duration(c.HopTimeoutSecs) * time.Second
}

// ReachabilityConfig controls the reachability probe
type ReachabilityConfig struct {
	TimeoutSecs       int  `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=1,max=120"`
	MaxRedirects      int  `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"min=0,max=30"`
	MaxContentBytes   int  `json:"max_content_bytes,omitempty" yaml:"max_content_bytes,omitempty" validate:"min=0"`
	EnableWWWFallback bool `json:"enable_www_fallback" yaml:"enable_www_fallback"`
	// Query DNS directly before the HTTP probe to detect NXDOMAIN
	DNSPrecheck bool `json:"dns_precheck" yaml:"dns_precheck"`
	// Nameservers as host:port, empty means /etc/resolv.conf
	DNSServers       []string `json:"dns_servers,omitempty" yaml:"dns_servers,omitempty" validate:"dive,hostname_port"`
	DNSTimeoutMillis int      `json:"dns_timeout_millis,omitempty" yaml:"dns_timeout_millis,omitempty" validate:"min=0"`
}

// NewDefaultReachabilityConfig creates default reachability configuration
func NewDefaultReachabilityConfig() ReachabilityConfig {
	return ReachabilityConfig{
		TimeoutSecs:       DefaultReachabilityTimeoutSecs,
		MaxRedirects:      DefaultReachabilityMaxRedirects,
		MaxContentBytes:   DefaultReachabilityMaxContentBytes,
		EnableWWWFallback: true,
		DNSPrecheck:       true,
		DNSTimeoutMillis:  DefaultReachabilityDNSTimeoutMs,
	}
}

// Timeout returns the per attempt call timeout
func (c ReachabilityConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// DNSTimeout returns the DNS precheck timeout
func (c ReachabilityConfig) DNSTimeout() time.Duration {
	return time.Duration(c.DNSTimeoutMillis) * time.Millisecond
}

// URLScanConfig controls the reputation service client
type URLScanConfig struct {
	BaseURL            string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"required,httpurl"`
	APIKey             string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Visibility         string `json:"visibility,omitempty" yaml:"visibility,omitempty" validate:"visibility"`
	UserAgent          string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	ExactWindowDays    int    `json:"exact_window_days,omitempty" yaml:"exact_window_days,omitempty" validate:"min=0,max=3650"`
	DomainWindowDays   int    `json:"domain_window_days,omitempty" yaml:"domain_window_days,omitempty" validate:"min=0,max=3650"`
	PollIntervalMillis int    `json:"poll_interval_millis,omitempty" yaml:"poll_interval_millis,omitempty" validate:"min=1,max=60000"`
	MaxPollAttempts    int    `json:"max_poll_attempts,omitempty" yaml:"max_poll_attempts,omitempty" validate:"min=1,max=100"`
	RequestTimeoutSecs int    `json:"request_timeout_secs,omitempty" yaml:"request_timeout_secs,omitempty" validate:"min=1,max=300"`
	// Submit a fresh scan when the cached result is ready but not strong
	RescanWeakCachedResults bool        `json:"rescan_weak_cached_results" yaml:"rescan_weak_cached_results"`
	RetryConfig             RetryConfig `json:"retry_config,omitempty" yaml:"retry_config,omitempty"`
}

// NewDefaultURLScanConfig creates default urlscan configuration
func NewDefaultURLScanConfig() URLScanConfig {
	return URLScanConfig{
		BaseURL:                 DefaultURLScanBaseURL,
		Visibility:              DefaultURLScanVisibility,
		UserAgent:               DefaultURLScanUserAgent,
		ExactWindowDays:         DefaultURLScanExactWindowDays,
		DomainWindowDays:        DefaultURLScanDomainWindowDays,
		PollIntervalMillis:      DefaultURLScanPollIntervalMillis,
		MaxPollAttempts:         DefaultURLScanMaxPollAttempts,
		RequestTimeoutSecs:      DefaultURLScanRequestTimeoutSecs,
		RescanWeakCachedResults: true,
		RetryConfig:             NewDefaultRetryConfig(),
	}
}

// PollInterval returns the delay between poll attempts
func (c URLScanConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

// RequestTimeout returns the timeout applied to each API request
func (c URLScanConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// HasAPIKey reports whether fresh submissions are possible
func (c URLScanConfig) HasAPIKey() bool {
	return c.APIKey != ""
}

// OrchestratorConfig controls input handling ahead of the pipeline
type OrchestratorConfig struct {
	DefaultScheme string `json:"default_scheme,omitempty" yaml:"default_scheme,omitempty" validate:"oneof=http https"`
}

// NewDefaultOrchestratorConfig creates default orchestrator configuration
func NewDefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{DefaultScheme: DefaultOrchestratorDefaultScheme}
}

// HistoryConfig controls the local verdict history
type HistoryConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	SQLiteDBPath string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty" validate:"required_if=Enabled true"`
}

// NewDefaultHistoryConfig creates default history configuration
func NewDefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Enabled:      true,
		SQLiteDBPath: DefaultHistorySQLiteDBPath,
	}
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	// Empty disables the /metrics listener
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty" validate:"omitempty,hostname_port"`
	Namespace  string `json:"namespace,omitempty" yaml:"namespace,omitempty" validate:"required"`
}

// NewDefaultMetricsConfig creates default metrics configuration
func NewDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Namespace: DefaultMetricsNamespace}
}

// NotificationConfig controls Discord alerts for elevated verdicts
type NotificationConfig struct {
	// Empty disables notifications
	DiscordWebhookURL string   `json:"discord_webhook_url,omitempty" yaml:"discord_webhook_url,omitempty" validate:"omitempty,httpurl"`
	Username          string   `json:"username,omitempty" yaml:"username,omitempty"`
	MentionRoleIDs    []string `json:"mention_role_ids,omitempty" yaml:"mention_role_ids,omitempty"`
	NotifyUnreachable bool     `json:"notify_unreachable,omitempty" yaml:"notify_unreachable,omitempty"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{Username: DefaultNotificationUsername}
}

// Enabled reports whether a webhook is configured
func (c NotificationConfig) Enabled() bool {
	return c.DiscordWebhookURL != ""
}
