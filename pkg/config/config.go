// Package config loads the orchestrator's settings. Precedence: defaults <
// optional config file < environment variables. All components receive the
// resolved Settings struct by reference; nothing reads ambient globals after
// startup.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys. Environment variables use the uppercased key name
// (e.g. orchestrator_token -> ORCHESTRATOR_TOKEN).
const (
	keyListenAddr        = "listen_addr"
	keyBackendAPIBase    = "backend_api_base"
	keyOrchestratorToken = "orchestrator_token"
	keyPollAttempts      = "poll_attempts"
	keyPollInterval      = "poll_interval"
	keyMockMode          = "mock_mode"
	keyStoreValuesFile   = "store_values_file"
	keyKubeconfig        = "kubeconfig"
	keyKubeContext       = "kube_context"
	keyChartRef          = "chart_ref"
	keyChartRepoURL      = "chart_repo_url"
	keyChartVersion      = "chart_version"
	keyURLScheme         = "url_scheme"
	keyInstallTimeout    = "install_timeout"
	keyExecTimeout       = "exec_timeout"
	keyCallbackTimeout   = "callback_timeout"
)

var (
	// ErrTokenRequired is returned when no shared secret is configured.
	ErrTokenRequired = errors.New("orchestrator_token is required")
	// ErrBackendAPIBaseRequired is returned when the callback base URL is
	// missing.
	ErrBackendAPIBaseRequired = errors.New("backend_api_base is required")
	// ErrChartRefRequired is returned when no chart reference is configured
	// and mock mode is off.
	ErrChartRefRequired = errors.New("chart_ref is required unless mock_mode is enabled")
)

// Settings holds the resolved orchestrator configuration.
type Settings struct {
	// ListenAddr is the bind address of the HTTP entry point.
	ListenAddr string
	// BackendAPIBase is the system-of-record API root for status callbacks.
	BackendAPIBase string
	// OrchestratorToken is the shared secret for inbound and outbound auth.
	OrchestratorToken string
	// PollAttempts is the readiness poll retry budget.
	PollAttempts int
	// PollInterval is the delay between readiness polls.
	PollInterval time.Duration
	// MockMode skips real cluster calls for testing.
	MockMode bool
	// StoreValuesFile optionally overlays the adapter-rendered chart values.
	StoreValuesFile string
	// Kubeconfig is the kubeconfig path; empty uses default loading rules.
	Kubeconfig string
	// KubeContext selects a kubeconfig context; empty uses the default.
	KubeContext string
	// ChartRef is the store chart reference (path or chart name).
	ChartRef string
	// ChartRepoURL is the chart repository, when ChartRef names a repo chart.
	ChartRepoURL string
	// ChartVersion pins the chart version; empty takes the latest.
	ChartVersion string
	// URLScheme is the scheme used when composing storefront URLs.
	URLScheme string
	// InstallTimeout bounds a single Helm install.
	InstallTimeout time.Duration
	// ExecTimeout bounds a single in-pod command.
	ExecTimeout time.Duration
	// CallbackTimeout bounds a single status callback request.
	CallbackTimeout time.Duration
}

// Load resolves settings from defaults, an optional config file, and the
// environment, then validates them.
func Load(configFile string) (*Settings, error) {
	v := viper.New()

	v.SetDefault(keyListenAddr, ":9000")
	v.SetDefault(keyPollAttempts, 30)
	v.SetDefault(keyPollInterval, 10*time.Second)
	v.SetDefault(keyMockMode, false)
	v.SetDefault(keyURLScheme, "http")
	v.SetDefault(keyInstallTimeout, 10*time.Minute)
	v.SetDefault(keyExecTimeout, 2*time.Minute)
	v.SetDefault(keyCallbackTimeout, 30*time.Second)

	if configFile != "" {
		v.SetConfigFile(configFile)

		readErr := v.ReadInConfig()
		if readErr != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, readErr)
		}
	}

	v.AutomaticEnv()

	settings := &Settings{
		ListenAddr:        v.GetString(keyListenAddr),
		BackendAPIBase:    trimTrailingSlash(v.GetString(keyBackendAPIBase)),
		OrchestratorToken: v.GetString(keyOrchestratorToken),
		PollAttempts:      v.GetInt(keyPollAttempts),
		PollInterval:      v.GetDuration(keyPollInterval),
		MockMode:          v.GetBool(keyMockMode),
		StoreValuesFile:   v.GetString(keyStoreValuesFile),
		Kubeconfig:        v.GetString(keyKubeconfig),
		KubeContext:       v.GetString(keyKubeContext),
		ChartRef:          v.GetString(keyChartRef),
		ChartRepoURL:      v.GetString(keyChartRepoURL),
		ChartVersion:      v.GetString(keyChartVersion),
		URLScheme:         v.GetString(keyURLScheme),
		InstallTimeout:    v.GetDuration(keyInstallTimeout),
		ExecTimeout:       v.GetDuration(keyExecTimeout),
		CallbackTimeout:   v.GetDuration(keyCallbackTimeout),
	}

	validateErr := settings.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return settings, nil
}

// Validate checks the required settings. Called before the server binds so
// misconfiguration is fatal at startup, not at first request.
func (s *Settings) Validate() error {
	if s.OrchestratorToken == "" {
		return ErrTokenRequired
	}

	if s.BackendAPIBase == "" {
		return ErrBackendAPIBaseRequired
	}

	if s.ChartRef == "" && !s.MockMode {
		return ErrChartRefRequired
	}

	if s.PollAttempts < 1 {
		s.PollAttempts = 1
	}

	return nil
}

func trimTrailingSlash(value string) string {
	for len(value) > 0 && value[len(value)-1] == '/' {
		value = value[:len(value)-1]
	}

	return value
}
