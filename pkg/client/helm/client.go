// Package helm wraps the Helm v4 SDK as the orchestrator's release driver.
//
// Every store maps to exactly one Helm release whose name equals its
// namespace. The driver exposes the minimal operation set the provisioner
// needs (install, uninstall, status) with explicit timeouts and a
// transient/permanent failure classification for retry decisions.
package helm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	helmv4action "helm.sh/helm/v4/pkg/action"
	chartv2 "helm.sh/helm/v4/pkg/chart/v2"
	helmv4loader "helm.sh/helm/v4/pkg/chart/loader"
	helmv4cli "helm.sh/helm/v4/pkg/cli"
	helmv4getter "helm.sh/helm/v4/pkg/getter"
	helmv4kube "helm.sh/helm/v4/pkg/kube"
	v1 "helm.sh/helm/v4/pkg/release/v1"
	repov1 "helm.sh/helm/v4/pkg/repo/v1"
	helmv4driver "helm.sh/helm/v4/pkg/storage/driver"
)

const (
	// DefaultTimeout defines the fallback Helm operation timeout.
	DefaultTimeout = 10 * time.Minute

	historyMax = 1
)

var (
	errReleaseNameRequired = errors.New("helm: release name is required")
	errChartSpecRequired   = errors.New("helm: chart spec is required")
)

// ChartSpec describes a chart installation for a single store release.
type ChartSpec struct {
	ReleaseName string
	ChartName   string
	Namespace   string
	Version     string

	CreateNamespace bool
	Wait            bool
	WaitForJobs     bool
	Timeout         time.Duration

	// Values is the fully rendered values tree produced by the platform
	// adapter (plus any operator overlay).
	Values map[string]any

	RepoURL string
}

// ReleaseInfo captures metadata about a Helm release after an operation.
type ReleaseInfo struct {
	Name       string
	Namespace  string
	Revision   int
	Status     string
	Chart      string
	AppVersion string
	Updated    time.Time
}

// Interface defines the release driver contract consumed by the provisioner.
type Interface interface {
	// Install creates the namespace if absent and installs the chart. A
	// failed install surfaces the tool's error; cleanup is delegated to the
	// deletion path.
	Install(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error)
	// Uninstall removes a release. Uninstalling a release that does not
	// exist is treated as success; deletion is idempotent. The namespace
	// deletion it triggers completes asynchronously and is not awaited.
	Uninstall(ctx context.Context, releaseName, namespace string) error
	// Status returns the driver's view of the latest revision and health.
	Status(ctx context.Context, releaseName, namespace string) (*ReleaseInfo, error)
}

// Client is the default Helm v4 implementation of the release driver.
type Client struct {
	actionConfig *helmv4action.Configuration
	settings     *helmv4cli.EnvSettings

	// mu serializes operations: Helm actions read the target namespace from
	// the shared configuration, so the namespace switch and the operation
	// must be atomic across concurrent pipelines.
	mu sync.Mutex
}

var _ Interface = (*Client)(nil)

// NewClient creates a Helm client using the provided kubeconfig and context.
func NewClient(kubeConfig, kubeContext string) (*Client, error) {
	settings := helmv4cli.New()
	if kubeConfig != "" {
		settings.KubeConfig = kubeConfig
	}

	if kubeContext != "" {
		settings.KubeContext = kubeContext
	}

	actionConfig := new(helmv4action.Configuration)

	initErr := actionConfig.Init(
		settings.RESTClientGetter(),
		settings.Namespace(),
		os.Getenv("HELM_DRIVER"),
	)
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", initErr)
	}

	return &Client{
		actionConfig: actionConfig,
		settings:     settings,
	}, nil
}

// Install installs a chart release using the provided specification.
func (c *Client) Install(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error) {
	if spec == nil {
		return nil, errChartSpecRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cleanup, err := c.switchNamespace(spec.Namespace)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	client := helmv4action.NewInstall(c.actionConfig)
	client.ReleaseName = spec.ReleaseName
	client.Namespace = spec.Namespace
	client.CreateNamespace = spec.CreateNamespace
	client.Version = spec.Version

	if spec.Wait {
		client.WaitStrategy = helmv4kube.StatusWatcherStrategy
	}

	client.WaitForJobs = spec.WaitForJobs

	client.Timeout = spec.Timeout
	if client.Timeout == 0 {
		client.Timeout = DefaultTimeout
	}

	chart, err := c.locateAndLoadChart(spec, client)
	if err != nil {
		return nil, Classify(err)
	}

	releaser, err := client.RunWithContext(ctx, chart, spec.Values)
	if err != nil {
		return nil, Classify(fmt.Errorf("install release %q: %w", spec.ReleaseName, err))
	}

	rel, ok := releaser.(*v1.Release)
	if !ok {
		return nil, fmt.Errorf("unexpected release type: %T", releaser)
	}

	return releaseToInfo(rel), nil
}

// Uninstall removes a Helm release by name within the provided namespace.
// A missing release is success, not an error.
func (c *Client) Uninstall(ctx context.Context, releaseName, namespace string) error {
	if releaseName == "" {
		return errReleaseNameRequired
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return fmt.Errorf("uninstall release context cancelled: %w", ctxErr)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cleanup, err := c.switchNamespace(namespace)
	if err != nil {
		return err
	}
	defer cleanup()

	client := helmv4action.NewUninstall(c.actionConfig)
	client.KeepHistory = false

	_, uninstallErr := client.Run(releaseName)

	return uninstallResult(releaseName, uninstallErr)
}

// Status returns the latest revision of a release via its history.
func (c *Client) Status(ctx context.Context, releaseName, namespace string) (*ReleaseInfo, error) {
	if releaseName == "" {
		return nil, errReleaseNameRequired
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return nil, fmt.Errorf("release status context cancelled: %w", ctxErr)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cleanup, err := c.switchNamespace(namespace)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	histClient := helmv4action.NewHistory(c.actionConfig)
	histClient.Max = historyMax

	releases, histErr := histClient.Run(releaseName)
	if histErr != nil {
		return nil, Classify(fmt.Errorf("release status %q: %w", releaseName, histErr))
	}

	if len(releases) == 0 {
		return nil, Classify(fmt.Errorf("release status %q: %w", releaseName, helmv4driver.ErrReleaseNotFound))
	}

	latest := releases[len(releases)-1]

	rel, ok := latest.(*v1.Release)
	if !ok {
		return nil, fmt.Errorf("unexpected release type: %T", latest)
	}

	return releaseToInfo(rel), nil
}

func (c *Client) locateAndLoadChart(
	spec *ChartSpec,
	client *helmv4action.Install,
) (*chartv2.Chart, error) {
	chartPath := spec.ChartName

	if spec.RepoURL != "" {
		client.ChartPathOptions.RepoURL = spec.RepoURL

		options := []repov1.FindChartInRepoURLOption{
			repov1.WithChartVersion(spec.Version),
		}

		chartURL, err := repov1.FindChartInRepoURL(
			spec.RepoURL,
			spec.ChartName,
			helmv4getter.All(c.settings),
			options...,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to locate chart %q in repository %s: %w",
				spec.ChartName,
				spec.RepoURL,
				err,
			)
		}

		chartPath = chartURL
	}

	chartInterface, err := helmv4loader.Load(chartPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	chart, ok := chartInterface.(*chartv2.Chart)
	if !ok {
		return nil, fmt.Errorf("unexpected chart type: %T", chartInterface)
	}

	return chart, nil
}

// switchNamespace points the action configuration at the release namespace
// and returns a cleanup restoring the previous one. Helm v4 actions read the
// namespace from the configuration, not the spec.
func (c *Client) switchNamespace(namespace string) (func(), error) {
	if namespace == "" {
		return func() {}, nil
	}

	previousNamespace := c.settings.Namespace()
	if previousNamespace == namespace {
		return func() {}, nil
	}

	c.settings.SetNamespace(namespace)

	reinitErr := c.actionConfig.Init(
		c.settings.RESTClientGetter(),
		namespace,
		os.Getenv("HELM_DRIVER"),
	)
	if reinitErr != nil {
		c.settings.SetNamespace(previousNamespace)
		_ = c.actionConfig.Init(
			c.settings.RESTClientGetter(),
			previousNamespace,
			os.Getenv("HELM_DRIVER"),
		)

		return nil, fmt.Errorf("failed to set helm namespace %q: %w", namespace, reinitErr)
	}

	return func() {
		c.settings.SetNamespace(previousNamespace)
		_ = c.actionConfig.Init(
			c.settings.RESTClientGetter(),
			previousNamespace,
			os.Getenv("HELM_DRIVER"),
		)
	}, nil
}

func isReleaseNotFound(err error) bool {
	return errors.Is(err, helmv4driver.ErrReleaseNotFound) ||
		strings.Contains(err.Error(), "release: not found")
}

// uninstallResult maps an uninstall outcome: a missing release is success,
// anything else is classified for retry decisions.
func uninstallResult(releaseName string, err error) error {
	if err == nil {
		return nil
	}

	if isReleaseNotFound(err) {
		return nil
	}

	return Classify(fmt.Errorf("uninstall release %q: %w", releaseName, err))
}

func releaseToInfo(rel *v1.Release) *ReleaseInfo {
	if rel == nil {
		return nil
	}

	return &ReleaseInfo{
		Name:       rel.Name,
		Namespace:  rel.Namespace,
		Revision:   rel.Version,
		Status:     rel.Info.Status.String(),
		Chart:      rel.Chart.Metadata.Name,
		AppVersion: rel.Chart.Metadata.AppVersion,
		Updated:    rel.Info.LastDeployed,
	}
}
