// Package provisioner drives a store request from PROVISIONING to a terminal
// state. Each request runs in its own goroutine; pipelines share nothing
// mutable beyond the read-only adapter registry and the in-flight tracker.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/storeforge/storeforge/pkg/adapter"
	v1alpha1 "github.com/storeforge/storeforge/pkg/apis/store/v1alpha1"
	"github.com/storeforge/storeforge/pkg/client/helm"
	"github.com/storeforge/storeforge/pkg/config"
	"github.com/storeforge/storeforge/pkg/svc/reporter"
)

// mockPassword is reported in mock mode instead of a cluster credential.
const mockPassword = "mock-password"

// NamespaceGate defers installs into a namespace that is still terminating
// from a prior teardown. Namespace deletion is asynchronous, so reusing a
// store name must wait for absence instead of racing the cleanup.
type NamespaceGate interface {
	WaitForAbsence(ctx context.Context, namespace string) error
}

// WorkloadWaiter blocks until at least one pod matching the selector is
// ready, bounded by the configured poll budget.
type WorkloadWaiter interface {
	WaitForWorkload(ctx context.Context, namespace, selector string) error
}

// Provisioner orchestrates provisioning and deletion pipelines.
type Provisioner struct {
	registry *adapter.Registry
	driver   helm.Interface
	gate     NamespaceGate
	waiter   WorkloadWaiter
	reporter reporter.Interface
	settings *config.Settings
	logger   logrus.FieldLogger

	mu       sync.Mutex
	inflight map[string]pipelineHandle
}

// pipelineHandle lets the deletion path cancel a running pipeline and wait
// for it to exit at its next checkpoint.
type pipelineHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a provisioner. In mock mode driver, gate and waiter may be nil;
// they are never touched.
func New(
	registry *adapter.Registry,
	driver helm.Interface,
	gate NamespaceGate,
	waiter WorkloadWaiter,
	statusReporter reporter.Interface,
	settings *config.Settings,
	logger logrus.FieldLogger,
) *Provisioner {
	return &Provisioner{
		registry: registry,
		driver:   driver,
		gate:     gate,
		waiter:   waiter,
		reporter: statusReporter,
		settings: settings,
		logger:   logger,
		inflight: make(map[string]pipelineHandle),
	}
}

// Provision runs the full pipeline for one store request. Steps are strictly
// sequential; any failure short-circuits to FAILED with the first error. A
// concurrent delete for the same store cancels the pipeline cooperatively at
// the next step boundary, in which case no terminal status is reported here:
// the deletion path owns the DELETING report.
func (p *Provisioner) Provision(ctx context.Context, req *v1alpha1.StoreRequest) {
	log := p.logger.WithFields(logrus.Fields{
		"store_id":  req.StoreID,
		"namespace": req.Namespace,
		"engine":    string(req.Engine),
	})

	pipelineCtx, cancel := context.WithCancel(ctx)
	done := p.track(req.StoreID, cancel)

	defer close(done)
	defer p.untrack(req.StoreID)
	defer cancel()

	if p.settings.MockMode {
		log.Info("mock mode: skipping cluster provisioning")
		p.report(ctx, req.StoreID, v1alpha1.StatusPayload{
			Status:   v1alpha1.StateReady,
			URL:      req.StoreURL,
			Password: mockPassword,
		})

		return
	}

	err := p.runPipeline(pipelineCtx, req, log)
	if err == nil {
		return
	}

	// A cancelled pipeline reports nothing: the deletion path that cancelled
	// it owns the terminal DELETING report.
	if pipelineCtx.Err() != nil {
		log.Info("provisioning pipeline cancelled")

		return
	}

	log.Errorf("provisioning failed: %v", err)

	// Report on the parent context: the pipeline context may already be
	// cancelled, but the failure must still reach the system of record.
	p.report(ctx, req.StoreID, v1alpha1.StatusPayload{
		Status: v1alpha1.StateFailed,
		Error:  err.Error(),
	})
}

//nolint:cyclop // the pipeline is a linear sequence of guarded steps
func (p *Provisioner) runPipeline(
	ctx context.Context,
	req *v1alpha1.StoreRequest,
	log logrus.FieldLogger,
) error {
	// Step 1: resolve the adapter. Unknown or stubbed engines fail before
	// any side effect is performed.
	platform, err := p.registry.Resolve(req.Engine)
	if err != nil {
		return err
	}

	if !p.registry.IsImplemented(req.Engine) {
		return fmt.Errorf("engine %q: %w", req.Engine, adapter.ErrNotImplemented)
	}

	if err := checkpoint(ctx); err != nil {
		return err
	}

	// Step 2: pre-flight namespace gate (known race: a deleted store's
	// namespace finishes terminating asynchronously).
	if err := p.gate.WaitForAbsence(ctx, req.Namespace); err != nil {
		return fmt.Errorf("namespace preflight: %w", err)
	}

	// Step 3: render values and install.
	values, err := p.renderValues(platform, req)
	if err != nil {
		return err
	}

	if err := checkpoint(ctx); err != nil {
		return err
	}

	log.Info("installing store release")

	spec := &helm.ChartSpec{
		ReleaseName:     req.Name,
		ChartName:       p.settings.ChartRef,
		Namespace:       req.Namespace,
		Version:         p.settings.ChartVersion,
		RepoURL:         p.settings.ChartRepoURL,
		CreateNamespace: true,
		Timeout:         p.settings.InstallTimeout,
		Values:          values,
	}

	// The install runs on a timeout-only context detached from pipeline
	// cancellation: a concurrent delete takes over at the next checkpoint,
	// never mid Helm call.
	installCtx, cancelInstall := context.WithTimeout(
		context.WithoutCancel(ctx), installBudget(spec.Timeout))

	_, installErr := helm.InstallWithRetry(installCtx, p.driver, spec)

	cancelInstall()

	if installErr != nil {
		return installErr
	}

	if err := checkpoint(ctx); err != nil {
		return err
	}

	// Step 4: wait for the workload pod.
	log.Info("waiting for workload readiness")

	selector := platform.PodSelector(req.Name)
	if err := p.waiter.WaitForWorkload(ctx, req.Namespace, selector); err != nil {
		return fmt.Errorf("workload readiness: %w", err)
	}

	if err := checkpoint(ctx); err != nil {
		return err
	}

	// Step 5: post-deploy configuration. The adapter's command sequence is
	// idempotent, so it is not retried here.
	log.Info("configuring platform")

	if err := platform.Configure(ctx, req.Namespace, req.Name); err != nil {
		return fmt.Errorf("configure %s: %w", req.Engine, err)
	}

	if err := checkpoint(ctx); err != nil {
		return err
	}

	// Step 6: platform-level readiness, with one bounded re-check window.
	if !platform.IsReady(ctx, req.Namespace, req.Name) {
		if err := sleepCtx(ctx, p.settings.PollInterval); err != nil {
			return err
		}

		if !platform.IsReady(ctx, req.Namespace, req.Name) {
			return fmt.Errorf("platform readiness for %q: %w",
				req.Name, errPlatformNotReady)
		}
	}

	// Step 7: resolve the storefront URL and fetch the credential
	// best-effort; a missing credential is reported as pending, not failed.
	url := fmt.Sprintf("%s://%s%s", p.settings.URLScheme, req.Host, platform.URLPath())

	password, err := platform.AdminPassword(ctx, req.Namespace, req.Name)
	if err != nil {
		if !errors.Is(err, adapter.ErrCredentialUnavailable) {
			log.Warnf("admin password retrieval failed: %v", err)
		}

		password = ""
	}

	// Step 8: terminal success.
	log.Info("store ready")

	p.report(ctx, req.StoreID, v1alpha1.StatusPayload{
		Status:   v1alpha1.StateReady,
		URL:      url,
		Password: password,
	})

	return nil
}

// Delete tears down a store. An in-flight provisioning pipeline for the same
// store is cancelled first and awaited, so the uninstall never overlaps a
// live install of the same release; uninstall failures are logged and
// reported but never block the DELETING acknowledgement, so the system of
// record can drop the record (best-effort cleanup, orphaned resources are an
// operational risk flagged in the logs).
func (p *Provisioner) Delete(ctx context.Context, req *v1alpha1.StoreRequest) {
	log := p.logger.WithFields(logrus.Fields{
		"store_id":  req.StoreID,
		"namespace": req.Namespace,
	})

	p.cancelInflight(ctx, req.StoreID)

	payload := v1alpha1.StatusPayload{Status: v1alpha1.StateDeleting}

	if !p.settings.MockMode {
		err := p.driver.Uninstall(ctx, req.Name, req.Namespace)
		if err != nil {
			// Cleanup is best-effort: surface the error, drop the record.
			log.Errorf("uninstall failed, cluster resources may be orphaned: %v", err)

			payload.Error = err.Error()
		}
	}

	log.Info("store deletion processed")

	p.report(ctx, req.StoreID, payload)
}

// InFlight reports whether a provisioning pipeline is currently running for
// the store.
func (p *Provisioner) InFlight(storeID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.inflight[storeID]

	return ok
}

var errPlatformNotReady = errors.New("platform not ready after re-check window")

func (p *Provisioner) renderValues(
	platform adapter.Adapter,
	req *v1alpha1.StoreRequest,
) (map[string]any, error) {
	values := platform.DefaultValues(req.Name, req.Host)

	if p.settings.StoreValuesFile == "" {
		return values, nil
	}

	overlay, err := helm.LoadValuesFile(p.settings.StoreValuesFile)
	if err != nil {
		return nil, fmt.Errorf("values overlay: %w", err)
	}

	return helm.MergeValues(values, overlay), nil
}

func (p *Provisioner) report(
	ctx context.Context,
	storeID string,
	payload v1alpha1.StatusPayload,
) {
	err := p.reporter.Report(ctx, storeID, payload)
	if err != nil {
		p.logger.WithField("store_id", storeID).
			Errorf("status report failed: %v", err)
	}
}

func (p *Provisioner) track(storeID string, cancel context.CancelFunc) chan struct{} {
	done := make(chan struct{})

	p.mu.Lock()
	defer p.mu.Unlock()

	p.inflight[storeID] = pipelineHandle{cancel: cancel, done: done}

	return done
}

func (p *Provisioner) untrack(storeID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.inflight, storeID)
}

// cancelInflight cancels a running pipeline for the store and waits for it
// to exit at its next checkpoint. The wait is bounded by the caller's
// context so a stuck pipeline cannot block teardown forever.
func (p *Provisioner) cancelInflight(ctx context.Context, storeID string) {
	p.mu.Lock()
	handle, ok := p.inflight[storeID]
	p.mu.Unlock()

	if !ok {
		return
	}

	handle.cancel()

	select {
	case <-handle.done:
	case <-ctx.Done():
	}
}

// checkpoint is the cooperative cancellation point between pipeline steps.
// External-tool calls are never interrupted mid-flight; a delete takes over
// at the next boundary.
func checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline cancelled: %w", err)
	}

	return nil
}

// installBudget bounds the whole install retry loop: every attempt carries
// the per-operation timeout, plus slack for backoff between attempts.
func installBudget(timeout time.Duration) time.Duration {
	if timeout == 0 {
		timeout = helm.DefaultTimeout
	}

	return time.Duration(helm.InstallMaxAttempts)*timeout + time.Minute
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}

		return fmt.Errorf("pipeline cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
