// Package woocommerce implements the platform adapter for WooCommerce
// stores (WordPress + WooCommerce plugin on the Bitnami chart).
package woocommerce

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/storeforge/storeforge/pkg/adapter"
	v1alpha1 "github.com/storeforge/storeforge/pkg/apis/store/v1alpha1"
	podexec "github.com/storeforge/storeforge/pkg/k8s/exec"
)

const (
	// wpRoot is where the Bitnami image installs WordPress; wp-cli must run
	// from there.
	wpRoot = "/opt/bitnami/wordpress"

	passwordSecretKey = "wordpress-password"
)

// Adapter provisions and configures WooCommerce stores.
type Adapter struct {
	executor  podexec.Interface
	clientset kubernetes.Interface
	logger    logrus.FieldLogger
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a WooCommerce adapter backed by the given command executor and
// cluster client.
func New(
	executor podexec.Interface,
	clientset kubernetes.Interface,
	logger logrus.FieldLogger,
) *Adapter {
	return &Adapter{
		executor:  executor,
		clientset: clientset,
		logger:    logger,
	}
}

// Engine returns the woocommerce engine identifier.
func (a *Adapter) Engine() v1alpha1.Engine {
	return v1alpha1.EngineWooCommerce
}

// ChartDependency returns the Bitnami WordPress chart dependency.
func (a *Adapter) ChartDependency() adapter.ChartDependency {
	return adapter.ChartDependency{
		Name:       "wordpress",
		Version:    "28.x.x",
		Repository: "https://charts.bitnami.com/bitnami",
		Condition:  "wordpress.enabled",
	}
}

// DefaultValues renders the WooCommerce values tree. Deterministic: admin
// and database credentials are generated by the chart itself and read back
// from the release's secret afterwards.
func (a *Adapter) DefaultValues(storeName, host string) map[string]any {
	return map[string]any{
		"store": map[string]any{
			"name":   storeName,
			"engine": "wordpress",
			"host":   host,
		},
		"wordpress": map[string]any{
			"enabled":           true,
			"wordpressUsername": "user",
			"wordpressEmail":    "admin@example.com",
			"wordpressBlogName": storeName,
			"wordpressPlugins":  "woocommerce",
			"mariadb": map[string]any{
				"enabled": true,
				"auth": map[string]any{
					"database": "wordpress",
					"username": "bn_wordpress",
				},
				"primary": map[string]any{
					"persistence": map[string]any{
						"size": "8Gi",
					},
				},
			},
		},
		"ingress": map[string]any{
			"enabled":   true,
			"className": "nginx",
		},
	}
}

// Configure installs and activates WooCommerce, seeds a test product and
// enables the cash-on-delivery gateway. Every step checks before acting, so
// re-running after a partial attempt is safe.
func (a *Adapter) Configure(ctx context.Context, namespace, releaseName string) error {
	selector := a.PodSelector(releaseName)

	if !a.coreInstalled(ctx, namespace, selector) {
		return errors.New("wordpress core not installed")
	}

	// WC_Install::create_pages seeds the shop/cart/checkout pages the
	// storefront URL resolves to.
	installCmd := fmt.Sprintf(
		"cd %s && "+
			"(wp plugin is-installed woocommerce --allow-root || wp plugin install woocommerce --activate --allow-root) && "+
			"(wp plugin is-active woocommerce --allow-root || wp plugin activate woocommerce --allow-root) && "+
			"wp eval 'if (class_exists(\"WC_Install\")) { WC_Install::create_pages(); }' --allow-root",
		wpRoot,
	)
	if _, err := a.executor.Exec(ctx, namespace, selector, installCmd); err != nil {
		return fmt.Errorf("install woocommerce plugin: %w", err)
	}

	// Seed exactly one product, and only when the catalog is empty. A failed
	// create fails the step; only the emptiness check short-circuits.
	productCmd := fmt.Sprintf(
		"cd %s && "+
			"PRODUCTS=$(wp post list --post_type=product --format=ids --allow-root) && "+
			"if [ -z \"$PRODUCTS\" ]; then "+
			"wp wc product create --name='Test Product' --type=simple --status=publish "+
			"--regular_price='10.00' --user=1 --allow-root; "+
			"fi",
		wpRoot,
	)
	if _, err := a.executor.Exec(ctx, namespace, selector, productCmd); err != nil {
		return fmt.Errorf("seed test product: %w", err)
	}

	codCmd := fmt.Sprintf(
		"cd %s && wp wc payment_gateway update cod --enabled=true --user=1 --allow-root",
		wpRoot,
	)
	if _, err := a.executor.Exec(ctx, namespace, selector, codCmd); err != nil {
		return fmt.Errorf("enable cash-on-delivery gateway: %w", err)
	}

	return nil
}

// AdminPassword reads the generated admin password from the release's
// WordPress secret.
func (a *Adapter) AdminPassword(
	ctx context.Context,
	namespace, releaseName string,
) (string, error) {
	secretName := releaseName + "-wordpress"

	secret, err := a.clientset.CoreV1().Secrets(namespace).Get(ctx, secretName, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", fmt.Errorf("secret %q: %w", secretName, adapter.ErrCredentialUnavailable)
		}

		return "", fmt.Errorf("get secret %q: %w", secretName, err)
	}

	password, ok := secret.Data[passwordSecretKey]
	if !ok || len(password) == 0 {
		return "", fmt.Errorf("secret %q has no %s key: %w",
			secretName, passwordSecretKey, adapter.ErrCredentialUnavailable)
	}

	return string(password), nil
}

// PodSelector returns the label selector for the WordPress pod.
func (a *Adapter) PodSelector(releaseName string) string {
	return fmt.Sprintf(
		"app.kubernetes.io/name=wordpress,app.kubernetes.io/instance=%s",
		releaseName,
	)
}

// URLPath returns the WooCommerce storefront path.
func (a *Adapter) URLPath() string {
	return "/shop/"
}

// IsReady reports whether WordPress core is installed and serving.
func (a *Adapter) IsReady(ctx context.Context, namespace, releaseName string) bool {
	return a.coreInstalled(ctx, namespace, a.PodSelector(releaseName))
}

func (a *Adapter) coreInstalled(ctx context.Context, namespace, selector string) bool {
	cmd := fmt.Sprintf("cd %s && wp core is-installed --allow-root", wpRoot)

	_, err := a.executor.Exec(ctx, namespace, selector, cmd)
	if err != nil && a.logger != nil {
		a.logger.WithField("namespace", namespace).Debugf("wordpress core check: %v", err)
	}

	return err == nil
}
