package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// KubeOptions selects the cluster to talk to
type KubeOptions struct {
	// Kubeconfig is a KUBECONFIG-style path list; empty uses ~/.kube/config
	Kubeconfig string
	Context    string
	Namespace  string
}

// KubeConfig is a resolved client configuration
type KubeConfig struct {
	REST *rest.Config
	// Namespace is the explicit namespace, else the context's, else "default"
	Namespace string
}

// kubeconfigPaths splits a path list using the OS separator, dropping blanks
func kubeconfigPaths(kubeconfig string) []string {
	var paths []string
	for _, path := range strings.Split(kubeconfig, string(os.PathListSeparator)) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}

// LoadKubeConfig resolves client configuration from kubeconfig files.
// With no kubeconfig file available and no context requested, the in-cluster config is used.
func LoadKubeConfig(opts KubeOptions) (*KubeConfig, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()

	if paths := kubeconfigPaths(opts.Kubeconfig); len(paths) > 0 {
		loadingRules.Precedence = paths
	} else if home, err := os.UserHomeDir(); err == nil && home != "" {
		defaultPath := filepath.Join(home, ".kube", "config")
		if _, err := os.Stat(defaultPath); err == nil {
			loadingRules.Precedence = []string{defaultPath}
		} else if opts.Context == "" {
			if config, err := rest.InClusterConfig(); err == nil {
				ns := opts.Namespace
				if ns == "" {
					ns = "default"
				}
				return &KubeConfig{REST: config, Namespace: ns}, nil
			}
		}
	}

	overrides := &clientcmd.ConfigOverrides{}
	if opts.Context != "" {
		overrides.CurrentContext = opts.Context
	}
	if opts.Namespace != "" {
		overrides.Context.Namespace = opts.Namespace
	}

	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides)
	config, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	ns, _, err := clientConfig.Namespace()
	if err != nil || ns == "" {
		ns = "default"
	}
	return &KubeConfig{REST: config, Namespace: ns}, nil
}
