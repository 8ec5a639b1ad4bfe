package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/client-go/dynamic"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/HamStudy/vtable/internal/components/table"
	"github.com/HamStudy/vtable/internal/config"
	"github.com/HamStudy/vtable/internal/config/resource"
	"github.com/HamStudy/vtable/internal/logging"
	"github.com/HamStudy/vtable/internal/source"
)

// podMetricsResource is the pseudo resource backed by the metrics API
const podMetricsResource = "podmetrics"

// kubeClients is a connection to one cluster
type kubeClients struct {
	Dynamic   dynamic.Interface
	Metrics   metricsclient.Interface
	Namespace string
}

// connectKube builds clients from kubeconfig
func connectKube(opts source.KubeOptions) (*kubeClients, error) {
	cfg, err := source.LoadKubeConfig(opts)
	if err != nil {
		return nil, err
	}
	dyn, err := dynamic.NewForConfig(cfg.REST)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}
	metrics, err := metricsclient.NewForConfig(cfg.REST)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}
	return &kubeClients{Dynamic: dyn, Metrics: metrics, Namespace: cfg.Namespace}, nil
}

func newKubeCmd(e *env) *cobra.Command {
	var (
		opts          source.KubeOptions
		allNamespaces bool
		refresh       time.Duration
		rows          int
		theme         string
	)

	cmd := &cobra.Command{
		Use:   "kube <resource>",
		Short: "Browse Kubernetes resources",
		Long: `Lists a Kubernetes resource into a virtualized table and refreshes it periodically.

Resources are defined by YAML resource definitions. The built-in ones can be
overridden or extended in ~/.config/vtable/resources. "podmetrics" lists pod
usage from the metrics API.`,
		Example: `  vtable kube pods -n kube-system
  vtable kube deploy -A
  vtable kube podmetrics -A --refresh 5s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Kubeconfig == "" {
				opts.Kubeconfig = e.config.Kube.Config
			}
			if opts.Context == "" {
				opts.Context = e.config.Kube.Context
			}
			if opts.Namespace == "" {
				opts.Namespace = e.config.Kube.Namespace
			}

			spec, err := e.kubeTable(args[0], opts, allNamespaces)
			if err != nil {
				return err
			}
			if rows > 0 {
				spec.rowCount = rows
			}
			spec.theme = theme
			if spec.theme == "" {
				spec.theme = e.config.Table.Theme
			}

			if !e.stdout() {
				return e.printFrame(cmd.Context(), cmd.OutOrStdout(), spec, defaultPrintWidth, spec.rowCount+1, 0)
			}
			return e.runInteractive(cmd.Context(), spec, &source.Polling{Source: spec.src, Interval: refresh})
		},
	}

	cmd.Flags().StringVar(&opts.Kubeconfig, "kubeconfig", "", "path to the kubeconfig file (can also use KUBECONFIG)")
	cmd.Flags().StringVar(&opts.Context, "context", "", "the kubeconfig context to use")
	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", "", "the namespace to list")
	cmd.Flags().BoolVarP(&allNamespaces, "all-namespaces", "A", false, "list across all namespaces")
	cmd.Flags().DurationVar(&refresh, "refresh", 2*time.Second, "refresh interval, 0 disables")
	cmd.Flags().IntVar(&rows, "rows", 0, "rows visible at once")
	cmd.Flags().StringVar(&theme, "theme", "", "theme: default, light, high-contrast or a theme file")
	return cmd
}

// kubeTable resolves a resource name into columns and a cluster source
func (e *env) kubeTable(name string, opts source.KubeOptions, allNamespaces bool) (*tableSpec, error) {
	logger := logging.Component(e.logger, "kube")

	if strings.EqualFold(name, podMetricsResource) {
		clients, err := e.connect(opts)
		if err != nil {
			return nil, err
		}
		return &tableSpec{
			columns:  source.PodMetricsColumns(),
			rowKey:   table.RecordKey("uid"),
			rowCount: e.config.Table.RowCount,
			src: &source.PodMetrics{
				Client:        clients.Metrics,
				Namespace:     clients.Namespace,
				AllNamespaces: allNamespaces,
			},
		}, nil
	}

	loader, err := resource.GetDefaultLoader(logger)
	if err != nil {
		return nil, err
	}
	def, err := loader.GetRegistry().Lookup(name)
	if err != nil {
		return nil, err
	}

	tableDef := def.Definition(e.config.Table.RowCount)
	columns, err := config.NewLoader().BuildColumns(tableDef)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", def.Metadata.Name, err)
	}

	clients, err := e.connect(opts)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("resource", def.Metadata.Name).Str("namespace", clients.Namespace).Bool("all", allNamespaces).Msg("connected")

	return &tableSpec{
		columns:  columns,
		rowKey:   tableDef.RowKeyFunc(),
		rowCount: tableDef.RowCount,
		src: &source.Kube{
			Client:        clients.Dynamic,
			Resource:      def,
			Namespace:     clients.Namespace,
			AllNamespaces: allNamespaces,
			Now:           time.Now,
		},
	}, nil
}

func (e *env) connect(opts source.KubeOptions) (*kubeClients, error) {
	if e.kube != nil {
		return e.kube(opts)
	}
	return connectKube(opts)
}
