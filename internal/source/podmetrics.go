package source

import (
	"context"
	"fmt"
	"sort"

	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/HamStudy/vtable/internal/components/table"
)

// PodMetrics lists pod CPU and memory usage from the metrics API.
// Records carry uid (namespace/name), namespace, name, containers, cpu (millicores) and memory (bytes).
type PodMetrics struct {
	Client        metricsclient.Interface
	Namespace     string
	AllNamespaces bool
}

// Describe names the source
func (p *PodMetrics) Describe() string {
	if p.AllNamespaces {
		return "pod metrics (all namespaces)"
	}
	return "pod metrics in " + p.Namespace
}

// Load lists pod metrics, sorted by namespace and name
func (p *PodMetrics) Load(ctx context.Context) ([]table.Record, error) {
	if p.Client == nil {
		return nil, fmt.Errorf("metrics API not available")
	}

	ns := p.Namespace
	if p.AllNamespaces {
		ns = metav1.NamespaceAll
	}
	list, err := p.Client.MetricsV1beta1().PodMetricses(ns).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get pod metrics: %w", err)
	}

	items := list.Items
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Namespace != items[j].Namespace {
			return items[i].Namespace < items[j].Namespace
		}
		return items[i].Name < items[j].Name
	})

	records := make([]table.Record, len(items))
	for i, m := range items {
		var cpu, memory int64
		for _, container := range m.Containers {
			if q, ok := container.Usage[v1.ResourceCPU]; ok {
				cpu += q.MilliValue()
			}
			if q, ok := container.Usage[v1.ResourceMemory]; ok {
				memory += q.Value()
			}
		}
		records[i] = table.Record{
			"uid":        m.Namespace + "/" + m.Name,
			"namespace":  m.Namespace,
			"name":       m.Name,
			"containers": int64(len(m.Containers)),
			"cpu":        cpu,
			"memory":     memory,
		}
	}
	return records, nil
}

// PodMetricsColumns returns the columns for PodMetrics records
func PodMetricsColumns() []table.Column[table.Record] {
	return []table.Column[table.Record]{
		{DataIndex: "namespace", Title: "NAMESPACE", Width: table.Px(16)},
		{DataIndex: "name", Title: "NAME"},
		{DataIndex: "containers", Title: "CONTAINERS", Width: table.Px(10), ContentTextAlign: table.AlignEnd},
		{DataIndex: "cpu", Title: "CPU", Width: table.Px(7), ContentTextAlign: table.AlignEnd,
			Render: func(v any, _ table.Record, _ int) string {
				n, _ := v.(int64)
				return FormatCPU(n)
			}},
		{DataIndex: "memory", Title: "MEMORY", Width: table.Px(8), ContentTextAlign: table.AlignEnd,
			Render: func(v any, _ table.Record, _ int) string {
				n, _ := v.(int64)
				return FormatMemory(n)
			}},
	}
}

// FormatCPU renders millicores: "250m" below one core, whole cores above
func FormatCPU(milliCPU int64) string {
	if milliCPU == 0 {
		return "-"
	}
	if milliCPU < 1000 {
		return fmt.Sprintf("%dm", milliCPU)
	}
	return fmt.Sprintf("%d", milliCPU/1000)
}

// FormatMemory renders bytes with binary units
func FormatMemory(bytes int64) string {
	if bytes == 0 {
		return "-"
	}

	const (
		Ki = 1024
		Mi = 1024 * Ki
		Gi = 1024 * Mi
	)

	switch {
	case bytes >= Gi:
		gb := bytes / Gi
		remainder := (bytes % Gi) / Mi
		if remainder >= 100 && gb < 10 {
			return fmt.Sprintf("%d.%dGi", gb, remainder/100)
		}
		return fmt.Sprintf("%dGi", gb)
	case bytes >= Mi:
		return fmt.Sprintf("%dMi", bytes/Mi)
	case bytes >= Ki:
		return fmt.Sprintf("%dKi", bytes/Ki)
	}
	return fmt.Sprintf("%dB", bytes)
}
