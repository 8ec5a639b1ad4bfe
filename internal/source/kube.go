package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"

	"github.com/HamStudy/vtable/internal/components/table"
	"github.com/HamStudy/vtable/internal/config/resource"
)

// Kube lists a Kubernetes resource through the dynamic client.
// Every record carries uid, name, namespace and kind, plus one field per definition column.
type Kube struct {
	Client        dynamic.Interface
	Resource      *resource.ResourceDefinition
	Namespace     string
	AllNamespaces bool

	// Now is the clock used for ages
	Now func() time.Time
}

// Describe names the source
func (k *Kube) Describe() string {
	name := k.Resource.Spec.Kubernetes.Plural
	switch {
	case !k.Resource.IsNamespaced():
		return "kube " + name
	case k.AllNamespaces:
		return "kube " + name + " (all namespaces)"
	default:
		return "kube " + name + " in " + k.Namespace
	}
}

// Load lists the resource, sorted by namespace and name
func (k *Kube) Load(ctx context.Context) ([]table.Record, error) {
	gvr := k.Resource.GetGroupVersionResource()

	var client dynamic.ResourceInterface = k.Client.Resource(gvr)
	if k.Resource.IsNamespaced() && !k.AllNamespaces {
		client = k.Client.Resource(gvr).Namespace(k.Namespace)
	}

	list, err := client.List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", gvr.Resource, err)
	}

	items := list.Items
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].GetNamespace() != items[j].GetNamespace() {
			return items[i].GetNamespace() < items[j].GetNamespace()
		}
		return items[i].GetName() < items[j].GetName()
	})

	now := time.Now
	if k.Now != nil {
		now = k.Now
	}

	records := make([]table.Record, len(items))
	for i := range items {
		records[i] = flatten(&items[i], k.Resource.Spec.Columns, now())
	}
	return records, nil
}

func flatten(obj *unstructured.Unstructured, columns []resource.Column, now time.Time) table.Record {
	record := table.Record{
		"uid":       string(obj.GetUID()),
		"name":      obj.GetName(),
		"namespace": obj.GetNamespace(),
		"kind":      obj.GetKind(),
	}
	for _, col := range columns {
		record[col.DataIndex] = fieldValue(obj, col.Path, now)
	}
	return record
}

func fieldValue(obj *unstructured.Unstructured, path string, now time.Time) any {
	switch path {
	case "@age":
		created := obj.GetCreationTimestamp()
		if created.IsZero() {
			return nil
		}
		return FormatAge(now.Sub(created.Time))
	case "@status":
		return objectStatus(obj)
	case "@ready":
		return readyCount(obj)
	case "@keys":
		data, _, _ := unstructured.NestedMap(obj.Object, "data")
		binary, _, _ := unstructured.NestedMap(obj.Object, "binaryData")
		return int64(len(data) + len(binary))
	}

	value, found, err := unstructured.NestedFieldNoCopy(obj.Object, strings.Split(path, ".")...)
	if err != nil || !found {
		return nil
	}
	return value
}

// objectStatus mirrors kubectl's STATUS: a waiting or terminated container reason wins over the phase
func objectStatus(obj *unstructured.Unstructured) any {
	if obj.GetDeletionTimestamp() != nil {
		return "Terminating"
	}

	statuses, _, _ := unstructured.NestedSlice(obj.Object, "status", "containerStatuses")
	for _, s := range statuses {
		cs, ok := s.(map[string]any)
		if !ok {
			continue
		}
		for _, state := range []string{"waiting", "terminated"} {
			if reason, found, _ := unstructured.NestedString(cs, "state", state, "reason"); found && reason != "" {
				return reason
			}
		}
	}

	if phase, found, _ := unstructured.NestedString(obj.Object, "status", "phase"); found {
		return phase
	}
	return nil
}

// readyCount renders "ready/total" for pods (containers) and workloads (replicas)
func readyCount(obj *unstructured.Unstructured) any {
	if statuses, found, _ := unstructured.NestedSlice(obj.Object, "status", "containerStatuses"); found {
		ready := 0
		for _, s := range statuses {
			if cs, ok := s.(map[string]any); ok && cs["ready"] == true {
				ready++
			}
		}
		return fmt.Sprintf("%d/%d", ready, len(statuses))
	}

	desired, found, _ := unstructured.NestedInt64(obj.Object, "spec", "replicas")
	if !found {
		if obj.GetKind() == "Pod" {
			return "0/0"
		}
		return nil
	}
	ready, _, _ := unstructured.NestedInt64(obj.Object, "status", "readyReplicas")
	return fmt.Sprintf("%d/%d", ready, desired)
}

// FormatAge renders a duration the way kubectl's AGE column does
func FormatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%dmo", int(d.Hours()/24/30))
	}
	return fmt.Sprintf("%dy", int(d.Hours()/24/365))
}
