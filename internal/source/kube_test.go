package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	k8stesting "k8s.io/client-go/testing"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsfake "k8s.io/metrics/pkg/client/clientset/versioned/fake"

	resourcedef "github.com/HamStudy/vtable/internal/config/resource"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func embeddedResource(t *testing.T, name string) *resourcedef.ResourceDefinition {
	t.Helper()
	l := resourcedef.NewLoader()
	require.NoError(t, l.LoadEmbedded())
	def, err := l.GetRegistry().Lookup(name)
	require.NoError(t, err)
	return def
}

func testPod(namespace, name string, created time.Time, ready ...bool) *unstructured.Unstructured {
	statuses := make([]any, len(ready))
	for i, r := range ready {
		statuses[i] = map[string]any{"name": "c", "ready": r}
	}
	pod := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "v1",
		"kind":       "Pod",
		"metadata": map[string]any{
			"name":              name,
			"namespace":         namespace,
			"uid":               namespace + "-" + name,
			"creationTimestamp": created.Format(time.RFC3339),
		},
		"spec": map[string]any{"nodeName": "node-1"},
		"status": map[string]any{
			"phase":             "Running",
			"containerStatuses": statuses,
		},
	}}
	return pod
}

func newFakeDynamic(objects ...runtime.Object) *dynamicfake.FakeDynamicClient {
	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{
			{Version: "v1", Resource: "pods"}:                      "PodList",
			{Group: "apps", Version: "v1", Resource: "deployments"}: "DeploymentList",
		},
		objects...)
}

func TestKubeLoadPods(t *testing.T) {
	crashing := testPod("default", "api-0", testNow.Add(-3*time.Hour), false)
	statuses, _, _ := unstructured.NestedSlice(crashing.Object, "status", "containerStatuses")
	statuses[0].(map[string]any)["state"] = map[string]any{"waiting": map[string]any{"reason": "CrashLoopBackOff"}}
	require.NoError(t, unstructured.SetNestedSlice(crashing.Object, statuses, "status", "containerStatuses"))

	client := newFakeDynamic(
		testPod("default", "web-1", testNow.Add(-90*time.Second), true, true),
		testPod("default", "web-0", testNow.Add(-2*24*time.Hour), true, false),
		crashing,
		testPod("kube-system", "dns", testNow.Add(-time.Hour)),
	)

	k := &Kube{
		Client:    client,
		Resource:  embeddedResource(t, "pods"),
		Namespace: "default",
		Now:       func() time.Time { return testNow },
	}
	records, err := k.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "api-0", records[0]["name"])
	assert.Equal(t, "CrashLoopBackOff", records[0]["status"])
	assert.Equal(t, "0/1", records[0]["ready"])
	assert.Equal(t, "3h", records[0]["age"])

	assert.Equal(t, "web-0", records[1]["name"])
	assert.Equal(t, "1/2", records[1]["ready"])
	assert.Equal(t, "Running", records[1]["status"])
	assert.Equal(t, "2d", records[1]["age"])
	assert.Equal(t, "node-1", records[1]["node"])
	assert.Equal(t, "default-web-0", records[1]["uid"])
	assert.Equal(t, "Pod", records[1]["kind"])

	assert.Equal(t, "1m", records[2]["age"])
	assert.Equal(t, "kube pods in default", k.Describe())
}

func TestKubeLoadAllNamespaces(t *testing.T) {
	client := newFakeDynamic(
		testPod("default", "web-0", testNow),
		testPod("kube-system", "dns", testNow),
	)

	k := &Kube{Client: client, Resource: embeddedResource(t, "po"), AllNamespaces: true}
	records, err := k.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "default", records[0]["namespace"])
	assert.Equal(t, "kube-system", records[1]["namespace"])
	assert.Equal(t, "kube pods (all namespaces)", k.Describe())
}

func TestKubeLoadDeployments(t *testing.T) {
	deploy := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "apps/v1",
		"kind":       "Deployment",
		"metadata":   map[string]any{"name": "api", "namespace": "prod", "uid": "u1"},
		"spec":       map[string]any{"replicas": int64(3)},
		"status":     map[string]any{"readyReplicas": int64(2), "updatedReplicas": int64(3)},
	}}

	k := &Kube{Client: newFakeDynamic(deploy), Resource: embeddedResource(t, "deploy"), Namespace: "prod"}
	records, err := k.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "2/3", records[0]["ready"])
	assert.Equal(t, int64(3), records[0]["updated"])
	assert.Nil(t, records[0]["available"], "missing fields stay nil")
	assert.Nil(t, records[0]["age"], "no creation timestamp, no age")
}

func TestKubeLoadError(t *testing.T) {
	client := newFakeDynamic()
	client.PrependReactor("list", "pods", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})

	k := &Kube{Client: client, Resource: embeddedResource(t, "pods"), Namespace: "default"}
	_, err := k.Load(context.Background())
	assert.ErrorContains(t, err, "failed to list pods")
}

func TestFieldValueKeys(t *testing.T) {
	cm := &unstructured.Unstructured{Object: map[string]any{
		"data":       map[string]any{"a": "1", "b": "2"},
		"binaryData": map[string]any{"c": "AA=="},
	}}
	assert.Equal(t, int64(3), fieldValue(cm, "@keys", testNow))
	assert.Nil(t, fieldValue(cm, "@status", testNow))
}

func TestPodMetricsLoad(t *testing.T) {
	client := metricsfake.NewSimpleClientset()
	client.PrependReactor("list", "*", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, &metricsv1beta1.PodMetricsList{Items: []metricsv1beta1.PodMetrics{
			{
				ObjectMeta: metav1.ObjectMeta{Name: "web-1", Namespace: "default"},
				Containers: []metricsv1beta1.ContainerMetrics{
					{Name: "app", Usage: v1.ResourceList{
						v1.ResourceCPU:    resource.MustParse("150m"),
						v1.ResourceMemory: resource.MustParse("128Mi"),
					}},
					{Name: "sidecar", Usage: v1.ResourceList{
						v1.ResourceCPU:    resource.MustParse("100m"),
						v1.ResourceMemory: resource.MustParse("64Mi"),
					}},
				},
			},
			{ObjectMeta: metav1.ObjectMeta{Name: "web-0", Namespace: "default"}},
		}}, nil
	})

	p := &PodMetrics{Client: client, Namespace: "default"}
	records, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "web-0", records[0]["name"])
	assert.Equal(t, int64(0), records[0]["cpu"])

	assert.Equal(t, "default/web-1", records[1]["uid"])
	assert.Equal(t, int64(2), records[1]["containers"])
	assert.Equal(t, int64(250), records[1]["cpu"])
	assert.Equal(t, int64(192*1024*1024), records[1]["memory"])

	columns := PodMetricsColumns()
	assert.Equal(t, "250m", columns[3].Content(records[1], 1))
	assert.Equal(t, "192Mi", columns[4].Content(records[1], 1))
	assert.Equal(t, "pod metrics in default", p.Describe())
}

func TestPodMetricsUnavailable(t *testing.T) {
	_, err := (&PodMetrics{}).Load(context.Background())
	assert.ErrorContains(t, err, "metrics API not available")
}
