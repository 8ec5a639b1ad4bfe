package resource

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/HamStudy/vtable/internal/config"
)

const (
	// APIVersion is the apiVersion every resource definition must carry
	APIVersion = "vtable.io/v1"
	// DefinitionKind is the kind every resource definition must carry
	DefinitionKind = "ResourceDefinition"
)

// ResourceDefinition describes how a Kubernetes resource is listed as a table
type ResourceDefinition struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata contains resource metadata
type Metadata struct {
	Name        string   `yaml:"name"`
	Aliases     []string `yaml:"aliases"`
	Description string   `yaml:"description"`
}

// Spec contains the resource specification
type Spec struct {
	Kubernetes KubernetesSpec `yaml:"kubernetes"`
	RowKey     string         `yaml:"rowKey"`
	Columns    []Column       `yaml:"columns"`
}

// KubernetesSpec defines the Kubernetes API information
type KubernetesSpec struct {
	Group      string `yaml:"group"`
	Version    string `yaml:"version"`
	Kind       string `yaml:"kind"`
	Plural     string `yaml:"plural"`
	Namespaced bool   `yaml:"namespaced"`
}

// Column is a table column plus where its value comes from in the object.
// Path is a dotted field path ("status.phase") or a computed field ("@age").
type Column struct {
	config.ColumnDefinition `yaml:",inline"`
	Path                    string `yaml:"path"`
}

// Computed fields understood by the kube source
var computedFields = map[string]bool{
	"@age":    true,
	"@status": true,
	"@ready":  true,
	"@keys":   true,
}

// Validate validates the resource definition
func (rd *ResourceDefinition) Validate() error {
	if rd.APIVersion != APIVersion {
		return fmt.Errorf("apiVersion must be %s, got %s", APIVersion, rd.APIVersion)
	}
	if rd.Kind != DefinitionKind {
		return fmt.Errorf("kind must be %s, got %s", DefinitionKind, rd.Kind)
	}

	if rd.Metadata.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}

	if rd.Spec.Kubernetes.Kind == "" {
		return fmt.Errorf("spec.kubernetes.kind is required")
	}
	if rd.Spec.Kubernetes.Version == "" {
		return fmt.Errorf("spec.kubernetes.version is required")
	}
	if rd.Spec.Kubernetes.Plural == "" {
		return fmt.Errorf("spec.kubernetes.plural is required")
	}

	if len(rd.Spec.Columns) == 0 {
		return fmt.Errorf("at least one column must be defined")
	}
	for i, col := range rd.Spec.Columns {
		if col.DataIndex == "" {
			return fmt.Errorf("column[%d]: dataIndex is required", i)
		}
		if col.Title == "" {
			return fmt.Errorf("column[%d]: title is required", i)
		}
		if col.Path == "" {
			return fmt.Errorf("column[%d]: path is required", i)
		}
		if strings.HasPrefix(col.Path, "@") && !computedFields[col.Path] {
			return fmt.Errorf("column[%d]: unknown computed field %s", i, col.Path)
		}
	}

	return nil
}

// Definition converts the resource columns into a table definition
func (rd *ResourceDefinition) Definition(rowCount int) *config.Definition {
	columns := make([]*config.ColumnDefinition, len(rd.Spec.Columns))
	for i := range rd.Spec.Columns {
		col := rd.Spec.Columns[i].ColumnDefinition
		columns[i] = &col
	}
	return &config.Definition{
		RowCount: rowCount,
		RowKey:   rd.Spec.RowKey,
		Columns:  columns,
	}
}

// GetGroupVersionKind returns the GroupVersionKind for this resource
func (rd *ResourceDefinition) GetGroupVersionKind() schema.GroupVersionKind {
	return schema.GroupVersionKind{
		Group:   rd.Spec.Kubernetes.Group,
		Version: rd.Spec.Kubernetes.Version,
		Kind:    rd.Spec.Kubernetes.Kind,
	}
}

// GetGroupVersionResource returns the GroupVersionResource for this resource
func (rd *ResourceDefinition) GetGroupVersionResource() schema.GroupVersionResource {
	return schema.GroupVersionResource{
		Group:    rd.Spec.Kubernetes.Group,
		Version:  rd.Spec.Kubernetes.Version,
		Resource: rd.Spec.Kubernetes.Plural,
	}
}

// IsNamespaced returns whether the resource is namespaced
func (rd *ResourceDefinition) IsNamespaced() bool {
	return rd.Spec.Kubernetes.Namespaced
}

// Names returns the name, plural and aliases the resource can be requested by
func (rd *ResourceDefinition) Names() []string {
	names := []string{rd.Metadata.Name}
	if plural := rd.Spec.Kubernetes.Plural; plural != rd.Metadata.Name {
		names = append(names, plural)
	}
	return append(names, rd.Metadata.Aliases...)
}
