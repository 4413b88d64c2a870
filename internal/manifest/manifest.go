// Package manifest loads YAML stack manifests and builds Terraform
// documents from them through the resource catalog.
package manifest

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/catalog"
)

// Manifest is the YAML description of a stack.
type Manifest struct {
	// Name identifies the stack; informational only.
	Name string `yaml:"name"`
	// Region, when set, becomes the aws provider region.
	Region string `yaml:"region,omitempty"`
	// Variables declare Terraform input variables.
	Variables map[string]Variable `yaml:"variables,omitempty"`
	// Resources are built in order through the catalog.
	Resources []Resource `yaml:"resources"`
}

// Variable is a manifest-level input variable declaration.
type Variable struct {
	Type        string `yaml:"type,omitempty"`
	Description string `yaml:"description,omitempty"`
	Default     any    `yaml:"default,omitempty"`
	Sensitive   bool   `yaml:"sensitive,omitempty"`
}

// Resource is one resource declaration in the manifest.
type Resource struct {
	Kind       string         `yaml:"kind"`
	Name       string         `yaml:"name"`
	Attributes map[string]any `yaml:"attributes,omitempty"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) check() error {
	if m.Name == "" {
		return fmt.Errorf("manifest: name is required")
	}
	if len(m.Resources) == 0 {
		return fmt.Errorf("manifest %q: no resources declared", m.Name)
	}
	for i, r := range m.Resources {
		if r.Kind == "" {
			return fmt.Errorf("manifest %q: resources[%d]: kind is required", m.Name, i)
		}
		if r.Name == "" {
			return fmt.Errorf("manifest %q: resources[%d] (%s): name is required", m.Name, i, r.Kind)
		}
	}
	return nil
}

// normalize converts YAML's map[any]any trees into the map[string]any
// form the catalog decoders expect.
func normalize(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}

// Build constructs a Document from the manifest. Every declared resource
// is built through the catalog; the first failure aborts.
func (m *Manifest) Build(log *logrus.Logger) (*tfwire.Document, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	doc := tfwire.NewDocument()
	if m.Region != "" {
		doc.AddProvider("aws", map[string]any{"region": m.Region})
	}
	for name, v := range m.Variables {
		err := doc.AddVariable(name, tfwire.Variable{
			Type:        v.Type,
			Description: v.Description,
			Default:     v.Default,
			Sensitive:   v.Sensitive,
		})
		if err != nil {
			return nil, fmt.Errorf("manifest %q: %w", m.Name, err)
		}
	}

	kinds := catalog.Default()
	for _, r := range m.Resources {
		entry, ok := kinds.Lookup(r.Kind)
		if !ok {
			return nil, fmt.Errorf("manifest %q: unsupported kind %q (see `tfwire-aws list`)", m.Name, r.Kind)
		}

		attrs, _ := normalize(r.Attributes).(map[string]any)
		log.WithFields(logrus.Fields{
			"kind": r.Kind,
			"name": r.Name,
		}).Debug("building resource")

		if err := entry.Build(doc, r.Name, attrs); err != nil {
			return nil, fmt.Errorf("manifest %q: %s %q: %w", m.Name, r.Kind, r.Name, err)
		}
	}

	return doc, nil
}
