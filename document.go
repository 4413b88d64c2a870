package tfwire_aws

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tfwire/tfwire-aws-go/internal/graph"
)

// DefaultProviderVersion is the provider constraint recorded by NewDocument.
const DefaultProviderVersion = ">= 5.0"

// ProviderRequirement is an entry in terraform.required_providers.
type ProviderRequirement struct {
	Source  string `json:"source"`
	Version string `json:"version,omitempty"`
}

// Variable is a Terraform input variable declaration.
type Variable struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Sensitive   bool   `json:"sensitive,omitempty"`
}

// Output is a Terraform output declaration.
type Output struct {
	Value       any    `json:"value"`
	Description string `json:"description,omitempty"`
	Sensitive   bool   `json:"sensitive,omitempty"`
}

// Document is a Terraform configuration in JSON syntax. Resource builders
// attach validated resource blocks to it; ToJSON and ToHCL render it.
type Document struct {
	requiredVersion   string
	requiredProviders map[string]ProviderRequirement
	providers         map[string][]map[string]any
	resources         map[string]map[string]map[string]any
	data              map[string]map[string]map[string]any
	variables         map[string]Variable
	outputs           map[string]Output
	locals            map[string]any
}

// resource/data names become part of a Terraform address
var nameRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// NewDocument creates an empty document with the AWS provider requirement
// pre-registered.
func NewDocument() *Document {
	d := &Document{
		requiredProviders: make(map[string]ProviderRequirement),
		providers:         make(map[string][]map[string]any),
		resources:         make(map[string]map[string]map[string]any),
		data:              make(map[string]map[string]map[string]any),
		variables:         make(map[string]Variable),
		outputs:           make(map[string]Output),
		locals:            make(map[string]any),
	}
	d.RequireProvider("aws", "hashicorp/aws", DefaultProviderVersion)
	return d
}

// SetRequiredVersion sets terraform.required_version.
func (d *Document) SetRequiredVersion(constraint string) {
	d.requiredVersion = constraint
}

// RequireProvider records an entry in terraform.required_providers.
func (d *Document) RequireProvider(name, source, version string) {
	d.requiredProviders[name] = ProviderRequirement{Source: source, Version: version}
}

// AddProvider appends a provider configuration block.
func (d *Document) AddProvider(name string, config map[string]any) {
	d.providers[name] = append(d.providers[name], config)
}

// AddResource attaches a resource block. It fails on invalid names and on
// duplicate addresses.
func (d *Document) AddResource(typ, name string, attrs map[string]any) error {
	if !nameRE.MatchString(name) {
		return fmt.Errorf("invalid resource name %q: must match %s", name, nameRE)
	}
	if d.resources[typ] == nil {
		d.resources[typ] = make(map[string]map[string]any)
	}
	if _, exists := d.resources[typ][name]; exists {
		return fmt.Errorf("duplicate resource %s.%s", typ, name)
	}
	d.resources[typ][name] = attrs
	return nil
}

// AddData attaches a data source block.
func (d *Document) AddData(typ, name string, attrs map[string]any) error {
	if !nameRE.MatchString(name) {
		return fmt.Errorf("invalid data source name %q: must match %s", name, nameRE)
	}
	if d.data[typ] == nil {
		d.data[typ] = make(map[string]map[string]any)
	}
	if _, exists := d.data[typ][name]; exists {
		return fmt.Errorf("duplicate data source data.%s.%s", typ, name)
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	d.data[typ][name] = attrs
	return nil
}

// AddVariable declares an input variable.
func (d *Document) AddVariable(name string, v Variable) error {
	if !nameRE.MatchString(name) {
		return fmt.Errorf("invalid variable name %q: must match %s", name, nameRE)
	}
	if _, exists := d.variables[name]; exists {
		return fmt.Errorf("duplicate variable %q", name)
	}
	d.variables[name] = v
	return nil
}

// AddOutput declares an output value.
func (d *Document) AddOutput(name string, o Output) error {
	if !nameRE.MatchString(name) {
		return fmt.Errorf("invalid output name %q: must match %s", name, nameRE)
	}
	if _, exists := d.outputs[name]; exists {
		return fmt.Errorf("duplicate output %q", name)
	}
	d.outputs[name] = o
	return nil
}

// SetLocal declares (or replaces) a local value.
func (d *Document) SetLocal(name string, value any) {
	d.locals[name] = value
}

// Resource returns the attributes of a declared resource.
func (d *Document) Resource(typ, name string) (map[string]any, bool) {
	attrs, ok := d.resources[typ][name]
	return attrs, ok
}

// ResourcesOfType returns all resources of the given Terraform type, keyed
// by name.
func (d *Document) ResourcesOfType(typ string) map[string]map[string]any {
	return d.resources[typ]
}

// Resources returns the full resource section (type → name → attributes).
func (d *Document) Resources() map[string]map[string]map[string]any {
	return d.resources
}

// ResourceAddresses returns every declared resource address, sorted.
func (d *Document) ResourceAddresses() []string {
	var addrs []string
	for typ, byName := range d.resources {
		for name := range byName {
			addrs = append(addrs, typ+"."+name)
		}
	}
	sort.Strings(addrs)
	return addrs
}

// ResourceCount returns the number of declared resources.
func (d *Document) ResourceCount() int {
	n := 0
	for _, byName := range d.resources {
		n += len(byName)
	}
	return n
}

// Graph builds the resource dependency graph for the document.
func (d *Document) Graph() *graph.Graph {
	vars := make(map[string]bool, len(d.variables))
	for name := range d.variables {
		vars[name] = true
	}
	locals := make(map[string]bool, len(d.locals))
	for name := range d.locals {
		locals[name] = true
	}
	return graph.New(graph.Config{
		Resources: d.resources,
		Data:      d.data,
		Variables: vars,
		Locals:    locals,
	})
}

// Validate checks cross-resource consistency: every interpolation must point
// at a declared address and the dependency graph must be acyclic.
func (d *Document) Validate() error {
	g := d.Graph()

	var problems []string
	for _, ref := range g.Unresolved() {
		problems = append(problems, ref.String())
	}
	if _, err := g.Order(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MarshalJSON renders the document in Terraform JSON syntax, omitting empty
// sections.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any)

	terraform := make(map[string]any)
	if d.requiredVersion != "" {
		terraform["required_version"] = d.requiredVersion
	}
	if len(d.requiredProviders) > 0 {
		terraform["required_providers"] = d.requiredProviders
	}
	if len(terraform) > 0 {
		out["terraform"] = terraform
	}

	if len(d.providers) > 0 {
		providers := make(map[string]any, len(d.providers))
		for name, blocks := range d.providers {
			if len(blocks) == 1 {
				providers[name] = blocks[0]
			} else {
				providers[name] = blocks
			}
		}
		out["provider"] = providers
	}
	if len(d.resources) > 0 {
		out["resource"] = d.resources
	}
	if len(d.data) > 0 {
		out["data"] = d.data
	}
	if len(d.variables) > 0 {
		out["variable"] = d.variables
	}
	if len(d.outputs) > 0 {
		out["output"] = d.outputs
	}
	if len(d.locals) > 0 {
		out["locals"] = d.locals
	}

	return json.Marshal(out)
}

// ToJSON serializes the document to indented Terraform JSON.
func ToJSON(d *Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
