package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
	// DefaultManifestPath is the embedded manifest location relative to this package.
	DefaultManifestPath = "config/sections.yaml"
)

//go:embed config/sections.yaml
var embeddedManifest embed.FS

// ManifestDocument models the YAML manifest describing sections and tables.
type ManifestDocument struct {
	Version  string   `json:"version" yaml:"version"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Periods  []Period `json:"periodos,omitempty" yaml:"periodos,omitempty"`
	Sections Sections `json:"sections" yaml:"sections"`
	Source   string   `json:"-" yaml:"-"`
}

// Sections keeps manifest sections in declaration order.
type Sections []Section

// TableList keeps the tables of a section in declaration order.
type TableList []TableEntry

// UnmarshalYAML decodes a mapping of section key to section, preserving order.
func (s *Sections) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("sections must be a mapping, got %s", nodeKind(node))
	}
	out := make(Sections, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var section Section
		if err := node.Content[i+1].Decode(&section); err != nil {
			return fmt.Errorf("section %s: %w", key, err)
		}
		section.Key = key
		out = append(out, section)
	}
	*s = out
	return nil
}

// MarshalYAML encodes sections back into an ordered mapping.
func (s Sections) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, section := range s {
		var value yaml.Node
		if err := value.Encode(section); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: section.Key}, &value)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping of table key to table entry, preserving order.
func (l *TableList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("tablas must be a mapping, got %s", nodeKind(node))
	}
	out := make(TableList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var entry TableEntry
		if err := node.Content[i+1].Decode(&entry); err != nil {
			return fmt.Errorf("table %s: %w", key, err)
		}
		entry.Key = key
		out = append(out, entry)
	}
	*l = out
	return nil
}

// MarshalYAML encodes tables back into an ordered mapping.
func (l TableList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range l {
		var value yaml.Node
		if err := value.Encode(entry); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: entry.Key}, &value)
	}
	return node, nil
}

// LoadSections decodes the embedded manifest and returns its sections.
func LoadSections() (Sections, error) {
	doc, err := LoadEmbeddedManifest()
	if err != nil {
		return nil, err
	}
	return doc.Sections, nil
}

// LoadEmbeddedManifest decodes the manifest bundled with the package.
func LoadEmbeddedManifest() (*ManifestDocument, error) {
	f, err := embeddedManifest.Open(DefaultManifestPath)
	if err != nil {
		return nil, newConfigError(DefaultManifestPath, "open", err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, withSource(err, DefaultManifestPath)
	}
	doc.Source = DefaultManifestPath
	return doc, nil
}

var (
	defaultConfigOnce sync.Once
	defaultConfig     *Config
	defaultConfigErr  error
)

// DefaultConfig returns the process-wide configuration built from the embedded manifest.
// The manifest is parsed once.
func DefaultConfig() (*Config, error) {
	defaultConfigOnce.Do(func() {
		doc, err := LoadEmbeddedManifest()
		if err != nil {
			defaultConfigErr = err
			return
		}
		defaultConfig = NewConfig(doc)
	})
	return defaultConfig, defaultConfigErr
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*ManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, newConfigError(path, "open", err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, withSource(err, path)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader. The raw document is checked
// against the manifest schema before it is decoded into typed sections.
func DecodeManifest(r io.Reader) (*ManifestDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newConfigError("", "read", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newConfigError("", "manifest is empty", nil)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, newConfigError("", "parse", err)
	}
	top, ok := raw.(map[string]any)
	if !ok {
		return nil, newConfigError("", "top level must be a mapping", nil)
	}
	if _, ok := top["sections"]; !ok {
		return nil, newConfigError("", `missing required "sections" key`, nil)
	}
	if err := validateManifestSchema(top); err != nil {
		return nil, newConfigError("", "schema", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var doc ManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, newConfigError("", "decode", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *ManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return newConfigError(doc.Source, fmt.Sprintf("unsupported manifest version %q", doc.Version), nil)
	}
	if len(doc.Sections) == 0 {
		return newConfigError(doc.Source, "no sections declared", nil)
	}
	if err := validatePeriods(doc.Periods); err != nil {
		return newConfigError(doc.Source, "periodos", err)
	}
	for _, section := range doc.Sections {
		seen := make(map[string]struct{}, len(section.Tables))
		for _, entry := range section.Tables {
			if strings.TrimSpace(entry.Table) == "" {
				return newConfigError(doc.Source, fmt.Sprintf("section %s table %s is missing tabla", section.Key, entry.Key), nil)
			}
			if _, exists := seen[entry.Table]; exists {
				return newConfigError(doc.Source, fmt.Sprintf("section %s duplicates table %s", section.Key, entry.Table), nil)
			}
			seen[entry.Table] = struct{}{}
			if err := validatePeriods(entry.Periods); err != nil {
				return newConfigError(doc.Source, fmt.Sprintf("table %s periodos", entry.Table), err)
			}
		}
	}
	return nil
}

func validatePeriods(periods []Period) error {
	for idx, period := range periods {
		if strings.TrimSpace(period.Name) == "" {
			return fmt.Errorf("period at index %d is missing nombre", idx)
		}
		if period.End < period.Start {
			return fmt.Errorf("period %s ends (%d) before it starts (%d)", period.Name, period.End, period.Start)
		}
	}
	return nil
}

func (doc *ManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	for i := range doc.Sections {
		section := &doc.Sections[i]
		if section.Name == "" {
			section.Name = labelFromKey(section.Key)
		}
		for j := range section.Tables {
			entry := &section.Tables[j]
			entry.SectionKey = section.Key
			if entry.Label == "" {
				entry.Label = labelFromKey(entry.Key)
			}
		}
	}
}

func labelFromKey(key string) string {
	return strcase.ToCase(key, strcase.TitleCase, ' ')
}

func withSource(err error, source string) error {
	if cfgErr, ok := err.(*ConfigError); ok && cfgErr.Source == "" {
		cfgErr.Source = source
		return cfgErr
	}
	return err
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "mapping"
	}
}
