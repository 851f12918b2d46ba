package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	core "github.com/goliatone/go-macro-dashboard/components/dashboard"
)

type addTableCmd struct {
	Section     string   `required:"" help:"Section key the table belongs to (e.g. sector_real)."`
	Table       string   `required:"" help:"Database table name."`
	Label       string   `help:"Display label (defaults to the table name in title case)."`
	SectionName string   `name:"section-name" help:"Display name when the section is created."`
	Path        string   `help:"Chart asset prefix when the section is created (defaults to the section key)."`
	Units       string   `help:"Units recorded in the table metadata."`
	Source      []string `help:"Data sources recorded in the metadata (repeatable)."`
	Notes       string   `help:"Free-form notes recorded in the metadata."`
	Overwrite   bool     `help:"Replace an existing entry with the same key."`
}

func (cmd *addTableCmd) Run(_ context.Context, g *Globals) error {
	if g.Manifest == "" {
		return errors.New("macrodash: --manifest is required for add-table")
	}
	manifestPath, err := filepath.Abs(g.Manifest)
	if err != nil {
		return fmt.Errorf("macrodash: resolve manifest path: %w", err)
	}
	root, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	if err := cmd.apply(root); err != nil {
		return err
	}
	payload, err := encodeManifest(root)
	if err != nil {
		return err
	}
	if _, err := core.DecodeManifest(bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("macrodash: updated manifest is invalid: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return fmt.Errorf("macrodash: mkdir %s: %w", filepath.Dir(manifestPath), err)
	}
	if err := os.WriteFile(manifestPath, payload, 0o644); err != nil {
		return fmt.Errorf("macrodash: write manifest: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to section %s in %s\n", cmd.Table, cmd.Section, manifestPath)
	return nil
}

// apply edits the manifest node tree in place so comments and key order in
// the rest of the file survive.
func (cmd *addTableCmd) apply(root *yaml.Node) error {
	doc := root.Content[0]
	sections := ensureMapping(doc, "sections")
	section := mappingValue(sections, cmd.Section)
	if section != nil && section.Kind != yaml.MappingNode {
		return fmt.Errorf("macrodash: section %s is not a mapping", cmd.Section)
	}
	if section == nil {
		section = &yaml.Node{Kind: yaml.MappingNode}
		name := cmd.SectionName
		if name == "" {
			name = strcase.ToCase(cmd.Section, strcase.TitleCase, ' ')
		}
		path := cmd.Path
		if path == "" {
			path = cmd.Section
		}
		appendPair(section, "name", scalar(name))
		appendPair(section, "path", scalar(path))
		appendPair(sections, cmd.Section, section)
	}
	tablas := ensureMapping(section, "tablas")

	entry := cmd.entryNode()
	for i := 0; i+1 < len(tablas.Content); i += 2 {
		if tablas.Content[i].Value != cmd.Table {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("macrodash: section %s already defines table %s (use --overwrite to replace)", cmd.Section, cmd.Table)
		}
		tablas.Content[i+1] = entry
		return nil
	}
	appendPair(tablas, cmd.Table, entry)
	return nil
}

func (cmd *addTableCmd) entryNode() *yaml.Node {
	label := cmd.Label
	if label == "" {
		label = strcase.ToCase(cmd.Table, strcase.TitleCase, ' ')
	}
	entry := &yaml.Node{Kind: yaml.MappingNode}
	appendPair(entry, "tabla", scalar(cmd.Table))
	appendPair(entry, "label", scalar(label))

	metadata := &yaml.Node{Kind: yaml.MappingNode}
	if len(cmd.Source) > 0 {
		sources := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, source := range cmd.Source {
			sources.Content = append(sources.Content, scalar(source))
		}
		appendPair(metadata, "fuentes", sources)
	}
	if cmd.Units != "" {
		appendPair(metadata, "unidad", scalar(cmd.Units))
	}
	if cmd.Notes != "" {
		appendPair(metadata, "notas", scalar(cmd.Notes))
	}
	if len(metadata.Content) > 0 {
		appendPair(entry, "metadata", metadata)
	}
	return entry
}

func loadOrInitManifest(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(bytes.TrimSpace(data)) == 0) {
		doc := &yaml.Node{Kind: yaml.MappingNode}
		appendPair(doc, "version", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(1)})
		return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{doc}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("macrodash: read manifest: %w", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("macrodash: parse manifest: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("macrodash: manifest root must be a mapping")
	}
	return &root, nil
}

func encodeManifest(root *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(root); err != nil {
		return nil, fmt.Errorf("macrodash: encode manifest: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("macrodash: encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if strings.TrimSpace(node.Content[i].Value) == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// ensureMapping returns the mapping stored under key, creating it or
// replacing an empty value.
func ensureMapping(node *yaml.Node, key string) *yaml.Node {
	value := mappingValue(node, key)
	if value == nil {
		value = &yaml.Node{Kind: yaml.MappingNode}
		appendPair(node, key, value)
		return value
	}
	if value.Kind != yaml.MappingNode {
		value.Kind = yaml.MappingNode
		value.Tag = ""
		value.Value = ""
		value.Content = nil
	}
	return value
}

func appendPair(node *yaml.Node, key string, value *yaml.Node) {
	node.Content = append(node.Content, scalar(key), value)
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
