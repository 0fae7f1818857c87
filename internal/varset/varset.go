// Package varset reads and writes variable-set documents, the YAML files
// naming which fields a job needs:
//
//	variables:
//	  air_pressure_at_sea_level: {}
//	  air_temperature:
//	    levels: [2, 60]
//	    level_unit: metres
//
// Entries with levels expand to one variable per level, in document order.
package varset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/mera-explorer/internal/mera"
	"gopkg.in/yaml.v3"
)

const variablesKey = "variables"

type entry struct {
	Levels    []string `yaml:"levels"`
	LevelUnit string   `yaml:"level_unit"`
}

// Read decodes a variable-set document and expands it into variables.
func Read(r io.Reader) ([]mera.Variable, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("variable set: empty document")
		}
		return nil, fmt.Errorf("variable set: %w", err)
	}

	vars, err := lookup(&doc, variablesKey)
	if err != nil {
		return nil, err
	}
	if vars.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("variable set: line %d: %q must be a mapping", vars.Line, variablesKey)
	}

	var out []mera.Variable
	for i := 0; i+1 < len(vars.Content); i += 2 {
		key, val := vars.Content[i], vars.Content[i+1]
		expanded, err := expand(key.Value, val)
		if err != nil {
			return nil, fmt.Errorf("variable set: line %d: %w", key.Line, err)
		}
		out = append(out, expanded...)
	}
	return out, nil
}

// ReadFile reads a variable-set document from disk.
func ReadFile(path string) ([]mera.Variable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vars, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vars, nil
}

func lookup(doc *yaml.Node, key string) (*yaml.Node, error) {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("variable set: top level must be a mapping")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			return root.Content[i+1], nil
		}
	}
	return nil, fmt.Errorf("variable set: missing %q", key)
}

func expand(name string, val *yaml.Node) ([]mera.Variable, error) {
	var e entry
	if val.Tag != "!!null" {
		if err := val.Decode(&e); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	if e.Levels == nil {
		v, err := mera.ParseVariable(name)
		if err != nil {
			return nil, err
		}
		return []mera.Variable{v}, nil
	}
	if e.LevelUnit == "" {
		return nil, fmt.Errorf("%s: levels given without level_unit", name)
	}

	vars := make([]mera.Variable, 0, len(e.Levels))
	for _, lvl := range e.Levels {
		v, err := mera.ParseVariable(name + "_at_" + strings.TrimSpace(lvl) + "_" + e.LevelUnit)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, nil
}

// Write encodes vars as a flat document, one entry per variable in input
// order. Duplicates are written once.
func Write(w io.Writer, vars []mera.Variable) error {
	entries := &yaml.Node{Kind: yaml.MappingNode}
	seen := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		name := v.String()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		entries.Content = append(entries.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle},
		)
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: variablesKey},
			entries,
		},
	}}}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write variable set: %w", err)
	}
	return enc.Close()
}

// WriteFile writes vars to path, replacing any existing file.
func WriteFile(path string, vars []mera.Variable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, vars); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
