// Package catalog loads the resource type catalog an import classifies rows
// against.
//
// A catalog document is YAML (JSON documents are accepted as YAML). It is
// either a sequence of resource types or a mapping with a resource_types key.
// Only the parts of each secret schema the classifier needs are kept:
// property names in document order and the required list.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/credport/internal/core"
)

//go:embed default.yaml
var defaultDocument []byte

// ErrEmptyCatalog is returned for a document without resource types.
var ErrEmptyCatalog = errors.New("catalog has no resource types")

type document struct {
	ResourceTypes []resourceType `yaml:"resource_types"`
}

type resourceType struct {
	ID         string `yaml:"id"`
	Slug       string `yaml:"slug"`
	Name       string `yaml:"name"`
	Definition struct {
		Secret secretSchema `yaml:"secret"`
	} `yaml:"definition"`
}

type secretSchema struct {
	Required []string `yaml:"required"`
	// Decoded as a node so key order survives.
	Properties yaml.Node `yaml:"properties"`
}

// Default returns the built-in catalog.
func Default() core.ResourceTypes {
	types, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return types
}

// Load reads a catalog file from fsys. An empty path selects the built-in
// catalog.
func Load(fsys afero.Fs, path string) (core.ResourceTypes, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	types, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return types, nil
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (core.ResourceTypes, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, ErrEmptyCatalog
	}

	var entries []resourceType
	if root.Content[0].Kind == yaml.SequenceNode {
		if err := root.Content[0].Decode(&entries); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
	} else {
		var doc document
		if err := root.Content[0].Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		entries = doc.ResourceTypes
	}
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	types := make(core.ResourceTypes, 0, len(entries))
	for _, e := range entries {
		types = append(types, core.ResourceType{
			ID:   e.ID,
			Slug: e.Slug,
			Name: e.Name,
			Definition: core.ResourceTypeDefinition{
				Secret: core.SecretSchema{
					Properties: propertyNames(&e.Definition.Secret.Properties),
					Required:   e.Definition.Secret.Required,
				},
			},
		})
	}

	if err := types.Validate(); err != nil {
		return nil, err
	}
	return types, nil
}

// propertyNames returns the keys of a mapping node in document order.
func propertyNames(n *yaml.Node) []string {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	names := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		names = append(names, n.Content[i].Value)
	}
	return names
}
