package ogm

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ModelDeclaration is one model in a YAML models file.
type ModelDeclaration struct {
	Schema `yaml:",inline"`

	// Extends names a model whose schema this one copies and overrides.
	Extends string `yaml:"extends,omitempty"`
}

// LoadModelsFile reads model declarations from a YAML file and defines them.
func (c *Client) LoadModelsFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}

	err = c.LoadModels(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

// LoadModels defines the models declared in YAML:
//
//	Person:
//	  labels: [Person, Human]
//	  fields:
//	    person_id: { type: uuid, primary: true }
//	    name: { type: string, indexed: true }
//	    age: int
//	    knows: { type: relationships, relationship: KNOWS, direction: out, target: Person, eager: true }
//	Actor:
//	  extends: Person
//	  fields:
//	    agent: string
//
// Models without extends are defined first; extensions are applied once their
// base exists, so declaration order does not matter. Unknown keys are rejected.
func (c *Client) LoadModels(data []byte) error {
	var doc yaml.Node

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(&doc)
	if err != nil {
		return err
	}

	if len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: models must be a mapping of name to declaration", root.Line)
	}

	var (
		names []string
		decls = make(map[string]ModelDeclaration)
	)

	for i := 0; i < len(root.Content); i += 2 {
		name := root.Content[i].Value

		var decl ModelDeclaration

		err := decodeStrict(root.Content[i+1], &decl)
		if err != nil {
			return fmt.Errorf("model %q: %w", name, err)
		}

		names = append(names, name)
		decls[name] = decl
	}

	pending := names
	for len(pending) > 0 {
		var next []string

		for _, name := range pending {
			decl := decls[name]

			switch {
			case decl.Extends == "":
				_, err = c.Define(name, decl.Schema)
			case c.models.Has(decl.Extends):
				_, err = c.Extend(decl.Extends, name, decl.Schema)
			default:
				next = append(next, name)

				continue
			}

			if err != nil {
				return err
			}
		}

		if len(next) == len(pending) {
			return &DefinitionNotFoundError{Kind: "model", Name: decls[next[0]].Extends, Defined: c.models.Keys()}
		}

		pending = next
	}

	return nil
}

// decodeStrict decodes node into v rejecting unknown keys.
func decodeStrict(node *yaml.Node, v any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	return dec.Decode(v)
}
