// Package config loads the registry's initial seed/override documents
// (spec.md §6, "Consumed: initial registry"): a JSON document mapping
// "Module.function/arity" strings to a compact effect descriptor, plus an
// optional YAML override file for local environment-specific tweaks.
// Grounded on the teacher's internal/manifest/manifest.go (JSON-document
// loading + validation) and internal/manifest/schema.go (shape structs).
package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/registry"
)

// rawDescriptor mirrors the loose union spec.md §6 describes: either a bare
// one-letter string literal, or an object carrying one of "s"/"d"/"n"/"e"
// plus an optional "resolve" list of child MFA strings.
type rawDescriptor struct {
	Literal string // set only when the JSON/YAML value is a bare string

	Side      []string `json:"s" yaml:"s"`
	Dependent []string `json:"d" yaml:"d"`
	Nif       []string `json:"n" yaml:"n"`
	Exception []string `json:"e" yaml:"e"`
	Resolve   []string `json:"resolve" yaml:"resolve"`
}

func (d *rawDescriptor) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		d.Literal = s
		return nil
	}
	type alias rawDescriptor
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*d = rawDescriptor(a)
	return nil
}

func (d *rawDescriptor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		d.Literal = value.Value
		return nil
	}
	type alias rawDescriptor
	var a alias
	if err := value.Decode(&a); err != nil {
		return err
	}
	*d = rawDescriptor(a)
	return nil
}

// Document is a decoded registry seed/override document: MFA key string to
// raw descriptor, decoded with encoding/json (primary format per spec.md §6)
// or gopkg.in/yaml.v3 (local override files).
type Document map[string]*rawDescriptor

// LoadJSON decodes a registry document from JSON bytes.
func LoadJSON(b []byte) (map[ast.MFA]registry.Entry, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("config: invalid JSON registry document: %w", err)
	}
	return toEntries(doc)
}

// LoadYAML decodes a registry override document from YAML bytes.
func LoadYAML(b []byte) (map[ast.MFA]registry.Entry, error) {
	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("config: invalid YAML registry override: %w", err)
	}
	return toEntries(doc)
}

func toEntries(doc Document) (map[ast.MFA]registry.Entry, error) {
	out := make(map[ast.MFA]registry.Entry, len(doc))
	for key, raw := range doc {
		m, err := ParseMFA(key)
		if err != nil {
			return nil, err
		}
		entry, err := descriptorToEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", key, err)
		}
		out[m] = entry
	}
	return out, nil
}

func descriptorToEntry(raw *rawDescriptor) (registry.Entry, error) {
	var resolve []ast.MFA
	for _, r := range raw.Resolve {
		m, err := ParseMFA(r)
		if err != nil {
			return registry.Entry{}, err
		}
		resolve = append(resolve, m)
	}

	switch {
	case raw.Literal != "":
		cat, err := literalCategory(raw.Literal)
		if err != nil {
			return registry.Entry{}, err
		}
		return registry.Entry{Effect: effects.Compact{Category: cat}, Resolve: resolve}, nil
	case len(raw.Side) > 0:
		return registry.Entry{Effect: effects.Compact{Category: effects.CatSide, Payloads: raw.Side}, Resolve: resolve}, nil
	case len(raw.Dependent) > 0:
		return registry.Entry{Effect: effects.Compact{Category: effects.CatDependent, Payloads: raw.Dependent}, Resolve: resolve}, nil
	case len(raw.Nif) > 0:
		return registry.Entry{Effect: effects.Compact{Category: effects.CatNif, Payloads: raw.Nif}, Resolve: resolve}, nil
	case len(raw.Exception) > 0:
		return registry.Entry{Effect: effects.Compact{Category: effects.CatException, Payloads: raw.Exception}, Resolve: resolve}, nil
	default:
		return registry.Entry{}, fmt.Errorf("empty effect descriptor")
	}
}

func literalCategory(lit string) (effects.Category, error) {
	switch lit {
	case "p":
		return effects.CatPure, nil
	case "l":
		return effects.CatLambda, nil
	case "d":
		return effects.CatDependent, nil
	case "u":
		return effects.CatUnknown, nil
	case "n":
		return effects.CatNif, nil
	default:
		return 0, fmt.Errorf("unrecognized effect literal %q", lit)
	}
}

// ParseMFA parses a "Module.function/arity" key into an ast.MFA.
func ParseMFA(key string) (ast.MFA, error) {
	slash := strings.LastIndex(key, "/")
	if slash < 0 {
		return ast.MFA{}, fmt.Errorf("config: malformed MFA key %q (missing /arity)", key)
	}
	arity, err := strconv.Atoi(key[slash+1:])
	if err != nil {
		return ast.MFA{}, fmt.Errorf("config: malformed arity in %q: %w", key, err)
	}
	dot := strings.LastIndex(key[:slash], ".")
	if dot < 0 {
		return ast.MFA{}, fmt.Errorf("config: malformed MFA key %q (missing Module.)", key)
	}
	return ast.MFA{
		Module:   key[:dot],
		Function: key[dot+1 : slash],
		Arity:    arity,
	}, nil
}
