package types

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedManifestMajor is the manifest major version this build reads
const SupportedManifestMajor = "v1"

//go:embed manifest.schema.json
var manifestSchemaJSON string

// ErrInvalidManifest wraps every manifest decoding or validation failure
var ErrInvalidManifest = errors.New("invalid registry manifest")

// Manifest is the declarative description of a registry. It replaces
// introspecting a compiled artifact: each entry is one overload.
type Manifest struct {
	Version     string         `json:"version" yaml:"version"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Callables   []CallableSpec `json:"callables" yaml:"callables"`
}

// CallableSpec is one overload as written in a manifest
type CallableSpec struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Params      []string `json:"params,omitempty" yaml:"params,omitempty,flow"`
	Variadic    string   `json:"variadic,omitempty" yaml:"variadic,omitempty"`
	Returns     string   `json:"returns" yaml:"returns"`
}

// isSemver accepts versions with or without the leading "v"
func isSemver(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return true // Type validation happens separately
	}
	return semver.IsValid(canonicalVersion(s))
}

func canonicalVersion(s string) string {
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	return s
}

// ParseManifest decodes a YAML or JSON manifest and validates it against the
// embedded schema and the supported major version.
func ParseManifest(data []byte) (*Manifest, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidManifest)
	}

	// Normalize through JSON so the validator and decoder see the same values
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	dec := json.NewDecoder(bytes.NewReader(normalized))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	schema, err := compileSchema(manifestSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("manifest schema: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	var m Manifest
	if err := json.Unmarshal(normalized, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	if major := semver.Major(canonicalVersion(m.Version)); major != SupportedManifestMajor {
		return nil, fmt.Errorf("%w: version %s not supported (want %s.x)", ErrInvalidManifest, m.Version, SupportedManifestMajor)
	}
	return &m, nil
}

// Signatures converts every manifest entry into a Signature
func (m *Manifest) Signatures() ([]Signature, error) {
	sigs := make([]Signature, 0, len(m.Callables))
	for i, c := range m.Callables {
		b := NewSignature(c.Name).Description(c.Description)
		for _, p := range c.Params {
			tag, err := ParseTypeTag(p)
			if err != nil {
				return nil, fmt.Errorf("%w: callables[%d] %s: %v", ErrInvalidManifest, i, c.Name, err)
			}
			b.Param(tag)
		}
		if c.Variadic != "" {
			tag, err := ParseTypeTag(c.Variadic)
			if err != nil {
				return nil, fmt.Errorf("%w: callables[%d] %s: %v", ErrInvalidManifest, i, c.Name, err)
			}
			b.Variadic(tag)
		}
		ret, err := ParseTypeTag(c.Returns)
		if err != nil {
			return nil, fmt.Errorf("%w: callables[%d] %s: %v", ErrInvalidManifest, i, c.Name, err)
		}
		sigs = append(sigs, b.Returns(ret).Build())
	}
	return sigs, nil
}

// Registry builds a fresh registry from the manifest
func (m *Manifest) Registry() (*Registry, error) {
	sigs, err := m.Signatures()
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, sig := range sigs {
		if err := r.Register(sig); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
	}
	return r, nil
}

// LoadManifest reads and validates a manifest and returns its registry
func LoadManifest(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	return m.Registry()
}

// LoadManifestFile is LoadManifest for a path on disk
func LoadManifestFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reg, err := LoadManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// ManifestOf renders a registry back into manifest form, names sorted
func ManifestOf(r *Registry) *Manifest {
	m := &Manifest{Version: SupportedManifestMajor + ".0.0"}
	for _, name := range r.Names() {
		for _, sig := range r.Overloads(name) {
			spec := CallableSpec{
				Name:        sig.Name,
				Description: sig.Description,
				Returns:     sig.Returns.String(),
			}
			for _, p := range sig.Params {
				spec.Params = append(spec.Params, p.String())
			}
			if sig.IsVariadic() {
				spec.Variadic = sig.Variadic.String()
			}
			m.Callables = append(m.Callables, spec)
		}
	}
	return m
}
