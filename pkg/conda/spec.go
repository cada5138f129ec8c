package conda

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/warptools/envforge/pkg/envapi"
)

const (
	specKeyName   = "name"
	specKeyPrefix = "prefix"
)

// EnvironmentSpec is a parsed environment spec file.
//
// Only the identity fields are interpreted.
// Every other key (channels, dependencies, variables...) is retained as-is,
// including its order and comments, so that rewriting the file is lossless.
type EnvironmentSpec struct {
	Path   string // Absolute path the spec was loaded from.
	Name   string // Empty if not declared.
	Prefix string // Empty if not declared; otherwise absolute and clean.

	doc   *yaml.Node // Document node; doc.Content[0] is the top level mapping.
	dirty bool       // True if the identity was changed since loading.
}

// ConfigEntry is one top level key of a spec file other than the identity fields.
type ConfigEntry struct {
	Key   string
	Value *yaml.Node
}

// LoadSpec reads and parses the spec file at path.
//
// Errors:
//
//   - envforge-error-missing -- when there is no file at path
//   - envforge-error-io -- when the file cannot be read
//   - envforge-error-config-parse -- when the file is empty, malformed, or declares an unusable identity
//   - envforge-error-conflicting-identity -- when name and prefix disagree
func LoadSpec(path string) (*EnvironmentSpec, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, envapi.ErrorIo("resolving spec file path", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, envapi.ErrorFileMissing(abs)
		}
		return nil, envapi.ErrorIo("reading spec file", abs, err)
	}
	return ParseSpec(abs, data)
}

// ParseSpec parses the contents of a spec file.
// The path is recorded on the result and used in error messages.
//
// Errors:
//
//   - envforge-error-config-parse -- when data is empty, malformed, or declares an unusable identity
//   - envforge-error-conflicting-identity -- when name and prefix disagree
func ParseSpec(path string, data []byte) (*EnvironmentSpec, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, envapi.ErrorConfigParse(path, "empty document", nil)
		}
		return nil, envapi.ErrorConfigParse(path, "malformed YAML", err)
	}
	// Only single-document files can be rewritten.
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, envapi.ErrorConfigParse(path, "malformed YAML", err)
		}
		return nil, envapi.ErrorConfigParse(path, "multiple documents", nil)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, envapi.ErrorConfigParse(path, "empty document", nil)
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, envapi.ErrorConfigParse(path, "empty document", nil)
	}
	if root.Kind != yaml.MappingNode {
		return nil, envapi.ErrorConfigParse(path, "top level must be a mapping", nil)
	}
	if len(root.Content) == 0 {
		return nil, envapi.ErrorConfigParse(path, "empty document", nil)
	}

	spec := &EnvironmentSpec{
		Path: path,
		doc:  &doc,
	}
	seen := map[string]bool{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			continue
		}
		if key.Value != specKeyName && key.Value != specKeyPrefix {
			continue
		}
		if seen[key.Value] {
			return nil, envapi.ErrorConfigParse(path, fmt.Sprintf("duplicate %q key", key.Value), nil)
		}
		seen[key.Value] = true
		str, err := identityScalar(val)
		if err != nil {
			return nil, envapi.ErrorConfigParse(path, fmt.Sprintf("invalid %q: %s", key.Value, err), nil)
		}
		switch key.Value {
		case specKeyName:
			if str != "" {
				if err := ValidateEnvName(str); err != nil {
					return nil, envapi.ErrorConfigParse(path, fmt.Sprintf("invalid %q: %s", key.Value, err), nil)
				}
			}
			spec.Name = str
		case specKeyPrefix:
			spec.Prefix = str
		}
	}

	if spec.Prefix != "" {
		if !filepath.IsAbs(spec.Prefix) {
			return nil, envapi.ErrorConfigParse(path, fmt.Sprintf("prefix %q must be an absolute path", spec.Prefix), nil)
		}
		spec.Prefix = filepath.Clean(spec.Prefix)
		if err := ValidateEnvName(filepath.Base(spec.Prefix)); err != nil {
			return nil, envapi.ErrorConfigParse(path, fmt.Sprintf("prefix %q does not end in an environment name", spec.Prefix), nil)
		}
	}
	if spec.Name != "" && spec.Prefix != "" && filepath.Base(spec.Prefix) != spec.Name {
		return nil, envapi.ErrorConflictingIdentity(path, spec.Name, spec.Prefix)
	}
	return spec, nil
}

// ValidateEnvName checks that name is exactly one path segment,
// usable as the last element of an environment prefix.
func ValidateEnvName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("name is empty")
	case name == "." || name == "..":
		return fmt.Errorf("%q is not a directory name", name)
	case strings.ContainsAny(name, `/\`) || name != filepath.Base(name):
		return fmt.Errorf("%q contains a path separator", name)
	}
	return nil
}

// identityScalar reads a name or prefix value.
// A null value counts as not declared.
func identityScalar(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("expected a string")
	}
	if n.Tag == "!!null" {
		return "", nil
	}
	return n.Value, nil
}

// RawConfig returns every top level entry other than name and prefix, in file order.
func (s *EnvironmentSpec) RawConfig() []ConfigEntry {
	root := s.root()
	if root == nil {
		return nil
	}
	var entries []ConfigEntry
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if key.Value == specKeyName || key.Value == specKeyPrefix {
			continue
		}
		entries = append(entries, ConfigEntry{Key: key.Value, Value: root.Content[i+1]})
	}
	return entries
}

// Dirty reports whether the identity was changed since the spec was loaded.
func (s *EnvironmentSpec) Dirty() bool {
	return s.dirty
}

// SetIdentity changes the declared name and prefix.
// Keys that are missing are inserted: name first in the document, prefix right after name.
// Setting the current values is a no-op and leaves the spec clean.
func (s *EnvironmentSpec) SetIdentity(name, prefix string) {
	root := s.root()
	if root == nil {
		return
	}
	if s.setScalar(root, specKeyName, name, 0) {
		s.dirty = true
	}
	s.Name = name
	if s.setScalar(root, specKeyPrefix, prefix, s.keyIndex(root, specKeyName)+2) {
		s.dirty = true
	}
	s.Prefix = prefix
}

func (s *EnvironmentSpec) root() *yaml.Node {
	if s.doc == nil || len(s.doc.Content) == 0 {
		return nil
	}
	return s.doc.Content[0]
}

// keyIndex returns the index of key's key node within the mapping, or -2 if absent.
func (s *EnvironmentSpec) keyIndex(root *yaml.Node, key string) int {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Kind == yaml.ScalarNode && root.Content[i].Value == key {
			return i
		}
	}
	return -2
}

// setScalar sets key to a string value, inserting the pair at insertAt if the key is absent.
// It returns true if the document changed.
func (s *EnvironmentSpec) setScalar(root *yaml.Node, key, value string, insertAt int) bool {
	if idx := s.keyIndex(root, key); idx >= 0 {
		val := root.Content[idx+1]
		if val.Kind == yaml.ScalarNode && val.Tag != "!!null" && val.Value == value {
			return false
		}
		root.Content[idx+1] = &yaml.Node{
			Kind:        yaml.ScalarNode,
			Tag:         "!!str",
			Value:       value,
			LineComment: val.LineComment,
		}
		return true
	}
	if insertAt < 0 {
		insertAt = 0
	}
	if insertAt > len(root.Content) {
		insertAt = len(root.Content)
	}
	pair := []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	}
	content := make([]*yaml.Node, 0, len(root.Content)+2)
	content = append(content, root.Content[:insertAt]...)
	content = append(content, pair...)
	content = append(content, root.Content[insertAt:]...)
	root.Content = content
	return true
}
