package topo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Load parses a topology document from a JSON buffer and validates it.
func Load(buf []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(buf, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadYAML parses a topology document from a YAML buffer and validates it.
// The buffer is converted to JSON first so the document's JSON field names
// (rev, vBucketServerMap, ...) are authoritative in both formats.
func LoadYAML(buf []byte) (*Document, error) {
	jsonBuf, err := yaml.YAMLToJSON(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return Load(jsonBuf)
}

// LoadFile reads a topology document from disk. Files with a .yaml or .yml
// extension are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Document, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return LoadYAML(buf)
	default:
		return Load(buf)
	}
}
