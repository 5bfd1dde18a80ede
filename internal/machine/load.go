package machine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format selects the machine file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the syntax by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%s: unknown machine file extension (want .toml, .yaml or .yml)", path)
	}
}

type fileHeader struct {
	Base string `toml:"base" yaml:"base"`
}

// LoadFile reads a machine file. Keys it defines override the preset named
// by its "base" key.
func LoadFile(path string) (*Model, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine file: %w", err)
	}
	m, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode parses machine file contents and validates the result.
func Decode(data []byte, format Format) (*Model, error) {
	var (
		m   *Model
		err error
	)
	switch format {
	case FormatTOML:
		m, err = decodeTOML(data)
	case FormatYAML:
		m, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unknown machine file format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid machine model: %w", err)
	}
	return m, nil
}

func basePreset(name string) (*Model, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPreset
	}
	return Preset(name)
}

func decodeTOML(data []byte) (*Model, error) {
	var hdr fileHeader
	if _, err := toml.Decode(string(data), &hdr); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	m, err := basePreset(hdr.Base)
	if err != nil {
		return nil, err
	}
	meta, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	var unknown []string
	for _, key := range meta.Undecoded() {
		if len(key) == 1 && key[0] == "base" {
			continue
		}
		unknown = append(unknown, key.String())
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(unknown, ", "))
	}
	if meta.IsDefined("float") && !meta.IsDefined("float", "fraction") {
		return nil, errors.New("[float] needs both width and fraction")
	}
	if meta.IsDefined("double") && !meta.IsDefined("double", "fraction") {
		return nil, errors.New("[double] needs both width and fraction")
	}
	return m, nil
}

func decodeYAML(data []byte) (*Model, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	var hdr fileHeader
	if err := root.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	m, err := basePreset(hdr.Base)
	if err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return m, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, errors.New("machine file must be a mapping")
	}
	// Drop "base" so the strict decode below rejects only unknown keys.
	kept := make([]*yaml.Node, 0, len(doc.Content))
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == "base" {
			continue
		}
		kept = append(kept, doc.Content[i], doc.Content[i+1])
	}
	doc.Content = kept
	rest, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode YAML: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(rest))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return m, nil
}

// Encode writes m in the given syntax with "base" omitted, so the output
// loads back to the same model.
func Encode(w io.Writer, m *Model, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(m)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown machine file format %q", format)
	}
}
