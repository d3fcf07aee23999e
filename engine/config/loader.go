package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from a file extension. Anything other than .toml is YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load loads the sandbox configuration and validates it.
// Search order: customPath -> ~/.oxy-sandbox/sandbox.yaml -> ./configs/sandbox.yaml -> embedded default.
// Only an explicit customPath turns read or parse failures into errors; the other locations are
// skipped when unusable.
//
// Parameters:
//   - customPath: explicit config file, or empty to search
//
// Returns:
//   - Config: the loaded configuration with Source set
//   - error: read, parse, or validation failure
func Load(customPath string) (Config, error) {
	if customPath != "" {
		return LoadFile(customPath)
	}

	for _, p := range []string{userConfigPath("sandbox.yaml"), userConfigPath("sandbox.toml"), filepath.Join("configs", "sandbox.yaml")} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if cfg, err := LoadFile(p); err == nil {
			return cfg, nil
		}
	}

	cfg, err := Decode(defaultSandboxYAML, FormatYAML)
	if err != nil {
		cfg = Default()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads, decodes and validates a single configuration file.
// Settings absent from the file keep their Default values.
//
// Parameters:
//   - path: the file path; a .toml extension selects TOML
//
// Returns:
//   - Config: the configuration with Source set to path
//   - error: read, parse, or validation failure
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Decode(data, FormatFor(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Decode parses data over Default. It does not validate.
//
// Parameters:
//   - data: the encoded configuration
//   - format: the encoding
//
// Returns:
//   - Config: the decoded configuration
//   - error: parse failure
func Decode(data []byte, format Format) (Config, error) {
	cfg := Default()
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg in the given format.
//
// Parameters:
//   - w: the destination
//   - cfg: the configuration to write
//   - format: the encoding
//
// Returns:
//   - error: encoding or write failure
func Encode(w io.Writer, cfg Config, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(cfg)
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".oxy-sandbox", filename)
}
