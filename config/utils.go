package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
)

// ToYaml formats the configuration into YAML and returns the bytes.
func ToYaml(c Config) ([]byte, error) {
	return yaml.Marshal(c)
}

// ToYamlFile writes the configuration to a YAML file.
func ToYamlFile(c Config, p string) error {
	b, err := ToYaml(c)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0600)
}

// ToYamlTempFile writes the configuration to a temporary YAML file.
// Returns the file path and a cleanup function which removes it.
func ToYamlTempFile(c Config, name string) (string, func()) {
	tmpdir, err := os.MkdirTemp("", "")
	if err != nil {
		panic(err)
	}

	cleanup := func() {
		os.RemoveAll(tmpdir)
	}

	p := filepath.Join(tmpdir, name)
	if err := ToYamlFile(c, p); err != nil {
		cleanup()
		panic(err)
	}
	return p, cleanup
}

// Parse parses a YAML doc into the given Config instance.
func Parse(raw []byte, conf *Config) error {
	return yaml.Unmarshal(raw, conf)
}

// ParseFile parses a slaunch config file, which is formatted in YAML,
// into the given Config struct.
func ParseFile(relpath string, conf *Config) error {
	if relpath == "" {
		return nil
	}

	// Try to get absolute path. If it fails, fall back to relative path.
	path, abserr := filepath.Abs(relpath)
	if abserr != nil {
		path = relpath
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config at path %s: %v", path, err)
	}

	if err := Parse(source, conf); err != nil {
		return fmt.Errorf("failed to parse config at path %s: %v", path, err)
	}
	return nil
}
