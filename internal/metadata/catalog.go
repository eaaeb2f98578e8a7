package metadata

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"contalink/internal/core/apperror"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the YAML document shape.
type Catalog struct {
	Views   []TableDescriptor `yaml:"views"`
	Modules []Module          `yaml:"modules"`
}

// Load parses a YAML catalogue and builds a validated registry.
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cat Catalog
	if err := dec.Decode(&cat); err != nil {
		return nil, apperror.NewConfiguration("catalog is not valid YAML").WithCause(err)
	}

	reg := NewRegistry()
	for _, v := range cat.Views {
		if err := reg.Register(v); err != nil {
			return nil, err
		}
	}
	for _, m := range cat.Modules {
		if err := reg.RegisterModule(m); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadFile loads a catalogue from disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.NewConfiguration("open catalog").WithDetail("path", path).WithCause(err)
	}
	defer f.Close()
	return Load(f)
}

// LoadDefault loads the embedded catalogue.
func LoadDefault() (*Registry, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// MustLoadDefault is LoadDefault for program start-up.
func MustLoadDefault() *Registry {
	reg, err := LoadDefault()
	if err != nil {
		panic(fmt.Sprintf("metadata: embedded catalog: %v", err))
	}
	return reg
}
