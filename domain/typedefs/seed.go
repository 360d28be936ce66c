package typedefs

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/mutations"
)

// SeedFile is the YAML layout read by LoadSeedFile:
//
//	types:
//	  - label: person
//	    entity_type: node
//	    description: A human
//	    required_properties: [name]
type SeedFile struct {
	Types []*TypeDefinition `yaml:"types" validate:"dive"`
}

// LoadSeedFile reads and validates a YAML seed file.
func LoadSeedFile(path string) ([]*TypeDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML.
func ParseSeed(data []byte) ([]*TypeDefinition, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	for i, def := range file.Types {
		if err := toDefine(def).Validate(); err != nil {
			return nil, fmt.Errorf("invalid seed file: type %d (%s): %w", i+1, def.Label, err)
		}
	}
	return file.Types, nil
}

// SeedDefinitions saves defs through the same path as DEFINE operations.
func (s *Service) SeedDefinitions(ctx context.Context, defs []*TypeDefinition) error {
	defines := make([]*mutations.DefineOperation, 0, len(defs))
	for _, def := range defs {
		defines = append(defines, toDefine(def))
	}
	return s.SaveDefinitions(ctx, defines)
}

func toDefine(def *TypeDefinition) *mutations.DefineOperation {
	return &mutations.DefineOperation{
		EntityType:         def.EntityType,
		Label:              def.Label,
		Description:        def.Description,
		ExampleFilePath:    def.ExampleFilePath,
		ExampleInFilePath:  def.ExampleInFilePath,
		RequiredProperties: def.RequiredProperties,
		OptionalProperties: def.OptionalProperties,
	}
}
