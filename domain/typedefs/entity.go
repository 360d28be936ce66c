package typedefs

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/mutations"
)

// TypeDefinition describes a node or edge label and its property contract.
// Values are treated as immutable; use WithOptional to derive a new one.
type TypeDefinition struct {
	bun.BaseModel `bun:"kartograph.type_definitions,alias:td"`

	ID                 uuid.UUID            `bun:"id,pk,type:uuid" json:"-" yaml:"-"`
	Label              string               `bun:"label,notnull" json:"label" yaml:"label" validate:"required,max=63"`
	EntityType         mutations.EntityType `bun:"entity_type,notnull" json:"entity_type" yaml:"entity_type" validate:"required,oneof=node edge"`
	Description        string               `bun:"description,notnull" json:"description" yaml:"description" validate:"required"`
	ExampleFilePath    string               `bun:"example_file_path,nullzero" json:"example_file_path,omitempty" yaml:"example_file_path,omitempty"`
	ExampleInFilePath  string               `bun:"example_in_file_path,nullzero" json:"example_in_file_path,omitempty" yaml:"example_in_file_path,omitempty"`
	RequiredProperties pq.StringArray       `bun:"required_properties,type:text[],notnull" json:"required_properties" yaml:"required_properties"`
	OptionalProperties pq.StringArray       `bun:"optional_properties,type:text[],notnull" json:"optional_properties" yaml:"optional_properties"`
	CreatedAt          time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at" yaml:"-"`
	UpdatedAt          time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at" yaml:"-"`
}

type key struct {
	label  string
	entity mutations.EntityType
}

func (d *TypeDefinition) key() key {
	return key{label: d.Label, entity: d.EntityType}
}

// FromDefine builds a definition from a DEFINE operation.
func FromDefine(op *mutations.DefineOperation) *TypeDefinition {
	return &TypeDefinition{
		Label:              op.Label,
		EntityType:         op.EntityType,
		Description:        op.Description,
		ExampleFilePath:    op.ExampleFilePath,
		ExampleInFilePath:  op.ExampleInFilePath,
		RequiredProperties: sortedSet(op.RequiredProperties),
		OptionalProperties: sortedSet(op.OptionalProperties),
	}
}

// WithOptional returns a copy whose optional set also contains extra.
func (d *TypeDefinition) WithOptional(extra []string) *TypeDefinition {
	c := d.Clone()
	c.OptionalProperties = sortedSet(append(slices.Clone([]string(d.OptionalProperties)), extra...))
	return c
}

// Clone returns a deep copy.
func (d *TypeDefinition) Clone() *TypeDefinition {
	c := *d
	c.RequiredProperties = slices.Clone(d.RequiredProperties)
	c.OptionalProperties = slices.Clone(d.OptionalProperties)
	return &c
}

// sortedSet returns the sorted, de-duplicated values. It never returns nil
// so the array columns stay non-null.
func sortedSet(values []string) pq.StringArray {
	out := slices.Clone(values)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}
