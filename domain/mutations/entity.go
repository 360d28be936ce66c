package mutations

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
)

// EntityType distinguishes nodes from edges.
type EntityType string

const (
	EntityNode EntityType = "node"
	EntityEdge EntityType = "edge"
)

// Valid reports whether e is node or edge.
func (e EntityType) Valid() bool {
	return e == EntityNode || e == EntityEdge
}

// OpType is the mutation verb.
type OpType string

const (
	OpDefine OpType = "DEFINE"
	OpCreate OpType = "CREATE"
	OpUpdate OpType = "UPDATE"
	OpDelete OpType = "DELETE"
)

// ReservedIDKey is the property holding an entity's logical id.
const ReservedIDKey = "id"

// ErrInvalidOperation wraps every shape violation found by Validate.
var ErrInvalidOperation = errors.New("invalid operation")

var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*:[0-9a-f]{16}$`)

// ValidID reports whether id has the form prefix:16-lowercase-hex.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

var systemProperties = map[EntityType][]string{
	EntityNode: {"data_source_id", "slug", "source_path"},
	EntityEdge: {"data_source_id", "source_path"},
}

// SystemProperties returns the properties every CREATE of the entity type
// must carry, sorted.
func SystemProperties(e EntityType) []string {
	return slices.Clone(systemProperties[e])
}

// IsSystemProperty reports whether key is a system property of e.
func IsSystemProperty(e EntityType, key string) bool {
	return slices.Contains(systemProperties[e], key)
}

// Operation is one entry of a mutation batch.
type Operation interface {
	Op() OpType
	Entity() EntityType
	// OperationID is the logical id, empty for DEFINE.
	OperationID() string
	// OperationLabel is the label, possibly empty for UPDATE and DELETE.
	OperationLabel() string
	Validate() error
}

// DefineOperation declares a node or edge type.
type DefineOperation struct {
	EntityType         EntityType
	Label              string
	Description        string
	ExampleFilePath    string
	ExampleInFilePath  string
	RequiredProperties []string
	OptionalProperties []string
}

// CreateNodeOperation upserts a node by id.
type CreateNodeOperation struct {
	ID            string
	Label         string
	SetProperties *Properties
}

// CreateEdgeOperation upserts an edge by id between two existing nodes.
type CreateEdgeOperation struct {
	ID            string
	Label         string
	StartID       string
	EndID         string
	SetProperties *Properties
}

// UpdateOperation sets and removes properties on an existing entity.
type UpdateOperation struct {
	EntityType       EntityType
	ID               string
	Label            string
	SetProperties    *Properties
	RemoveProperties []string
}

// DeleteOperation removes an entity by id. Deleting a node detaches its edges.
type DeleteOperation struct {
	EntityType EntityType
	ID         string
}

func (o *DefineOperation) Op() OpType             { return OpDefine }
func (o *DefineOperation) Entity() EntityType     { return o.EntityType }
func (o *DefineOperation) OperationID() string    { return "" }
func (o *DefineOperation) OperationLabel() string { return o.Label }

func (o *CreateNodeOperation) Op() OpType             { return OpCreate }
func (o *CreateNodeOperation) Entity() EntityType     { return EntityNode }
func (o *CreateNodeOperation) OperationID() string    { return o.ID }
func (o *CreateNodeOperation) OperationLabel() string { return o.Label }

func (o *CreateEdgeOperation) Op() OpType             { return OpCreate }
func (o *CreateEdgeOperation) Entity() EntityType     { return EntityEdge }
func (o *CreateEdgeOperation) OperationID() string    { return o.ID }
func (o *CreateEdgeOperation) OperationLabel() string { return o.Label }

func (o *UpdateOperation) Op() OpType             { return OpUpdate }
func (o *UpdateOperation) Entity() EntityType     { return o.EntityType }
func (o *UpdateOperation) OperationID() string    { return o.ID }
func (o *UpdateOperation) OperationLabel() string { return o.Label }

func (o *DeleteOperation) Op() OpType             { return OpDelete }
func (o *DeleteOperation) Entity() EntityType     { return o.EntityType }
func (o *DeleteOperation) OperationID() string    { return o.ID }
func (o *DeleteOperation) OperationLabel() string { return "" }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}

func validateEntity(e EntityType) error {
	if !e.Valid() {
		return invalidf("type must be node or edge, got %q", e)
	}
	return nil
}

func validateID(field, id string) error {
	if id == "" {
		return invalidf("%s is required", field)
	}
	if !ValidID(id) {
		return invalidf("%s %q does not match prefix:16-hex-digits", field, id)
	}
	return nil
}

func validateLabel(label string) error {
	if label == "" {
		return invalidf("label is required")
	}
	if !age.IsSafeIdentifier(label) {
		return invalidf("label %q must be an identifier of at most %d bytes", label, age.MaxIdentifierLength)
	}
	return nil
}

func validateKeys(field string, keys []string) error {
	for _, k := range keys {
		if !age.IsSafeIdentifier(k) {
			return invalidf("%s: %q is not a valid property name", field, k)
		}
	}
	return nil
}

// validateSet checks keys and the reserved id property.
func validateSet(id string, props *Properties) error {
	if err := validateKeys("set_properties", props.Keys()); err != nil {
		return err
	}
	if v, ok := props.Get(ReservedIDKey); ok {
		if s, isString := v.(string); !isString || s != id {
			return invalidf("set_properties.id must equal the operation id %q", id)
		}
	}
	return nil
}

func requireSystemProperties(e EntityType, props *Properties) error {
	var missing []string
	for _, k := range systemProperties[e] {
		if !props.Has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return invalidf("set_properties is missing system properties: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (o *DefineOperation) Validate() error {
	if err := validateEntity(o.EntityType); err != nil {
		return err
	}
	if err := validateLabel(o.Label); err != nil {
		return err
	}
	if strings.TrimSpace(o.Description) == "" {
		return invalidf("description is required")
	}
	if err := validateKeys("required_properties", o.RequiredProperties); err != nil {
		return err
	}
	return validateKeys("optional_properties", o.OptionalProperties)
}

func (o *CreateNodeOperation) Validate() error {
	if err := validateID("id", o.ID); err != nil {
		return err
	}
	if err := validateLabel(o.Label); err != nil {
		return err
	}
	if o.SetProperties == nil {
		return invalidf("set_properties is required")
	}
	if err := validateSet(o.ID, o.SetProperties); err != nil {
		return err
	}
	return requireSystemProperties(EntityNode, o.SetProperties)
}

func (o *CreateEdgeOperation) Validate() error {
	if err := validateID("id", o.ID); err != nil {
		return err
	}
	if err := validateLabel(o.Label); err != nil {
		return err
	}
	if err := validateID("start_id", o.StartID); err != nil {
		return err
	}
	if err := validateID("end_id", o.EndID); err != nil {
		return err
	}
	if o.SetProperties == nil {
		return invalidf("set_properties is required")
	}
	if err := validateSet(o.ID, o.SetProperties); err != nil {
		return err
	}
	return requireSystemProperties(EntityEdge, o.SetProperties)
}

func (o *UpdateOperation) Validate() error {
	if err := validateEntity(o.EntityType); err != nil {
		return err
	}
	if err := validateID("id", o.ID); err != nil {
		return err
	}
	if o.Label != "" {
		if err := validateLabel(o.Label); err != nil {
			return err
		}
	}
	if o.SetProperties.Len() == 0 && len(o.RemoveProperties) == 0 {
		return invalidf("UPDATE requires set_properties or remove_properties")
	}
	if o.SetProperties != nil {
		if err := validateSet(o.ID, o.SetProperties); err != nil {
			return err
		}
	}
	if err := validateKeys("remove_properties", o.RemoveProperties); err != nil {
		return err
	}
	for _, k := range o.RemoveProperties {
		if k == ReservedIDKey {
			return invalidf("remove_properties may not contain id")
		}
		if IsSystemProperty(o.EntityType, k) {
			return invalidf("remove_properties may not contain system property %q", k)
		}
	}
	return nil
}

func (o *DeleteOperation) Validate() error {
	if err := validateEntity(o.EntityType); err != nil {
		return err
	}
	return validateID("id", o.ID)
}

// Describe renders an operation for error messages, e.g. "CREATE node person:0123456789abcdef".
func Describe(op Operation) string {
	parts := []string{string(op.Op()), string(op.Entity())}
	if id := op.OperationID(); id != "" {
		parts = append(parts, id)
	} else if label := op.OperationLabel(); label != "" {
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}
