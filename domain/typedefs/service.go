package typedefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/mutations"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

// SystemProperties returns the properties every CREATE of entity must carry.
func SystemProperties(entity mutations.EntityType) []string {
	return mutations.SystemProperties(entity)
}

// Service validates mutation batches against stored type definitions and
// learns optional properties from applied operations.
type Service struct {
	repo Repository
	log  *slog.Logger
}

var _ mutations.SchemaService = (*Service)(nil)

// NewService creates a new type definition service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With(logger.Scope("typedefs")),
	}
}

// Get returns the definition for label and entity, or nil when undefined.
func (s *Service) Get(ctx context.Context, label string, entity mutations.EntityType) (*TypeDefinition, error) {
	return s.repo.Get(ctx, label, entity)
}

// List returns every stored definition.
func (s *Service) List(ctx context.Context) ([]*TypeDefinition, error) {
	return s.repo.GetAll(ctx)
}

// ValidateBatch checks every CREATE against the batch's own DEFINEs, falling
// back to the repository. It returns one message per problem found.
func (s *Service) ValidateBatch(ctx context.Context, ops []mutations.Operation) []string {
	defined := map[key]*TypeDefinition{}
	for _, op := range ops {
		if d, ok := op.(*mutations.DefineOperation); ok {
			def := FromDefine(d)
			defined[def.key()] = def
		}
	}

	var problems []string
	for _, op := range ops {
		if op.Op() != mutations.OpCreate {
			continue
		}
		k := key{label: op.OperationLabel(), entity: op.Entity()}
		def, ok := defined[k]
		if !ok {
			stored, err := s.repo.Get(ctx, k.label, k.entity)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: lookup type '%s' (%s): %v", op.OperationID(), k.label, k.entity, err))
				continue
			}
			// Cache misses as nil so each pair hits the repository once.
			defined[k] = stored
			def = stored
		}
		if def == nil {
			problems = append(problems, fmt.Sprintf("%s: type '%s' (%s) is not defined", op.OperationID(), k.label, k.entity))
			continue
		}

		props := setProperties(op)
		var missing []string
		for _, name := range requiredKeys(def) {
			if !props.Has(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("%s: missing required properties: %s", op.OperationID(), strings.Join(missing, ", ")))
		}
	}
	return problems
}

// SaveDefinitions upserts the given DEFINEs. A re-definition replaces the
// description, examples and required set but keeps previously known
// optional properties.
func (s *Service) SaveDefinitions(ctx context.Context, defines []*mutations.DefineOperation) error {
	if len(defines) == 0 {
		return nil
	}

	defs := make([]*TypeDefinition, 0, len(defines))
	for _, d := range defines {
		def := FromDefine(d)
		existing, err := s.repo.Get(ctx, def.Label, def.EntityType)
		if err != nil {
			return err
		}
		if existing != nil {
			def.ID = existing.ID
			def.CreatedAt = existing.CreatedAt
			def = def.WithOptional(existing.OptionalProperties)
		}
		defs = append(defs, def)
	}

	if bs, ok := s.repo.(batchSaver); ok {
		return bs.SaveAll(ctx, defs)
	}
	for _, def := range defs {
		if err := s.repo.Save(ctx, def); err != nil {
			return err
		}
	}
	return nil
}

// Learn records properties seen on CREATE and UPDATE operations that the
// definition does not list yet as optional.
func (s *Service) Learn(ctx context.Context, ops []mutations.Operation) error {
	cache := map[key]*TypeDefinition{}
	var errs []error

	for _, op := range ops {
		if op.Op() != mutations.OpCreate && op.Op() != mutations.OpUpdate {
			continue
		}
		props := setProperties(op)
		if op.OperationLabel() == "" || props.Len() == 0 {
			continue
		}

		k := key{label: op.OperationLabel(), entity: op.Entity()}
		def, ok := cache[k]
		if !ok {
			stored, err := s.repo.Get(ctx, k.label, k.entity)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			cache[k] = stored
			def = stored
		}
		if def == nil {
			continue
		}

		extra := unknownKeys(def, props.Keys())
		if len(extra) == 0 {
			continue
		}
		learned := def.WithOptional(extra)
		if err := s.repo.Save(ctx, learned); err != nil {
			errs = append(errs, err)
			continue
		}
		cache[k] = learned
		s.log.Debug("learned optional properties",
			slog.String("label", k.label),
			slog.String("entity", string(k.entity)),
			slog.Any("properties", extra),
		)
	}
	return errors.Join(errs...)
}

func requiredKeys(def *TypeDefinition) []string {
	keys := append(slices.Clone([]string(def.RequiredProperties)), SystemProperties(def.EntityType)...)
	slices.Sort(keys)
	return slices.Compact(keys)
}

// unknownKeys returns provided keys that are neither required, system,
// known optional nor the id.
func unknownKeys(def *TypeDefinition, provided []string) []string {
	var extra []string
	for _, name := range provided {
		switch {
		case name == mutations.ReservedIDKey,
			slices.Contains(def.RequiredProperties, name),
			slices.Contains(def.OptionalProperties, name),
			mutations.IsSystemProperty(def.EntityType, name):
			continue
		}
		extra = append(extra, name)
	}
	slices.Sort(extra)
	return slices.Compact(extra)
}

func setProperties(op mutations.Operation) *mutations.Properties {
	switch o := op.(type) {
	case *mutations.CreateNodeOperation:
		return o.SetProperties
	case *mutations.CreateEdgeOperation:
		return o.SetProperties
	case *mutations.UpdateOperation:
		return o.SetProperties
	}
	return nil
}
