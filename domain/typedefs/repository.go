package typedefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/mutations"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/database"
)

// Repository stores type definitions keyed by (label, entity type).
type Repository interface {
	// Get returns nil, nil when no definition exists.
	Get(ctx context.Context, label string, entity mutations.EntityType) (*TypeDefinition, error)
	Save(ctx context.Context, def *TypeDefinition) error
	GetAll(ctx context.Context) ([]*TypeDefinition, error)
}

// batchSaver is implemented by repositories that can save several
// definitions atomically.
type batchSaver interface {
	SaveAll(ctx context.Context, defs []*TypeDefinition) error
}

// BunRepository persists definitions in kartograph.type_definitions.
type BunRepository struct {
	db bun.IDB
}

var _ Repository = (*BunRepository)(nil)

// NewBunRepository creates a new bun-backed repository.
func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

// Get returns the definition for label and entity.
func (r *BunRepository) Get(ctx context.Context, label string, entity mutations.EntityType) (*TypeDefinition, error) {
	def := new(TypeDefinition)
	err := r.db.NewSelect().
		Model(def).
		Where("label = ?", label).
		Where("entity_type = ?", entity).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get type definition %s (%s): %w", label, entity, err)
	}
	return def, nil
}

// GetAll returns every definition ordered by entity type and label.
func (r *BunRepository) GetAll(ctx context.Context) ([]*TypeDefinition, error) {
	var defs []*TypeDefinition
	err := r.db.NewSelect().
		Model(&defs).
		OrderExpr("entity_type ASC, label ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list type definitions: %w", err)
	}
	return defs, nil
}

// Save upserts def on (label, entity_type).
func (r *BunRepository) Save(ctx context.Context, def *TypeDefinition) error {
	return upsert(ctx, r.db, def)
}

// SaveAll upserts every definition in one transaction.
func (r *BunRepository) SaveAll(ctx context.Context, defs []*TypeDefinition) error {
	return database.InTx(ctx, r.db, func(tx bun.Tx) error {
		for _, def := range defs {
			if err := upsert(ctx, tx, def); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(ctx context.Context, db bun.IDB, def *TypeDefinition) error {
	row := def.Clone()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.RequiredProperties = sortedSet(row.RequiredProperties)
	row.OptionalProperties = sortedSet(row.OptionalProperties)

	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (label, entity_type) DO UPDATE").
		Set("description = EXCLUDED.description").
		Set("example_file_path = EXCLUDED.example_file_path").
		Set("example_in_file_path = EXCLUDED.example_in_file_path").
		Set("required_properties = EXCLUDED.required_properties").
		Set("optional_properties = EXCLUDED.optional_properties").
		Set("updated_at = now()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save type definition %s (%s): %w", def.Label, def.EntityType, err)
	}
	return nil
}

// MemoryRepository keeps definitions in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	defs map[key]*TypeDefinition
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{defs: map[key]*TypeDefinition{}}
}

func (r *MemoryRepository) Get(_ context.Context, label string, entity mutations.EntityType) (*TypeDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[key{label: label, entity: entity}]
	if !ok {
		return nil, nil
	}
	return def.Clone(), nil
}

func (r *MemoryRepository) Save(_ context.Context, def *TypeDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := def.Clone()
	if existing, ok := r.defs[def.key()]; ok {
		row.ID = existing.ID
	} else if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.RequiredProperties = sortedSet(row.RequiredProperties)
	row.OptionalProperties = sortedSet(row.OptionalProperties)
	r.defs[def.key()] = row
	return nil
}

func (r *MemoryRepository) GetAll(context.Context) ([]*TypeDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*TypeDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntityType != out[j].EntityType {
			return out[i].EntityType < out[j].EntityType
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}
