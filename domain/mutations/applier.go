package mutations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

// FailureKind classifies why a batch did not succeed.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureValidation  FailureKind = "validation"
	FailureSchema      FailureKind = "schema"
	FailureExecution   FailureKind = "execution"
	FailurePersistence FailureKind = "persistence"
)

// MutationResult is the outcome of one batch.
type MutationResult struct {
	Success           bool        `json:"success"`
	OperationsApplied int         `json:"operations_applied"`
	Errors            []string    `json:"errors"`
	Failure           FailureKind `json:"-"`
}

func failed(kind FailureKind, applied int, errs ...string) *MutationResult {
	return &MutationResult{Failure: kind, OperationsApplied: applied, Errors: errs}
}

// SchemaService validates batches against type definitions and records
// definitions and learned properties.
type SchemaService interface {
	// ValidateBatch returns one message per undefined type or missing
	// required property.
	ValidateBatch(ctx context.Context, ops []Operation) []string
	SaveDefinitions(ctx context.Context, defines []*DefineOperation) error
	Learn(ctx context.Context, ops []Operation) error
}

// ErrMissingEndpoint is returned when an edge CREATE matches no start or end node.
var ErrMissingEndpoint = errors.New("start or end node does not exist")

// Applier applies batches through one connected gateway.
type Applier struct {
	gw      age.Gateway
	schema  SchemaService
	log     *slog.Logger
	builder cypherBuilder
}

// NewApplier creates an applier over a connected gateway.
func NewApplier(gw age.Gateway, schema SchemaService, log *slog.Logger) *Applier {
	return &Applier{gw: gw, schema: schema, log: log}
}

type statement struct {
	op     Operation
	cypher string
}

// ApplyBatch validates, orders and applies ops in a single transaction.
// Nothing touches the database unless every operation and the schema check
// pass. Definitions are persisted after the graph commit.
func (a *Applier) ApplyBatch(ctx context.Context, ops []Operation) *MutationResult {
	for i, op := range ops {
		if op == nil {
			return failed(FailureValidation, 0, fmt.Sprintf("operation %d: nil operation", i+1))
		}
		if err := op.Validate(); err != nil {
			return failed(FailureValidation, 0, fmt.Sprintf("operation %d (%s): %v", i+1, Describe(op), err))
		}
	}

	if a.schema != nil {
		if errs := a.schema.ValidateBatch(ctx, ops); len(errs) > 0 {
			return failed(FailureSchema, 0, errs...)
		}
	}

	ordered := Order(ops)
	stmts := make([]statement, 0, len(ordered))
	var defines []*DefineOperation
	for _, op := range ordered {
		if d, ok := op.(*DefineOperation); ok {
			defines = append(defines, d)
			continue
		}
		cypher, err := a.builder.Statement(op)
		if err != nil {
			return failed(FailureValidation, 0, fmt.Sprintf("operation %s: %v", Describe(op), err))
		}
		stmts = append(stmts, statement{op: op, cypher: cypher})
	}

	if len(stmts) > 0 {
		err := a.gw.Transaction(ctx, func(s age.Session) error {
			for _, st := range stmts {
				if err := a.execute(ctx, s, st); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			a.log.Warn("batch rolled back", logger.Error(err))
			return failed(FailureExecution, 0, err.Error())
		}
	}

	result := &MutationResult{Success: true, OperationsApplied: len(ops), Errors: []string{}}

	if a.schema == nil {
		return result
	}
	if len(defines) > 0 {
		if err := a.schema.SaveDefinitions(ctx, defines); err != nil {
			a.log.Error("persist type definitions", logger.Error(err))
			result.Success = false
			result.Failure = FailurePersistence
			result.Errors = append(result.Errors, fmt.Sprintf("graph changes committed but type definitions were not saved: %v", err))
			return result
		}
	}
	if err := a.schema.Learn(ctx, ops); err != nil {
		a.log.Warn("schema learning failed", logger.Error(err))
	}
	return result
}

func (a *Applier) execute(ctx context.Context, s age.Session, st statement) error {
	res, err := s.ExecuteCypher(ctx, st.cypher)
	if err != nil {
		cause := err
		var qe *age.QueryError
		if errors.As(err, &qe) {
			cause = qe.Err
		}
		return fmt.Errorf("operation %s failed: %w", Describe(st.op), cause)
	}
	if _, isEdge := st.op.(*CreateEdgeOperation); isEdge && res.RowCount == 0 {
		return fmt.Errorf("operation %s failed: %w", Describe(st.op), ErrMissingEndpoint)
	}
	return nil
}
