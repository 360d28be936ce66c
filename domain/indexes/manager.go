package indexes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

const (
	labelExistsSQL = `SELECT 1 FROM ag_catalog.ag_label l
		JOIN ag_catalog.ag_graph g ON l.graph = g.graphid
		WHERE g.name = $1 AND l.name = $2`

	listLabelsSQL = `SELECT l.name::text, l.kind::text FROM ag_catalog.ag_label l
		JOIN ag_catalog.ag_graph g ON l.graph = g.graphid
		WHERE g.name = $1
		ORDER BY l.name`

	indexExistsSQL = `SELECT 1 FROM pg_indexes WHERE schemaname = $1 AND indexname = $2`
)

// Manager creates the standard indexes on the label tables of one graph
// through a connected gateway.
type Manager struct {
	gw  age.Gateway
	log *slog.Logger
}

// NewManager returns a manager bound to gw's graph.
func NewManager(gw age.Gateway, log *slog.Logger) *Manager {
	return &Manager{gw: gw, log: log.With(logger.Scope("indexes"))}
}

// EnsureLabelIndexes creates the label table if needed and then every
// missing index for it. It returns the number of indexes created; a second
// call returns 0.
func (m *Manager) EnsureLabelIndexes(ctx context.Context, label string, kind Kind) (int, error) {
	graph := m.gw.GraphName()
	if !age.IsSafeIdentifier(graph) {
		return 0, fmt.Errorf("unsafe graph name %q", graph)
	}
	if !age.IsSafeIdentifier(label) {
		return 0, fmt.Errorf("unsafe label name %q", label)
	}
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown label kind %q", kind)
	}

	if err := m.ensureLabel(ctx, graph, label, kind); err != nil {
		return 0, err
	}

	created := 0
	for _, spec := range specsFor(kind) {
		name := IndexName(graph, label, spec.purpose)

		rows, err := m.gw.Query(ctx, indexExistsSQL, graph, name)
		if err != nil {
			return created, fmt.Errorf("check index %s: %w", name, err)
		}
		if len(rows) > 0 {
			continue
		}

		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s.%s USING %s (%s)",
			pq.QuoteIdentifier(name),
			pq.QuoteIdentifier(graph),
			pq.QuoteIdentifier(label),
			spec.method,
			spec.expr,
		)
		if err := m.gw.Exec(ctx, stmt); err != nil {
			indexErrorsTotal.WithLabelValues(string(kind)).Inc()
			return created, fmt.Errorf("create index %s: %w", name, err)
		}
		created++
		indexesCreatedTotal.WithLabelValues(string(kind)).Inc()
		m.log.Info("created index",
			slog.String("index", name),
			slog.String("label", label),
			slog.String("kind", string(kind)),
		)
	}
	return created, nil
}

func (m *Manager) ensureLabel(ctx context.Context, graph, label string, kind Kind) error {
	exists, err := m.labelExists(ctx, graph, label)
	if err != nil || exists {
		return err
	}

	fn := "ag_catalog.create_vlabel"
	if kind == KindEdge {
		fn = "ag_catalog.create_elabel"
	}
	if err := m.gw.Exec(ctx, fmt.Sprintf("SELECT %s($1, $2)", fn), graph, label); err != nil {
		// A concurrent writer may have created the label first.
		if exists, checkErr := m.labelExists(ctx, graph, label); checkErr == nil && exists {
			return nil
		}
		return fmt.Errorf("create label %s: %w", label, err)
	}
	m.log.Info("created label", slog.String("label", label), slog.String("kind", string(kind)))
	return nil
}

func (m *Manager) labelExists(ctx context.Context, graph, label string) (bool, error) {
	rows, err := m.gw.Query(ctx, labelExistsSQL, graph, label)
	if err != nil {
		return false, fmt.Errorf("check label %s: %w", label, err)
	}
	return len(rows) > 0, nil
}

// EnsureAllLabelsIndexed runs EnsureLabelIndexes for every label of the
// graph and returns the total created.
func (m *Manager) EnsureAllLabelsIndexed(ctx context.Context) (int, error) {
	rows, err := m.gw.Query(ctx, listLabelsSQL, m.gw.GraphName())
	if err != nil {
		return 0, fmt.Errorf("list labels: %w", err)
	}

	total := 0
	for _, row := range rows {
		name, kindCode := row[0], row[1]
		if internalLabels[name] {
			continue
		}
		kind := KindVertex
		if kindCode == "e" {
			kind = KindEdge
		}
		n, err := m.EnsureLabelIndexes(ctx, name, kind)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
