package indexes

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
)

// Kind is the AGE label kind.
type Kind string

const (
	KindVertex Kind = "vertex"
	KindEdge   Kind = "edge"
)

// Valid reports whether k is vertex or edge.
func (k Kind) Valid() bool {
	return k == KindVertex || k == KindEdge
}

// Ensurer creates missing indexes for a label and reports how many it created.
type Ensurer interface {
	EnsureLabelIndexes(ctx context.Context, label string, kind Kind) (int, error)
}

// AGE's parent label tables; indexes belong on the concrete labels.
var internalLabels = map[string]bool{
	"_ag_label_vertex": true,
	"_ag_label_edge":   true,
}

type indexSpec struct {
	purpose string
	method  string
	expr    string
}

var (
	vertexIndexes = []indexSpec{
		{purpose: "id", method: "btree", expr: "id"},
		{purpose: "props", method: "gin", expr: "properties"},
		{purpose: "prop_id", method: "btree", expr: `ag_catalog.agtype_access_operator(VARIADIC ARRAY[properties, '"id"'::ag_catalog.agtype])`},
	}
	edgeIndexes = append(append([]indexSpec{}, vertexIndexes...),
		indexSpec{purpose: "start_id", method: "btree", expr: "start_id"},
		indexSpec{purpose: "end_id", method: "btree", expr: "end_id"},
	)
)

func specsFor(kind Kind) []indexSpec {
	if kind == KindEdge {
		return edgeIndexes
	}
	return vertexIndexes
}

// IndexName returns idx_{graph}_{label}_{purpose} in lower case. Names longer
// than PostgreSQL's identifier limit are cut and suffixed with eight hex
// digits of their SHA-1 so they stay unique and stable.
func IndexName(graph, label, purpose string) string {
	name := strings.ToLower(fmt.Sprintf("idx_%s_%s_%s", graph, label, purpose))
	if len(name) <= age.MaxIdentifierLength {
		return name
	}
	sum := sha1.Sum([]byte(name))
	suffix := hex.EncodeToString(sum[:])[:8]
	return name[:age.MaxIdentifierLength-len(suffix)-1] + "_" + suffix
}
