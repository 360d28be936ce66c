package mutations

import "slices"

// Phase is the position of an operation kind in the apply order.
type Phase int

const (
	PhaseDefine Phase = iota
	PhaseDeleteEdge
	PhaseDeleteNode
	PhaseCreateNode
	PhaseCreateEdge
	PhaseUpdateNode
	PhaseUpdateEdge
)

// PhaseOf returns the phase an operation runs in.
func PhaseOf(op Operation) Phase {
	switch op.Op() {
	case OpDefine:
		return PhaseDefine
	case OpDelete:
		if op.Entity() == EntityEdge {
			return PhaseDeleteEdge
		}
		return PhaseDeleteNode
	case OpCreate:
		if op.Entity() == EntityEdge {
			return PhaseCreateEdge
		}
		return PhaseCreateNode
	default:
		if op.Entity() == EntityEdge {
			return PhaseUpdateEdge
		}
		return PhaseUpdateNode
	}
}

// Order returns ops sorted into apply phases: definitions, edge deletes,
// node deletes, node creates, edge creates, node updates, edge updates.
// Submission order is kept within a phase. ops is not modified.
func Order(ops []Operation) []Operation {
	out := slices.Clone(ops)
	slices.SortStableFunc(out, func(a, b Operation) int {
		return int(PhaseOf(a)) - int(PhaseOf(b))
	})
	return out
}
