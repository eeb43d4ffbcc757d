package workspace

import (
	"maps"
	"slices"

	"github.com/roach88/blockc/internal/ir"
)

// Check verifies the structural invariants of the workspace and returns
// every violation found, in arena order. A workspace built only through
// Insert, Attach, Detach, Delete and SetField always checks clean; Check
// guards trees that were deserialized or bound to a different catalog.
func (w *Workspace) Check() []error {
	var errs []error

	// Every live block has exactly one incoming link or is a root.
	incoming := make(map[string]Slot)
	claim := func(child string, from Slot) {
		if child == "" {
			return
		}
		c, ok := w.nodes[child]
		if !ok || c.deleted {
			errs = append(errs, newError(ErrCodeNotFound, child, "referenced from %s", from))
			return
		}
		if prev, dup := incoming[child]; dup {
			errs = append(errs, newError(ErrCodeInvalidTree, child, "linked from both %s and %s", prev, from))
			return
		}
		incoming[child] = from
	}
	for _, id := range w.top {
		claim(id, Top())
	}
	for _, id := range w.order {
		n := w.nodes[id]
		if n.deleted {
			continue
		}
		claim(n.inst.Next, NextOf(id))
		for _, name := range slices.Sorted(maps.Keys(n.inst.Inputs)) {
			claim(n.inst.Inputs[name], InputOf(id, name))
		}
	}

	for _, id := range w.order {
		n := w.nodes[id]
		if n.deleted {
			continue
		}
		t, err := w.catalog.Lookup(n.inst.Type)
		if err != nil {
			errs = append(errs, newError(ErrCodeUnknownType, id, "unknown block type %q", n.inst.Type))
			continue
		}
		if err := validateFields(t, n.inst.Fields); err != nil {
			errs = append(errs, newError(ErrCodeInvalidField, id, "%v", err))
		}
		from, ok := incoming[id]
		if !ok {
			errs = append(errs, newError(ErrCodeInvalidTree, id, "block is neither a root nor connected"))
			continue
		}
		if from != n.parent {
			errs = append(errs, newError(ErrCodeInvalidTree, id, "parent is %s but linked from %s", n.parent, from))
		}
		if err := w.checkConnection(id, t, from, false); err != nil {
			errs = append(errs, err)
		}
	}

	// With single parents, a cycle shows up as blocks unreachable from any root.
	reached := make(map[string]bool)
	for _, root := range w.top {
		w.walk(root, func(id string) { reached[id] = true })
	}
	for _, id := range w.order {
		if n := w.nodes[id]; !n.deleted && !reached[id] {
			if _, linked := incoming[id]; linked {
				errs = append(errs, newError(ErrCodeCycleDetected, id, "block is part of a cycle"))
			}
		}
	}
	return errs
}

// walk visits id and everything below it depth first, each block once.
func (w *Workspace) walk(id string, visit func(string)) {
	seen := make(map[string]bool)
	var rec func(string)
	rec = func(cur string) {
		n, ok := w.nodes[cur]
		if cur == "" || !ok || n.deleted || seen[cur] {
			return
		}
		seen[cur] = true
		visit(cur)
		for _, name := range slices.Sorted(maps.Keys(n.inst.Inputs)) {
			rec(n.inst.Inputs[name])
		}
		rec(n.inst.Next)
	}
	rec(id)
}

// Equal reports whether two workspaces hold the same live blocks with the
// same links and the same root order. Tombstones and catalogs are ignored.
func Equal(a, b *Workspace) bool {
	if !slices.Equal(a.top, b.top) || a.Len() != b.Len() {
		return false
	}
	for id, an := range a.nodes {
		if an.deleted {
			continue
		}
		bn, ok := b.nodes[id]
		if !ok || bn.deleted {
			return false
		}
		if !instanceEqual(an.inst, bn.inst) {
			return false
		}
	}
	return true
}

func instanceEqual(a, b Instance) bool {
	if a.ID != b.ID || a.Type != b.Type || a.Next != b.Next {
		return false
	}
	if len(a.Fields) != len(b.Fields) || len(a.Inputs) != len(b.Inputs) {
		return false
	}
	for k, v := range a.Fields {
		if !ir.Equal(v, b.Fields[k]) {
			return false
		}
	}
	for k, v := range a.Inputs {
		if b.Inputs[k] != v {
			return false
		}
	}
	return true
}
