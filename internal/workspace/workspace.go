package workspace

import (
	"fmt"
	"maps"
	"slices"
	"unicode/utf8"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/ir"
)

// Workspace owns every block instance of one program.
//
// Thread-safety: a Workspace is not safe for concurrent mutation. Callers
// that share one across goroutines must serialize access.
type Workspace struct {
	catalog *catalog.Catalog
	nodes   map[string]*node
	order   []string // arena order, tombstones included
	top     []string // roots in insertion order
	ids     IDGenerator
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithIDGenerator sets the generator used for blocks inserted without an id.
func WithIDGenerator(gen IDGenerator) Option {
	return func(w *Workspace) {
		w.ids = gen
	}
}

// New creates an empty workspace bound to a catalog.
func New(cat *catalog.Catalog, opts ...Option) *Workspace {
	w := &Workspace{
		catalog: cat,
		nodes:   make(map[string]*node),
		ids:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Catalog returns the catalog the workspace validates against.
func (w *Workspace) Catalog() *catalog.Catalog {
	return w.catalog
}

// NewBlock returns an unplaced instance of typeID with every literal field
// set to its default. The id is left empty for Insert to generate.
func (w *Workspace) NewBlock(typeID string) (Instance, error) {
	t, err := w.catalog.Lookup(typeID)
	if err != nil {
		return Instance{}, newError(ErrCodeUnknownType, "", "unknown block type %q", typeID)
	}
	inst := Instance{Type: typeID}
	for _, f := range t.Fields {
		if f.IsInput() || f.Default == nil {
			continue
		}
		if inst.Fields == nil {
			inst.Fields = make(map[string]ir.IRValue)
		}
		inst.Fields[f.Name] = f.Default
	}
	return inst, nil
}

// Insert places a new block into slot and returns its id.
//
// inst.Type must be registered, inst.Fields must satisfy the field schema,
// and inst.Next and inst.Inputs must be empty: links are made through
// slots. An empty inst.ID is generated. Inserting into an occupied next or
// statement slot splices the block in front of the old occupant.
//
// On error the workspace is unchanged.
func (w *Workspace) Insert(inst Instance, slot Slot) (string, error) {
	if !utf8.ValidString(inst.ID) {
		return "", newError(ErrCodeInvalidTree, "", "block id is not valid UTF-8")
	}
	inst = inst.normalized()
	t, err := w.catalog.Lookup(inst.Type)
	if err != nil {
		return "", newError(ErrCodeUnknownType, inst.ID, "unknown block type %q", inst.Type)
	}
	if inst.Next != "" || len(inst.Inputs) > 0 {
		return "", newError(ErrCodeInvalidTree, inst.ID, "new blocks cannot carry links")
	}
	if err := validateFields(t, inst.Fields); err != nil {
		return "", newError(ErrCodeInvalidField, inst.ID, "%v", err)
	}

	id := inst.ID
	if id == "" {
		id = w.ids.Generate()
	}
	if _, exists := w.nodes[id]; exists {
		return "", newError(ErrCodeDuplicateID, id, "id already in use")
	}
	if err := w.checkSlot(id, t, slot); err != nil {
		return "", err
	}

	n := &node{inst: inst.clone()}
	n.inst.ID = id
	w.nodes[id] = n
	w.order = append(w.order, id)
	w.place(id, slot)
	return id, nil
}

// Attach moves an existing block, together with everything below it and
// the rest of its chain, into slot.
//
// Fails with ErrCycleDetected if slot belongs to the moved subtree. On
// error the workspace is unchanged.
func (w *Workspace) Attach(id string, slot Slot) error {
	n, err := w.live(id)
	if err != nil {
		return err
	}
	if slot.Kind == SlotTop && n.parent.Kind == SlotTop {
		return nil
	}
	if slot.Kind != SlotTop && w.inSubtree(id, slot.Parent) {
		return newError(ErrCodeCycleDetected, id, "cannot attach into its own subtree at %s", slot)
	}
	t, err := w.catalog.Lookup(n.inst.Type)
	if err != nil {
		return newError(ErrCodeUnknownType, id, "unknown block type %q", n.inst.Type)
	}
	if err := w.checkSlot(id, t, slot); err != nil {
		return err
	}
	w.unlink(id)
	w.place(id, slot)
	return nil
}

// Detach unplugs a block, together with the rest of its chain, and leaves
// it at the top level. Detaching a root is a no-op.
func (w *Workspace) Detach(id string) error {
	n, err := w.live(id)
	if err != nil {
		return err
	}
	if n.parent.Kind == SlotTop {
		return nil
	}
	w.unlink(id)
	w.place(id, Top())
	return nil
}

// Delete tombstones a block.
//
// The chain is healed: the block's next takes its place. Blocks plugged
// into its inputs are not deleted; they become top-level orphans in input
// schema order. The id stays reserved until Compact.
func (w *Workspace) Delete(id string) error {
	n, err := w.live(id)
	if err != nil {
		return err
	}

	next := n.inst.Next
	parent := n.parent
	t, _ := w.catalog.Lookup(n.inst.Type)

	if parent.Kind == SlotTop {
		i := slices.Index(w.top, id)
		if next != "" {
			w.top[i] = next
		} else {
			w.top = slices.Delete(w.top, i, i+1)
		}
	} else {
		w.setLink(parent, next)
	}
	if next != "" {
		w.nodes[next].parent = parent
	}

	for _, name := range w.inputOrder(t, n.inst.Inputs) {
		child := n.inst.Inputs[name]
		w.nodes[child].parent = Top()
		w.top = append(w.top, child)
	}

	n.deleted = true
	n.inst.Next = ""
	n.inst.Inputs = map[string]string{}
	n.parent = Slot{}
	return nil
}

// Compact reclaims tombstoned entries and returns how many were removed.
func (w *Workspace) Compact() int {
	removed := 0
	w.order = slices.DeleteFunc(w.order, func(id string) bool {
		if w.nodes[id].deleted {
			delete(w.nodes, id)
			removed++
			return true
		}
		return false
	})
	return removed
}

// Tombstones returns the number of deleted entries awaiting Compact.
func (w *Workspace) Tombstones() int {
	return len(w.order) - w.Len()
}

// SetField sets a literal field after validating it against the schema.
func (w *Workspace) SetField(id, name string, v ir.IRValue) error {
	n, err := w.live(id)
	if err != nil {
		return err
	}
	t, err := w.catalog.Lookup(n.inst.Type)
	if err != nil {
		return newError(ErrCodeUnknownType, id, "unknown block type %q", n.inst.Type)
	}
	v = ir.Normalize(v)
	if err := validateFields(t, map[string]ir.IRValue{name: v}); err != nil {
		return newError(ErrCodeInvalidField, id, "%v", err)
	}
	n.inst.Fields[name] = v
	return nil
}

// Get returns a live block. The instance must be treated as read-only.
func (w *Workspace) Get(id string) (*Instance, error) {
	n, err := w.live(id)
	if err != nil {
		return nil, err
	}
	return &n.inst, nil
}

// Parent returns the slot a live block is connected to.
func (w *Workspace) Parent(id string) (Slot, error) {
	n, err := w.live(id)
	if err != nil {
		return Slot{}, err
	}
	return n.parent, nil
}

// TopLevel returns the root ids in insertion order.
func (w *Workspace) TopLevel() []string {
	return slices.Clone(w.top)
}

// Chain returns id followed by every block along its next links.
func (w *Workspace) Chain(id string) []string {
	var out []string
	for cur := id; cur != ""; {
		n, ok := w.nodes[cur]
		if !ok || n.deleted {
			break
		}
		out = append(out, cur)
		cur = n.inst.Next
	}
	return out
}

// Orphans returns the roots that are not event blocks. They are kept but
// never emitted.
func (w *Workspace) Orphans() []string {
	var out []string
	for _, id := range w.top {
		t, err := w.catalog.Lookup(w.nodes[id].inst.Type)
		if err != nil || t.Shape != catalog.ShapeEvent {
			out = append(out, id)
		}
	}
	return out
}

// IDs returns every live id in arena order.
func (w *Workspace) IDs() []string {
	out := make([]string, 0, len(w.order))
	for _, id := range w.order {
		if !w.nodes[id].deleted {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of live blocks.
func (w *Workspace) Len() int {
	count := 0
	for _, n := range w.nodes {
		if !n.deleted {
			count++
		}
	}
	return count
}

func (w *Workspace) live(id string) (*node, error) {
	n, ok := w.nodes[id]
	if !ok || n.deleted {
		return nil, newError(ErrCodeNotFound, id, "no such block")
	}
	return n, nil
}

// checkSlot validates placing block id of type t into slot without mutating.
func (w *Workspace) checkSlot(id string, t *catalog.BlockType, slot Slot) error {
	return w.checkConnection(id, t, slot, true)
}

// checkConnection applies the shape and kind rules of slot. With occupancy
// set, a value input already holding another block is rejected.
func (w *Workspace) checkConnection(id string, t *catalog.BlockType, slot Slot, occupancy bool) error {
	if slot.Kind == SlotTop {
		return nil
	}
	if t.Shape == catalog.ShapeEvent {
		return newError(ErrCodeIncompatibleConnection, id, "event block %s must stay at the top level", t.ID)
	}
	if slot.Parent == id {
		return newError(ErrCodeCycleDetected, id, "cannot attach a block to itself")
	}

	parent, err := w.live(slot.Parent)
	if err != nil {
		return err
	}
	pt, err := w.catalog.Lookup(parent.inst.Type)
	if err != nil {
		return newError(ErrCodeUnknownType, slot.Parent, "unknown block type %q", parent.inst.Type)
	}

	switch slot.Kind {
	case SlotNext:
		if !pt.HasNext() {
			return newError(ErrCodeIncompatibleConnection, id, "%s has no next connection", pt.ID)
		}
		if t.Shape != catalog.ShapeStatement {
			return newError(ErrCodeIncompatibleConnection, id, "only statement blocks chain, got %s block %s", t.Shape, t.ID)
		}
	case SlotInput:
		f, ok := pt.Field(slot.Input)
		if !ok || !f.IsInput() {
			return newError(ErrCodeIncompatibleConnection, id, "%s has no input %q", pt.ID, slot.Input)
		}
		if f.Kind == catalog.FieldStatementInput {
			if t.Shape != catalog.ShapeStatement {
				return newError(ErrCodeIncompatibleConnection, id, "%s.%s takes statements, got %s block %s", pt.ID, f.Name, t.Shape, t.ID)
			}
			return nil
		}
		if t.Shape != catalog.ShapeValue {
			return newError(ErrCodeIncompatibleConnection, id, "%s.%s takes a value, got %s block %s", pt.ID, f.Name, t.Shape, t.ID)
		}
		if !f.Check.Accepts(t.Output) {
			return newError(ErrCodeIncompatibleConnection, id, "%s.%s expects %s, %s produces %s", pt.ID, f.Name, f.Check, t.ID, t.Output)
		}
		if !occupancy {
			return nil
		}
		if occupant := parent.inst.Inputs[f.Name]; occupant != "" && occupant != id {
			return newError(ErrCodeIncompatibleConnection, id, "%s.%s is occupied by %s", pt.ID, f.Name, occupant)
		}
	default:
		return newError(ErrCodeIncompatibleConnection, id, "invalid slot %s", slot)
	}
	return nil
}

// place links a detached block into a slot already checked by checkSlot.
func (w *Workspace) place(id string, slot Slot) {
	n := w.nodes[id]
	n.parent = slot
	if slot.Kind == SlotTop {
		w.top = append(w.top, id)
		return
	}
	old := w.link(slot)
	w.setLink(slot, id)
	if old == "" || old == id {
		return
	}
	// Splice: the previous occupant continues after the inserted chain.
	tail := id
	for w.nodes[tail].inst.Next != "" {
		tail = w.nodes[tail].inst.Next
	}
	w.nodes[tail].inst.Next = old
	w.nodes[old].parent = NextOf(tail)
}

// unlink disconnects a block from its parent slot, keeping its chain.
func (w *Workspace) unlink(id string) {
	n := w.nodes[id]
	if n.parent.Kind == SlotTop {
		w.top = slices.DeleteFunc(w.top, func(s string) bool { return s == id })
	} else {
		w.setLink(n.parent, "")
	}
	n.parent = Slot{}
}

func (w *Workspace) link(slot Slot) string {
	p := w.nodes[slot.Parent]
	if slot.Kind == SlotNext {
		return p.inst.Next
	}
	return p.inst.Inputs[slot.Input]
}

func (w *Workspace) setLink(slot Slot, id string) {
	p := w.nodes[slot.Parent]
	switch {
	case slot.Kind == SlotNext:
		p.inst.Next = id
	case id == "":
		delete(p.inst.Inputs, slot.Input)
	default:
		p.inst.Inputs[slot.Input] = id
	}
}

// inSubtree reports whether target is root or reachable from it through
// next and input links.
func (w *Workspace) inSubtree(root, target string) bool {
	stack := []string{root}
	seen := make(map[string]bool)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		if cur == "" || seen[cur] {
			continue
		}
		seen[cur] = true
		n, ok := w.nodes[cur]
		if !ok {
			continue
		}
		stack = append(stack, n.inst.Next)
		for _, child := range n.inst.Inputs {
			stack = append(stack, child)
		}
	}
	return false
}

// inputOrder returns the occupied input names, in schema order when the
// type is known and sorted otherwise.
func (w *Workspace) inputOrder(t *catalog.BlockType, inputs map[string]string) []string {
	var out []string
	if t != nil {
		for _, f := range t.Fields {
			if f.IsInput() && inputs[f.Name] != "" {
				out = append(out, f.Name)
			}
		}
		return out
	}
	for name := range inputs {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func validateFields(t *catalog.BlockType, fields map[string]ir.IRValue) error {
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		v := fields[name]
		f, ok := t.Field(name)
		if !ok {
			return fmt.Errorf("%s has no field %q", t.ID, name)
		}
		if f.IsInput() {
			return fmt.Errorf("%s.%s is an input, connect a block instead", t.ID, name)
		}
		if err := f.Validate(v); err != nil {
			return err
		}
	}
	return nil
}
