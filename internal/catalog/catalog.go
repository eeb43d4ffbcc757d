package catalog

// Catalog is a registry of block types keyed by id.
// Iteration follows registration order.
type Catalog struct {
	types map[string]*BlockType
	order []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{types: make(map[string]*BlockType)}
}

// Register adds a block type. It fails with ErrDuplicateType if the id is
// already registered and ErrInvalidType if the definition is inconsistent.
func (c *Catalog) Register(t BlockType) error {
	if _, exists := c.types[t.ID]; exists {
		return &Error{Code: ErrCodeDuplicateType, TypeID: t.ID}
	}
	if err := t.validate(); err != nil {
		return &Error{Code: ErrCodeInvalidType, TypeID: t.ID, Message: err.Error()}
	}
	def := t
	def.Fields = append([]FieldSpec(nil), t.Fields...)
	c.types[t.ID] = &def
	c.order = append(c.order, t.ID)
	return nil
}

// Lookup returns the block type with the given id or fails with ErrUnknownType.
// The returned type must be treated as read-only.
func (c *Catalog) Lookup(id string) (*BlockType, error) {
	t, ok := c.types[id]
	if !ok {
		return nil, &Error{Code: ErrCodeUnknownType, TypeID: id}
	}
	return t, nil
}

// Has reports whether id is registered.
func (c *Catalog) Has(id string) bool {
	_, ok := c.types[id]
	return ok
}

// Types returns all registered types in registration order.
func (c *Catalog) Types() []*BlockType {
	out := make([]*BlockType, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.types[id])
	}
	return out
}

// Len returns the number of registered types.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Clone returns an independent copy that can be extended without
// affecting the original.
func (c *Catalog) Clone() *Catalog {
	out := New()
	for _, id := range c.order {
		out.types[id] = c.types[id]
		out.order = append(out.order, id)
	}
	return out
}
