package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/ir"
)

// Serialize returns the canonical JSON tree form of the live blocks.
//
// The form is
//
//	{"blocks":[{"fields":{},"id":"","inputs":{},"next":"","type":""}],"top":[],"version":"1"}
//
// with blocks in arena order and empty fields, inputs and next omitted.
// Tombstones are not serialized. Identical workspaces serialize to
// identical bytes.
func (w *Workspace) Serialize() ([]byte, error) {
	blocks := make([]any, 0, len(w.order))
	for _, id := range w.order {
		n := w.nodes[id]
		if n.deleted {
			continue
		}
		rec := map[string]any{
			"id":   n.inst.ID,
			"type": n.inst.Type,
		}
		if len(n.inst.Fields) > 0 {
			rec["fields"] = ir.IRObject(maps.Clone(n.inst.Fields))
		}
		if len(n.inst.Inputs) > 0 {
			inputs := make(map[string]any, len(n.inst.Inputs))
			for k, v := range n.inst.Inputs {
				inputs[k] = v
			}
			rec["inputs"] = inputs
		}
		if n.inst.Next != "" {
			rec["next"] = n.inst.Next
		}
		blocks = append(blocks, rec)
	}
	top := make([]any, len(w.top))
	for i, id := range w.top {
		top[i] = id
	}
	return ir.MarshalCanonical(map[string]any{
		"version": ir.TreeVersion,
		"blocks":  blocks,
		"top":     top,
	})
}

// Hash returns the domain-separated hash of the serialized tree.
func (w *Workspace) Hash() (string, error) {
	data, err := w.Serialize()
	if err != nil {
		return "", err
	}
	return ir.WorkspaceHash(data), nil
}

// Deserialize rebuilds a workspace from its JSON tree form and checks it
// against cat. Every violation is reported, joined.
func Deserialize(cat *catalog.Catalog, data []byte, opts ...Option) (*Workspace, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	return fromTree(cat, raw, opts)
}

// DeserializeYAML accepts the same tree in YAML. The version and top keys
// may be omitted; roots are then the unlinked blocks in listed order.
func DeserializeYAML(cat *catalog.Catalog, data []byte, opts ...Option) (*Workspace, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	return fromTree(cat, raw, opts)
}

// FromTree rebuilds a workspace from an already decoded tree, such as the
// workspace key of a YAML scenario.
func FromTree(cat *catalog.Catalog, raw any, opts ...Option) (*Workspace, error) {
	return fromTree(cat, raw, opts)
}

func fromTree(cat *catalog.Catalog, raw any, opts []Option) (*Workspace, error) {
	root, ok := raw.(map[string]any)
	if !ok {
		return nil, newError(ErrCodeInvalidTree, "", "tree must be an object, got %T", raw)
	}
	for key := range root {
		switch key {
		case "version", "blocks", "top":
		default:
			return nil, newError(ErrCodeInvalidTree, "", "unknown key %q", key)
		}
	}
	if v, ok := root["version"]; ok && v != ir.TreeVersion {
		return nil, newError(ErrCodeInvalidTree, "", "unsupported tree version %v", v)
	}

	w := New(cat, opts...)
	list, ok := root["blocks"].([]any)
	if !ok && root["blocks"] != nil {
		return nil, newError(ErrCodeInvalidTree, "", "blocks must be a list")
	}
	for i, elem := range list {
		inst, err := decodeInstance(elem)
		if err != nil {
			return nil, fmt.Errorf("blocks[%d]: %w", i, err)
		}
		if inst.ID == "" {
			inst.ID = w.ids.Generate()
		}
		if _, dup := w.nodes[inst.ID]; dup {
			return nil, newError(ErrCodeDuplicateID, inst.ID, "id listed twice")
		}
		w.nodes[inst.ID] = &node{inst: inst}
		w.order = append(w.order, inst.ID)
	}

	// Parents come from links; the first claim wins and Check reports the rest.
	linked := make(map[string]bool)
	for _, id := range w.order {
		n := w.nodes[id]
		adopt := func(child string, from Slot) {
			if c, ok := w.nodes[child]; ok && !linked[child] {
				c.parent = from
				linked[child] = true
			}
		}
		if n.inst.Next != "" {
			adopt(n.inst.Next, NextOf(id))
		}
		for _, name := range slices.Sorted(maps.Keys(n.inst.Inputs)) {
			adopt(n.inst.Inputs[name], InputOf(id, name))
		}
	}

	if topRaw, ok := root["top"]; ok {
		ids, ok := topRaw.([]any)
		if !ok {
			return nil, newError(ErrCodeInvalidTree, "", "top must be a list of ids")
		}
		for _, elem := range ids {
			id, ok := elem.(string)
			if !ok {
				return nil, newError(ErrCodeInvalidTree, "", "top must be a list of ids")
			}
			id = norm.NFC.String(id)
			w.top = append(w.top, id)
			if n, ok := w.nodes[id]; ok && !linked[id] {
				n.parent = Top()
			}
		}
	} else {
		for _, id := range w.order {
			if !linked[id] {
				w.top = append(w.top, id)
				w.nodes[id].parent = Top()
			}
		}
	}

	if errs := w.Check(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return w, nil
}

func decodeInstance(raw any) (Instance, error) {
	rec, ok := raw.(map[string]any)
	if !ok {
		return Instance{}, newError(ErrCodeInvalidTree, "", "block must be an object, got %T", raw)
	}
	inst := Instance{Fields: map[string]ir.IRValue{}, Inputs: map[string]string{}}
	for key, val := range rec {
		switch key {
		case "id", "type", "next":
			s, ok := val.(string)
			if !ok {
				return Instance{}, newError(ErrCodeInvalidTree, "", "%s must be a string", key)
			}
			switch key {
			case "id":
				inst.ID = s
			case "type":
				inst.Type = s
			default:
				inst.Next = s
			}
		case "fields":
			m, ok := val.(map[string]any)
			if !ok {
				return Instance{}, newError(ErrCodeInvalidTree, inst.ID, "fields must be an object")
			}
			for name, fv := range m {
				v, err := ir.FromGo(fv)
				if err != nil {
					return Instance{}, newError(ErrCodeInvalidField, inst.ID, "field %s: %v", name, err)
				}
				inst.Fields[name] = v
			}
		case "inputs":
			m, ok := val.(map[string]any)
			if !ok {
				return Instance{}, newError(ErrCodeInvalidTree, inst.ID, "inputs must be an object")
			}
			for name, iv := range m {
				s, ok := iv.(string)
				if !ok {
					return Instance{}, newError(ErrCodeInvalidTree, inst.ID, "input %s must be a block id", name)
				}
				if s != "" {
					inst.Inputs[name] = s
				}
			}
		default:
			return Instance{}, newError(ErrCodeInvalidTree, "", "unknown block key %q", key)
		}
	}
	if inst.Type == "" {
		return Instance{}, newError(ErrCodeInvalidTree, inst.ID, "type is required")
	}
	return inst.normalized(), nil
}
