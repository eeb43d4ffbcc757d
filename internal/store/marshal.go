package store

import (
	"fmt"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/workspace"
)

// marshalTree converts a workspace to canonical JSON TEXT for storage,
// returning the text and its hash.
func marshalTree(w *workspace.Workspace) (string, string, error) {
	data, err := w.Serialize()
	if err != nil {
		return "", "", fmt.Errorf("marshal tree: %w", err)
	}
	return string(data), ir.WorkspaceHash(data), nil
}

// emptyTree is the stored form of a project created without blocks.
func emptyTree() (string, string, error) {
	return marshalTree(workspace.New(catalog.New()))
}

// unmarshalTree rebuilds a workspace from stored TEXT against cat.
func unmarshalTree(cat *catalog.Catalog, tree string, opts ...workspace.Option) (*workspace.Workspace, error) {
	w, err := workspace.Deserialize(cat, []byte(tree), opts...)
	if err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	return w, nil
}
