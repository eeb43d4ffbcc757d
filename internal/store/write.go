package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/workspace"
)

// NewProject describes a project to create.
type NewProject struct {
	Name        string
	Description string
	Target      string
	Device      string
}

// Artifact is one generated program recorded alongside a save.
type Artifact struct {
	Source   string
	Target   string
	Device   string
	Errors   int
	Warnings int
}

// Create inserts a project. A nil workspace stores an empty tree.
func (s *Store) Create(ctx context.Context, np NewProject, w *workspace.Workspace) (*Project, error) {
	name := strings.TrimSpace(np.Name)
	if name == "" {
		return nil, fmt.Errorf("create project: name is required")
	}

	var tree, hash string
	var err error
	if w == nil {
		tree, hash, err = emptyTree()
	} else {
		w.Compact()
		tree, hash, err = marshalTree(w)
	}
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("create project: generate id: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects
		(id, name, description, target, device, tree, tree_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, name, np.Description, np.Target, np.Device, tree, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create project %q: %w", name, ErrDuplicateName)
		}
		return nil, fmt.Errorf("create project: %w", err)
	}

	return s.Get(ctx, id)
}

// Save stores w as the project's tree, compacting tombstones first, and
// bumps the revision. A non-nil artifact replaces the stored program and
// target/device and appends a build record for the new revision.
func (s *Store) Save(ctx context.Context, id string, w *workspace.Workspace, art *Artifact) (*Project, error) {
	w.Compact()
	tree, hash, err := marshalTree(w)
	if err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("save project: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var res sql.Result
	if art == nil {
		res, err = tx.ExecContext(ctx, `
			UPDATE projects SET tree = ?, tree_hash = ?, revision = revision + 1
			WHERE id = ?
		`, tree, hash, id)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE projects
			SET tree = ?, tree_hash = ?, source = ?, target = ?, device = ?, revision = revision + 1
			WHERE id = ?
		`, tree, hash, art.Source, art.Target, art.Device, id)
	}
	if err != nil {
		return nil, fmt.Errorf("save project: update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("save project: rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("save project %s: %w", id, ErrNotFound)
	}

	if art != nil {
		var revision int64
		if err := tx.QueryRowContext(ctx, `SELECT revision FROM projects WHERE id = ?`, id).Scan(&revision); err != nil {
			return nil, fmt.Errorf("save project: read revision: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO builds
			(project_id, revision, target, device, source_hash, size, errors, warnings)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, revision, art.Target, art.Device, ir.SourceHash(art.Source), len(art.Source), art.Errors, art.Warnings)
		if err != nil {
			return nil, fmt.Errorf("save project: record build: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("save project: commit: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes a project and its build records.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete project %s: %w", id, ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
