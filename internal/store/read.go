package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/workspace"
)

// Project is a stored project row.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Target      string `json:"target"`
	Device      string `json:"device"`
	Tree        string `json:"-"`
	TreeHash    string `json:"tree_hash"`
	Source      string `json:"-"`
	Revision    int64  `json:"revision"`
}

// Build is one recorded artifact. Seq orders builds by insertion.
type Build struct {
	Seq        int64  `json:"seq"`
	ProjectID  string `json:"project_id"`
	Revision   int64  `json:"revision"`
	Target     string `json:"target"`
	Device     string `json:"device"`
	SourceHash string `json:"source_hash"`
	Size       int    `json:"size"`
	Errors     int    `json:"errors"`
	Warnings   int    `json:"warnings"`
}

const projectColumns = `id, name, description, target, device, tree, tree_hash, source, revision`

// Get returns the project with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// GetByName returns the project with the given name.
func (s *Store) GetByName(ctx context.Context, name string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE name = ?`, name)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// Resolve looks a project up by id, then by name.
func (s *Store) Resolve(ctx context.Context, ref string) (*Project, error) {
	p, err := s.Get(ctx, ref)
	if errors.Is(err, ErrNotFound) {
		return s.GetByName(ctx, ref)
	}
	return p, err
}

// Load resolves ref and rebuilds its workspace against cat.
func (s *Store) Load(ctx context.Context, cat *catalog.Catalog, ref string, opts ...workspace.Option) (*Project, *workspace.Workspace, error) {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	w, err := unmarshalTree(cat, p.Tree, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("load project %s: %w", p.ID, err)
	}
	return p, w, nil
}

// List returns every project ordered by name then id.
// Returns an empty slice (not nil) if there are none.
func (s *Store) List(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		ORDER BY name COLLATE BINARY ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// Builds returns a project's build records in insertion order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) Builds(ctx context.Context, projectID string) ([]Build, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, project_id, revision, target, device, source_hash, size, errors, warnings
		FROM builds
		WHERE project_id = ?
		ORDER BY seq ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		var b Build
		if err := rows.Scan(&b.Seq, &b.ProjectID, &b.Revision, &b.Target, &b.Device,
			&b.SourceHash, &b.Size, &b.Errors, &b.Warnings); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Target, &p.Device,
		&p.Tree, &p.TreeHash, &p.Source, &p.Revision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}
