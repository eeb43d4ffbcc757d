package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/emitter"
	"github.com/roach88/blockc/internal/store"
	"github.com/roach88/blockc/internal/workspace"
)

// LoadError is a failure to load CLI inputs: block definitions, workspace
// files or the manifest.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// loadCatalog returns the builtin catalog plus the settings' custom block
// definitions.
func loadCatalog(s *Settings) (*catalog.Catalog, error) {
	cat := catalog.Builtin()
	if s.BlocksDir == "" {
		return cat, nil
	}
	if _, err := os.Stat(s.BlocksDir); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("blocks directory not found: %s", s.BlocksDir)}
	}
	if _, err := cat.RegisterDir(s.BlocksDir); err != nil {
		le := &LoadError{Code: ErrCodeBlockTypes, Message: err.Error()}
		var ce *catalog.CompileError
		if errors.As(err, &ce) {
			le.Message = fmt.Sprintf("%s: %s", ce.Field, ce.Message)
			le.Pos = ce.Pos
		}
		return nil, le
	}
	return cat, nil
}

// loadWorkspaceFile decodes a workspace tree. .yaml and .yml files use the
// YAML form; everything else is JSON.
func loadWorkspaceFile(cat *catalog.Catalog, path string, opts ...workspace.Option) (*workspace.Workspace, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("workspace file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	var w *workspace.Workspace
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		w, err = workspace.DeserializeYAML(cat, data, opts...)
	default:
		w, err = workspace.Deserialize(cat, data, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// errorCode maps an error onto the CLI's E-codes.
func errorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	var ee *emitter.Error
	if errors.As(err, &ee) {
		switch ee.Code {
		case emitter.ErrCodeUnknownTarget:
			return ErrCodeUnknownTarget
		case emitter.ErrCodeUnknownBlockType:
			return ErrCodeUnknownBlockType
		}
	}
	var we *workspace.Error
	if errors.As(err, &we) {
		return ErrCodeInvalidWorkspace
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeProjectNotFound
	case errors.Is(err, store.ErrDuplicateName):
		return ErrCodeDuplicateProject
	}
	return ErrCodeGeneric
}

// fail reports err through the formatter and returns the matching exit error.
func fail(f *OutputFormatter, exit int, err error) error {
	code := errorCode(err)
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(exit, code, err)
}
