package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// projectDB isolates the test and returns a database path inside it.
func projectDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(isolate(t), "projects.db")
}

func TestProject_Lifecycle(t *testing.T) {
	blink := fixture(t, "blink.json")
	db := projectDB(t)

	out, err := execute(t, "project", "new", "rover", "--db", db, "-d", "arduino_uno", "--description", "first bot")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project rover")
	assert.Contains(t, out, "for arduino/arduino_uno")

	out, err = execute(t, "project", "save", "rover", blink, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved rover revision 1")
	assert.Contains(t, out, "built for arduino/arduino_uno")

	out, err = execute(t, "project", "load", "rover", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, `"type":"set_output"`)
	assert.Contains(t, out, `"version":"1"`)

	out, err = execute(t, "project", "load", "rover", "--source", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "for arduino/arduino_uno (Arduino Uno)")
	assert.Contains(t, out, "bc_digital_write(13, HIGH);")

	out, err = execute(t, "project", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "rover")
	assert.Contains(t, out, "arduino/arduino_uno")

	out, err = execute(t, "project", "builds", "rover", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "REV")
	assert.Contains(t, out, "arduino/arduino_uno")

	out, err = execute(t, "project", "delete", "rover", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted rover")

	out, err = execute(t, "project", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No projects")
}

func TestProject_SaveJSONAndRetarget(t *testing.T) {
	blink := fixture(t, "blink.json")
	db := projectDB(t)

	_, err := execute(t, "project", "new", "rover", "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "--format", "json", "project", "save", "rover", blink, "--db", db, "-t", "micropython", "-d", "pico")
	require.NoError(t, err)
	data := decode(t, out).Data.(map[string]any)
	assert.Equal(t, true, data["built"])
	assert.Equal(t, float64(0), data["errors"])
	project := data["project"].(map[string]any)
	assert.Equal(t, "micropython", project["target"])
	assert.Equal(t, "pico", project["device"])
	assert.Equal(t, float64(1), project["revision"])

	out, err = execute(t, "--format", "json", "project", "builds", "rover", "--db", db)
	require.NoError(t, err)
	builds := decode(t, out).Data.([]any)
	require.Len(t, builds, 1)
	assert.Equal(t, "micropython", builds[0].(map[string]any)["target"])
}

func TestProject_SaveNoBuild(t *testing.T) {
	blink := fixture(t, "blink.json")
	db := projectDB(t)

	_, err := execute(t, "project", "new", "rover", "--db", db)
	require.NoError(t, err)
	_, err = execute(t, "project", "save", "rover", blink, "--db", db, "--no-build")
	require.NoError(t, err)

	out, err := execute(t, "project", "builds", "rover", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No builds for rover")

	out, err = execute(t, "project", "load", "rover", "--source", "--db", db)
	require.Error(t, err)
	assert.Contains(t, out, "has no build yet")
}

func TestProject_NewFromFile(t *testing.T) {
	blink := fixture(t, "blink.yaml")
	db := projectDB(t)

	_, err := execute(t, "project", "new", "rover", "--db", db, "--from", blink)
	require.NoError(t, err)

	dest := filepath.Join(filepath.Dir(db), "tree.json")
	out, err := execute(t, "project", "load", "rover", "--db", db, "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"start"`)
}

func TestProject_Errors(t *testing.T) {
	blink := fixture(t, "blink.json")
	db := projectDB(t)

	_, err := execute(t, "project", "new", "rover", "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "--format", "json", "project", "new", "rover", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, ErrCodeDuplicateProject, decode(t, out).Error.Code)

	out, err = execute(t, "--format", "json", "project", "save", "ghost", blink, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ErrCodeProjectNotFound, decode(t, out).Error.Code)

	out, err = execute(t, "--format", "json", "project", "load", "ghost", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ErrCodeProjectNotFound, decode(t, out).Error.Code)

	out, err = execute(t, "--format", "json", "project", "save", "rover", blink, "--db", db, "-t", "cobol")
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownTarget, decode(t, out).Error.Code)
}
