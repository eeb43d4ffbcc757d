package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioFiles(t *testing.T) []string {
	t.Helper()
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	return files
}

// goldenScenarios have a committed program under testdata/scenarios/golden.
var goldenScenarios = map[string]bool{
	"blink_uno":           true,
	"buttons_microbit":    true,
	"unknown_device":      true,
	"idle_and_precedence": true,
	"custom_buzzer":       true,
}

const goldenDir = "testdata/scenarios/golden"

func TestScenarios(t *testing.T) {
	for _, path := range scenarioFiles(t) {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, s.Name, "scenario name matches its file")

			var result *Result
			if goldenScenarios[name] {
				result, err = RunWithGolden(t, s)
			} else {
				result, err = Run(context.Background(), s)
			}
			require.NoError(t, err)
			assert.True(t, result.Pass, "%s\n%s", strings.Join(result.Errors, "\n"), result.Source)
		})
	}
}

func TestScenarios_GoldenFilesCommitted(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(goldenDir, "*.golden"))
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(f), ".golden"))
	}
	var want []string
	for name := range goldenScenarios {
		want = append(want, name)
	}
	assert.ElementsMatch(t, want, names)

	for _, name := range want {
		assert.Equal(t, filepath.Join(goldenDir, name+".golden"),
			GoldenPath(filepath.Join("testdata", "scenarios", name+".yaml")))
	}
}

func TestScenarios_Deterministic(t *testing.T) {
	for _, path := range scenarioFiles(t) {
		s, err := LoadScenario(path)
		require.NoError(t, err)

		first, err := Run(context.Background(), s)
		require.NoError(t, err)
		second, err := Run(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, first.Source, second.Source, s.Name)
		assert.Equal(t, first.Hash, second.Hash, s.Name)
	}
}

func TestLoadScenario_ResolvesBlocksDir(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/custom_buzzer.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "blocks"), s.BlocksDir)
}

func TestParseScenario_Rejects(t *testing.T) {
	base := `
description: d
target: arduino
workspace: {blocks: []}
`
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", base + "assertions: [{type: valid}]", "name is required"},
		{"missing assertions", "name: x\n" + base, "assertions list is required"},
		{"unknown field", "name: x\n" + base + "assertion: []", "failed to parse YAML"},
		{"unknown assertion", "name: x\n" + base + "assertions: [{type: sparkle}]", `unknown assertion type "sparkle"`},
		{"contains without text", "name: x\n" + base + "assertions: [{type: contains}]", "text is required for contains"},
		{"short order", "name: x\n" + base + "assertions: [{type: order, texts: [a]}]", "at least two texts"},
		{"error without code", "name: x\n" + base + "assertions: [{type: error}]", "code is required"},
		{"negative idle", "name: x\nidle_delay_ms: -1\n" + base + "assertions: [{type: valid}]", "idle_delay_ms"},
		{"missing workspace", "name: x\ndescription: d\ntarget: arduino\nassertions: [{type: valid}]", "workspace is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: failing
description: assertions that do not hold
target: arduino
device: arduino_uno
workspace:
  blocks:
    - {type: on_start, next: led}
    - {id: led, type: set_output}
assertions:
  - {type: contains, text: "analogWrite"}
  - {type: not_contains, text: "digitalWrite"}
  - {type: order, texts: ["void loop() {", "void setup() {"]}
  - {type: count, text: "delay(10);", count: 2}
  - {type: warning, text: "orphan"}
  - {type: error, code: UNKNOWN_TARGET}
  - {type: valid}
  - {type: no_warnings}
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.Contains(t, result.Errors[0], `program containing "analogWrite"`)
	assert.Contains(t, result.Errors[1], "Assertion failed: not_contains")
	assert.Contains(t, result.Errors[2], `not found after "void loop() {"`)
	assert.Contains(t, result.Errors[3], "Actual: 1")
	assert.Contains(t, result.Errors[4], "warning containing")
	assert.Contains(t, result.Errors[5], "compiled successfully")
}

func TestRun_UnexpectedCompileError(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: broken
description: compile fails without an error assertion
target: cobol
workspace: {blocks: [{type: on_start}]}
assertions: [{type: contains, text: "x"}]
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "compile failed")
	assert.Equal(t, "UNKNOWN_TARGET", result.ErrorCode)
	assert.False(t, result.Valid)
}

func TestRun_BadWorkspaceIsExecutionError(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: bad
description: the tree references a missing type
target: arduino
workspace: {blocks: [{type: warp_drive}]}
assertions: [{type: valid}]
`))
	require.NoError(t, err)

	_, err = Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load workspace")
}

func TestGoldenFiles(t *testing.T) {
	dir := t.TempDir()
	scenarioFile := filepath.Join(dir, "blink.yaml")
	path := GoldenPath(scenarioFile)
	assert.Equal(t, filepath.Join(dir, "golden", "blink.golden"), path)

	result := &Result{Source: "void setup() {\n}\n"}
	require.NoError(t, UpdateGolden(path, result))

	match, err := CompareGolden(path, result)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = CompareGolden(path, &Result{Source: "changed"})
	require.NoError(t, err)
	assert.False(t, match)

	_, err = CompareGolden(filepath.Join(dir, "missing.golden"), result)
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "golden"))
	assert.NoError(t, statErr)
}
