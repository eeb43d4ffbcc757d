package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/profile"
)

func blockIDs(blocks []BlockInfo) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return ids
}

func TestAvailableBlocks_CustomNeedsTargetCode(t *testing.T) {
	cat := catalog.Builtin()
	_, err := cat.RegisterDir(filepath.Join("..", "harness", "testdata", "scenarios", "blocks"))
	require.NoError(t, err)

	arduino := AvailableBlocks(cat, profile.TargetArduino)
	python := AvailableBlocks(cat, profile.TargetMicroPython)
	assert.Contains(t, blockIDs(arduino), "buzzer")
	assert.NotContains(t, blockIDs(python), "buzzer")
	assert.Len(t, arduino, len(python)+1)
	assert.Equal(t, "on_start", arduino[0].ID)
}

func TestAvailableBlocks_ValueOutput(t *testing.T) {
	for _, b := range AvailableBlocks(catalog.Builtin(), profile.TargetArduino) {
		if b.Shape == string(catalog.ShapeValue) {
			assert.NotEmpty(t, b.Output, b.ID)
		} else {
			assert.Empty(t, b.Output, b.ID)
		}
		assert.False(t, b.Custom, b.ID)
	}
}

func TestBlocksCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "blocks", "-t", "micropython", "-d", "microbit")
	require.NoError(t, err)
	assert.Contains(t, out, "Blocks for micropython/microbit (BBC micro:bit):")
	assert.Contains(t, out, "on_start")
}

func TestBlocksCommand_UnknownTarget(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--format", "json", "blocks", "-t", "cobol")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeUnknownTarget, decode(t, out).Error.Code)
}

func TestListDevices(t *testing.T) {
	devices, err := ListDevices(profile.Targets())
	require.NoError(t, err)
	require.NotEmpty(t, devices)

	seen := map[string]DeviceInfo{}
	for _, d := range devices {
		seen[d.Target+"/"+d.Device] = d
	}
	assert.Equal(t, "Arduino Uno", seen["arduino/arduino_uno"].Name)
	assert.Equal(t, ".ino", seen["arduino/arduino_uno"].Extension)
	assert.Equal(t, "BBC micro:bit", seen["micropython/microbit"].Name)
	assert.Equal(t, ".py", seen["micropython/microbit"].Extension)
}

func TestListDevices_UnknownTarget(t *testing.T) {
	_, err := ListDevices([]string{"cobol"})
	assert.ErrorIs(t, err, profile.ErrUnknownTarget)
}

func TestDevicesCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "devices", "arduino")
	require.NoError(t, err)
	assert.Contains(t, out, "arduino (.ino)")
	assert.Contains(t, out, "Arduino Uno")
	assert.NotContains(t, out, "micropython")

	_, err = execute(t, "devices", "cobol")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
