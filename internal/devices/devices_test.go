package devices

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkgen/internal/sdkerr"
)

func TestDeviceIDFromFile(t *testing.T) {
	tests := map[string]string{
		"dev_kona4.gen":        "DEVICE_ID_KONA4",
		"dev_corvid44_12g.gen": "DEVICE_ID_CORVID44_12G",
		"dev_io4kplus.gen":     "DEVICE_ID_IO4KPLUS",
	}
	for file, want := range tests {
		assert.Equal(t, want, DeviceIDFromFile(file))
	}
}

func TestParse(t *testing.T) {
	def, err := Parse("dev_kona4.gen", `# Kona 4
NTV2_FBF_10BIT_YCBCR
// frame buffers
NTV2DeviceCanDo3GOut

NTV2DeviceGetNumVideoInputs	4	trailing text ignored
`)
	require.NoError(t, err)

	assert.Equal(t, "DEVICE_ID_KONA4", def.DeviceID)
	require.Len(t, def.Entries, 3)
	assert.Equal(t, Entry{Symbol: "NTV2_FBF_10BIT_YCBCR", Line: 2}, def.Entries[0])
	assert.Equal(t, Entry{Symbol: "NTV2DeviceGetNumVideoInputs", Value: "4", HasValue: true, Line: 6}, def.Entries[2])

	v, ok := def.Value("NTV2DeviceGetNumVideoInputs")
	assert.True(t, ok)
	assert.Equal(t, "4", v)
	_, ok = def.Value("NTV2DeviceCanDo3GOut")
	assert.False(t, ok)
}

func TestParseDuplicateKey(t *testing.T) {
	def, err := Parse("dev_kona4.gen", "X\nY\nX\n")
	require.Error(t, err)
	assert.Nil(t, def)
	assert.ErrorIs(t, err, sdkerr.ErrDuplicateDefinition)
	assert.Equal(t, 503, sdkerr.ExitCode(err))
	assert.Equal(t, "dev_kona4.gen:3: previously defined in line 1 'X'", err.Error())
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev_kona4.gen"), []byte("NTV2_FBF_ARGB\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev_corvid1.gen"), []byte("NTV2_FBF_ARGB\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored\n"), 0o644))

	defs, err := ParseDir(dir)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "DEVICE_ID_CORVID1", defs[0].DeviceID)
	assert.Equal(t, "DEVICE_ID_KONA4", defs[1].DeviceID)
}

func TestParseDirErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseDir(filepath.Join(dir, "missing"))
	assert.Equal(t, 404, sdkerr.ExitCode(err))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "dev_folder.gen"), 0o755))
	_, err = ParseDir(dir)
	assert.ErrorIs(t, err, sdkerr.ErrWrongKind)
	assert.Equal(t, 501, sdkerr.ExitCode(err))
}
