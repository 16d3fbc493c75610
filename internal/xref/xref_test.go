package xref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkgen/internal/devices"
	"sdkgen/internal/logging"
	"sdkgen/internal/registry"
	"sdkgen/internal/sdkerr"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	add := func(c registry.Category, names ...string) {
		s := registry.NewSet(c)
		for _, n := range names {
			s.Add(registry.Symbol{Name: n})
		}
		require.NoError(t, reg.Add(s))
	}
	add(registry.DeviceID, "DEVICE_ID_D1", "DEVICE_ID_D2", registry.NotFoundDevice)
	add(registry.VideoFormat, "NTV2_FORMAT_A", "NTV2_FORMAT_B", "NTV2_FORMAT_C")
	add(registry.PixelFormat, "NTV2_FBF_ARGB", "NTV2_FBF_RGBA")
	add(registry.CanDo, "NTV2DeviceCanDo3GOut")
	add(registry.GetNum, "NTV2DeviceGetNumVideoInputs")
	return reg
}

func parse(t *testing.T, name, text string) *devices.Definition {
	t.Helper()
	def, err := devices.Parse(name, text)
	require.NoError(t, err)
	return def
}

func TestBuildVideoFormatExample(t *testing.T) {
	reg := testRegistry(t)
	defs := []*devices.Definition{
		parse(t, "dev_d1.gen", "NTV2_FORMAT_A\n"),
		parse(t, "dev_d2.gen", "NTV2_FORMAT_B\nNTV2_FORMAT_C\n"),
	}

	ix, err := Build(reg, defs, &logging.Warnings{Logger: logging.Discard()})
	require.NoError(t, err)

	want := map[string]map[string]bool{
		"DEVICE_ID_D1": {"NTV2_FORMAT_A": true},
		"DEVICE_ID_D2": {"NTV2_FORMAT_B": true, "NTV2_FORMAT_C": true},
	}
	for _, dev := range []string{"DEVICE_ID_D1", "DEVICE_ID_D2", registry.NotFoundDevice} {
		for _, vf := range reg.Set(registry.VideoFormat).Names() {
			assert.Equal(t, want[dev][vf], ix.Supports(registry.VideoFormat, vf, dev), "%s/%s", dev, vf)
		}
	}
}

func TestBuildRecordsValuesAndReferences(t *testing.T) {
	reg := testRegistry(t)
	defs := []*devices.Definition{
		parse(t, "dev_d1.gen", "NTV2DeviceGetNumVideoInputs 4\nNTV2DeviceCanDo3GOut\n"),
		parse(t, "dev_d2.gen", "NTV2DeviceGetNumVideoInputs 8\nNTV2_FBF_ARGB\n"),
	}

	ix, err := Build(reg, defs, nil)
	require.NoError(t, err)

	v, ok := ix.Value("NTV2DeviceGetNumVideoInputs", "DEVICE_ID_D2")
	assert.True(t, ok)
	assert.Equal(t, "8", v)
	assert.Equal(t, "0", ix.Default("NTV2DeviceGetNumVideoInputs"))
	assert.Equal(t, []string{"DEVICE_ID_D1"}, ix.Supporters(registry.CanDo, "NTV2DeviceCanDo3GOut"))

	assert.Equal(t, []string{"NTV2_FBF_RGBA"}, ix.Unused(registry.PixelFormat))
	assert.Equal(t, []string{"NTV2_FORMAT_A", "NTV2_FORMAT_B", "NTV2_FORMAT_C"}, ix.Unused(registry.VideoFormat))
	assert.Empty(t, ix.Unused(registry.GetNum))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		defs []string // file name, content pairs
		code int
	}{
		{"missing coverage", []string{"dev_d1.gen", "NTV2_FORMAT_A\n"}, sdkerr.CodeMissingCoverage},
		{"unknown device", []string{"dev_d1.gen", "", "dev_d2.gen", "", "dev_d3.gen", ""}, sdkerr.CodeUnrecognizedDevice},
		{"misspelled format", []string{"dev_d1.gen", "NTV2_FORMAT_Z\n", "dev_d2.gen", ""}, sdkerr.CodeUnrecognizedSymbol},
		{"unknown cando", []string{"dev_d1.gen", "NTV2DeviceHasNothing\n", "dev_d2.gen", ""}, sdkerr.CodeUnrecognizedSymbol},
		{"getnum without value", []string{"dev_d1.gen", "NTV2DeviceGetNumVideoInputs\n", "dev_d2.gen", ""}, sdkerr.CodeSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var defs []*devices.Definition
			for i := 0; i < len(tt.defs); i += 2 {
				defs = append(defs, parse(t, tt.defs[i], tt.defs[i+1]))
			}
			_, err := Build(testRegistry(t), defs, nil)
			require.Error(t, err)
			assert.Equal(t, tt.code, sdkerr.ExitCode(err))
		})
	}
}

func TestUnknownSymbolWarns(t *testing.T) {
	defs := func() []*devices.Definition {
		return []*devices.Definition{
			parse(t, "dev_d1.gen", "SOMETHING_ELSE\n"),
			parse(t, "dev_d2.gen", ""),
		}
	}

	lenient := &logging.Warnings{Logger: logging.Discard()}
	_, err := Build(testRegistry(t), defs(), lenient)
	require.NoError(t, err)
	assert.Equal(t, 1, lenient.Count)

	strict := &logging.Warnings{Logger: logging.Discard(), Strict: true}
	_, err = Build(testRegistry(t), defs(), strict)
	assert.Equal(t, sdkerr.CodeWarning, sdkerr.ExitCode(err))
}

func TestReportUnused(t *testing.T) {
	reg := testRegistry(t)
	ix := NewIndex(reg)
	ix.AddSupport(registry.VideoFormat, "NTV2_FORMAT_A", "DEVICE_ID_D1")

	w := &logging.Warnings{Logger: logging.Discard()}
	require.NoError(t, ReportUnused(ix, w))
	// video formats, pixel formats, GetNum and CanDo each have leftovers
	assert.Equal(t, 4, w.Count)

	strict := &logging.Warnings{Logger: logging.Discard(), Strict: true}
	err := ReportUnused(ix, strict)
	assert.Equal(t, sdkerr.CodeWarning, sdkerr.ExitCode(err))
	assert.Contains(t, err.Error(), "2 unreferenced NTV2VideoFormat enums: NTV2_FORMAT_B, NTV2_FORMAT_C")
}
