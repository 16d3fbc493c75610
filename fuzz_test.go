//go:build go1.18
// +build go1.18

package main

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"sdkgen/internal/devices"
	"sdkgen/internal/emit"
	"sdkgen/internal/logging"
	"sdkgen/internal/registry"
	"sdkgen/internal/sdkerr"
	"sdkgen/internal/xref"
)

// ===== FUZZ TESTS FOR DEVICE FILE PROCESSING =====

func fuzzRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	add := func(c registry.Category, names ...string) {
		s := registry.NewSet(c)
		for _, n := range names {
			s.Add(registry.Symbol{Name: n})
		}
		if err := reg.Add(s); err != nil {
			t.Fatal(err)
		}
	}
	add(registry.DeviceID, "DEVICE_ID_KONA4", registry.NotFoundDevice)
	add(registry.VideoFormat, "NTV2_FORMAT_1080i_5000", "NTV2_FORMAT_1080i_5994")
	add(registry.PixelFormat, "NTV2_FBF_ARGB")
	add(registry.CanDo, "NTV2DeviceCanDo3GOut")
	add(registry.GetNum, "NTV2DeviceGetNumVideoInputs")
	return reg
}

// FuzzDeviceFile feeds arbitrary device file text through the
// cross-reference and emitter. Every failure must carry an exit status and
// a successful run must produce output.
func FuzzDeviceFile(f *testing.F) {
	f.Add("NTV2_FORMAT_1080i_5000\nNTV2DeviceGetNumVideoInputs 4\n")
	f.Add("NTV2_FORMAT_1080i_5000\nNTV2_FORMAT_1080i_5000\n")
	f.Add("NTV2DeviceGetNumVideoInputs\n")
	f.Add("NTV2_FORMAT_BOGUS\n")
	f.Add("// comment\n# comment\n\n   \t\n")
	f.Add("DEVICE_ID_KONA4\n")
	f.Add("NTV2DeviceCanDo3GOut extra words here\n")
	f.Add(strings.Repeat("NTV2_FBF_ARGB ", 50))

	f.Fuzz(func(t *testing.T, text string) {
		if !utf8.ValidString(text) {
			t.Skip("Invalid UTF-8 input")
		}
		if len(text) > 10000 {
			t.Skip("Input too long")
		}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("device file processing panicked with input %q: %v", text, r)
			}
		}()

		def, err := devices.Parse("dev_kona4.gen", text)
		if err != nil {
			if sdkerr.ExitCode(err) == sdkerr.CodeFailure {
				t.Errorf("parse error without a status: %v", err)
			}
			return
		}

		reg := fuzzRegistry(t)
		ix, err := xref.Build(reg, []*devices.Definition{def}, &logging.Warnings{Logger: logging.Discard()})
		if err != nil {
			if sdkerr.ExitCode(err) == sdkerr.CodeFailure {
				t.Errorf("build error without a status: %v", err)
			}
			return
		}

		var hpp bytes.Buffer
		if err := emit.New(ix, emit.Header{Tool: "fuzz", Time: fixedTime}).WriteDefinitions(&hpp); err != nil {
			t.Errorf("WriteDefinitions() error: %v", err)
		}
		if hpp.Len() == 0 {
			t.Error("no definitions written")
		}
	})
}

// FuzzCheckOutputPath makes sure odd output paths fail with a status
// instead of a panic.
func FuzzCheckOutputPath(f *testing.F) {
	f.Add("ntv2devicefeatures.hpp")
	f.Add("")
	f.Add("../../..")
	f.Add("a/b/c/d.hpp")
	f.Add("\x00")

	f.Fuzz(func(t *testing.T, name string) {
		if !utf8.ValidString(name) || len(name) > 1000 {
			t.Skip("Unusable path")
		}
		s := &session{warn: &logging.Warnings{Logger: logging.Discard(), Strict: true}}
		err := s.checkOutput(t.TempDir()+"/"+name, sdkerr.KindOutputIsFolder)
		if err != nil && sdkerr.ExitCode(err) == sdkerr.CodeFailure {
			t.Errorf("checkOutput(%q) error without a status: %v", name, err)
		}
	})
}
