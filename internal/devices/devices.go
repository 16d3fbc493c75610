// Package devices parses the per-device capability files (dev_*.gen).
//
// Each non-blank, non-comment line names one symbol, optionally followed by a
// value:
//
//	NTV2_FBF_10BIT_YCBCR
//	NTV2DeviceCanDo3GOut
//	NTV2DeviceGetNumVideoInputs	4
//
// The device ID comes from the file name: dev_kona4.gen describes
// DEVICE_ID_KONA4.
package devices

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sdkgen/internal/sdkerr"
)

// Pattern matches device definition files.
const Pattern = "dev_*.gen"

// Entry is one symbol line.
type Entry struct {
	Symbol   string
	Value    string
	HasValue bool
	Line     int
}

// Definition is the parsed content of one device file.
type Definition struct {
	DeviceID string
	Path     string
	Entries  []Entry
}

// Value returns the value recorded for symbol.
func (d *Definition) Value(symbol string) (string, bool) {
	for _, e := range d.Entries {
		if e.Symbol == symbol {
			return e.Value, e.HasValue
		}
	}
	return "", false
}

// DeviceIDFromFile derives the device ID from a definition file name.
func DeviceIDFromFile(name string) string {
	base := strings.ToUpper(filepath.Base(name))
	if len(base) < 7 {
		return "DEVICE_ID"
	}
	return "DEVICE_ID" + base[3:len(base)-4]
}

// ParseDir parses every definition file in dir, in file-name order. Parsing
// stops at the first failing file.
func ParseDir(dir string) ([]*Definition, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sdkerr.New(sdkerr.KindNotFound, "devices folder '%s' not found", dir)
		}
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "stat '%s'", dir)
	}
	if !info.IsDir() {
		return nil, sdkerr.New(sdkerr.KindWrongKind, "'%s' is not a folder", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, Pattern))
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindSyntax, err, "matching '%s'", Pattern)
	}
	sort.Strings(paths)

	defs := make([]*Definition, 0, len(paths))
	for _, p := range paths {
		def, err := ParseFile(p)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// ParseFile parses one definition file. A symbol defined twice is a hard
// error and no definition is returned.
func ParseFile(path string) (*Definition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "device file '%s'", filepath.Base(path))
	}
	if info.IsDir() {
		return nil, sdkerr.New(sdkerr.KindWrongKind, "device file '%s' is a folder", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "reading '%s'", path)
	}
	return Parse(filepath.Base(path), string(data))
}

// Parse parses definition text. name is the file name the device ID is
// derived from.
func Parse(name, text string) (*Definition, error) {
	def := &Definition{DeviceID: DeviceIDFromFile(name), Path: name}
	seen := make(map[string]int)

	for i, raw := range strings.Split(text, "\n") {
		lineNum := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		fields := strings.Fields(line)
		e := Entry{Symbol: fields[0], Line: lineNum}
		if prev, dup := seen[e.Symbol]; dup {
			return nil, sdkerr.At(sdkerr.KindDuplicateDefinition, name, lineNum, e.Symbol,
				"previously defined in line %d", prev)
		}
		seen[e.Symbol] = lineNum
		if len(fields) > 1 {
			e.Value, e.HasValue = fields[1], true
		}
		def.Entries = append(def.Entries, e)
	}
	return def, nil
}
