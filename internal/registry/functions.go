package registry

import (
	"strings"

	"sdkgen/internal/sdkerr"
)

// LoadFunctions reads a canon function list. Each line is
// "name description" (two columns) or "name type description" (three
// columns). Names must start with NTV2Device and must be unique.
func LoadFunctions(path string, c Category, columns int) (*Set, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	set := NewSet(c)
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		pieces := splitFields(line, columns)
		name := pieces[0]
		if !strings.HasPrefix(name, "NTV2Device") {
			return nil, sdkerr.At(sdkerr.KindSyntax, path, i+1, name, "function name must start with 'NTV2Device'")
		}

		sym := Symbol{Name: name}
		if columns > 2 {
			sym.Type = piece(pieces, 1)
			sym.Desc = piece(pieces, 2)
		} else {
			sym.Desc = piece(pieces, 1)
		}
		if !set.Add(sym) {
			return nil, sdkerr.At(sdkerr.KindDuplicateDefinition, path, i+1, name, "duplicate function name, defined more than once")
		}
	}
	return set, nil
}

// Paths locates the registry inputs.
type Paths struct {
	Enums  string
	CanDo  string
	GetNum string
}

// Load reads every category and returns the assembled registry. The
// DEVICE_ID_NOTFOUND sentinel is appended to the device IDs.
func Load(p Paths) (*Registry, error) {
	sets, err := LoadHeader(p.Enums, HeaderRules())
	if err != nil {
		return nil, err
	}
	if sets[CanDo], err = LoadFunctions(p.CanDo, CanDo, 2); err != nil {
		return nil, err
	}
	if sets[GetNum], err = LoadFunctions(p.GetNum, GetNum, 3); err != nil {
		return nil, err
	}
	sets[DeviceID].Add(Symbol{Name: NotFoundDevice})

	reg := New()
	for _, c := range All {
		if err := reg.Add(sets[c]); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// splitFields splits on runs of whitespace into at most n pieces. The last
// piece keeps its interior whitespace.
func splitFields(s string, n int) []string {
	var out []string
	s = strings.TrimSpace(s)
	for len(out) < n-1 && s != "" {
		i := strings.IndexAny(s, " \t")
		if i < 0 {
			break
		}
		out = append(out, s[:i])
		s = strings.TrimSpace(s[i:])
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

func piece(p []string, i int) string {
	if i < len(p) {
		return strings.TrimSpace(p[i])
	}
	return ""
}
