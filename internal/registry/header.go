package registry

import (
	"bufio"
	"os"
	"strings"

	"sdkgen/internal/sdkerr"
)

// Rule describes how one enum category is scanned out of ntv2enums.h.
type Rule struct {
	Category Category

	// Match selects keys belonging to the category.
	Match func(key string) bool

	// Skip drops matched keys that are range markers rather than values.
	Skip func(key string) bool

	// Terminator ends the scan. When Inclusive is set the terminator is
	// itself a member of the set.
	Terminator string
	Inclusive  bool

	// SkipDirectives ignores preprocessor lines, and SkipDeprecated ignores
	// any line mentioning "deprecate".
	SkipDirectives bool
	SkipDeprecated bool

	// StrictAssign rejects "KEY=VALUE" without surrounding whitespace, and
	// KeepAlias decides whether a "KEY = OTHER" alias line is kept. Rules
	// without StrictAssign split on '=' and keep every alias.
	StrictAssign bool
	KeepAlias    func(target string) bool
}

// HeaderRules returns the scan rules for every enum category in ntv2enums.h.
func HeaderRules() []Rule {
	return []Rule{
		{
			Category:       DeviceID,
			Match:          func(k string) bool { return strings.HasPrefix(k, "DEVICE_ID_") },
			Terminator:     NotFoundDevice,
			SkipDirectives: true,
			SkipDeprecated: true,
		},
		{
			Category: VideoFormat,
			Match:    func(k string) bool { return strings.HasPrefix(k, "NTV2_FORMAT_") },
			Skip: func(k string) bool {
				// NTV2_FORMAT_END_4K_DEF_FORMATS shares its ordinal with
				// NTV2_FORMAT_1080p_2K_6000 and would produce a duplicate case
				// label. Every other END_ marker is a distinct value and stays.
				return strings.HasPrefix(k, "NTV2_FORMAT_FIRST_") ||
					k == "NTV2_FORMAT_END_4K_DEF_FORMATS" ||
					strings.HasPrefix(k, "NTV2_FORMAT_DEPRECATED_") ||
					k == "NTV2_FORMAT_UNKNOWN"
			},
			Terminator:   "NTV2_MAX_NUM_VIDEO_FORMATS",
			StrictAssign: true,
			KeepAlias:    func(target string) bool { return strings.HasPrefix(target, "NTV2_FORMAT_FIRST_") },
		},
		{
			Category: PixelFormat,
			Match:    func(k string) bool { return strings.HasPrefix(k, "NTV2_FBF_") },
			Skip: func(k string) bool {
				return strings.Contains(k, "NTV2_FBF_FIRST") || strings.Contains(k, "NTV2_FBF_LAST")
			},
			Terminator: "NTV2_FBF_LAST",
		},
		{
			Category:   InputSource,
			Match:      func(k string) bool { return strings.HasPrefix(k, "NTV2_INPUTSOURCE_") },
			Terminator: "NTV2_INPUTSOURCE_SDI8",
			Inclusive:  true,
		},
		{
			Category:   WidgetID,
			Match:      func(k string) bool { return strings.HasPrefix(k, "NTV2_Wgt") },
			Terminator: "NTV2_WgtModuleTypeCount",
		},
		{
			Category:   DSKMode,
			Match:      func(k string) bool { return strings.HasPrefix(k, "NTV2_DSKMode") },
			Terminator: "NTV2_DSKModeMax",
		},
		{
			Category: ConversionMode,
			Match: func(k string) bool {
				return strings.Contains(k, "to") && hasAnyPrefix(k, "NTV2_108", "NTV2_720", "NTV2_525", "NTV2_625")
			},
			Terminator: "NTV2_NUM_CONVERSIONMODES",
		},
	}
}

// LoadHeader scans path once per rule and returns one Set per rule category.
func LoadHeader(path string, rules []Rule) (map[Category]*Set, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	sets := make(map[Category]*Set, len(rules))
	for _, rule := range rules {
		set, err := scan(path, lines, rule)
		if err != nil {
			return nil, err
		}
		sets[rule.Category] = set
	}
	return sets, nil
}

func scan(path string, lines []string, rule Rule) (*Set, error) {
	set := NewSet(rule.Category)
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if rule.SkipDirectives && strings.HasPrefix(line, "#") {
			continue
		}
		if rule.SkipDeprecated && strings.Contains(line, "deprecate") {
			continue
		}

		fields := strings.Fields(line)
		key := fields[0]
		if strings.HasPrefix(key, ",") {
			key = strings.TrimSpace(strings.ReplaceAll(key, ",", ""))
		}

		if rule.Terminator != "" && bareKey(key) == rule.Terminator {
			if rule.Inclusive {
				set.Add(Symbol{Name: rule.Terminator})
			}
			break
		}
		if !rule.Match(key) {
			continue
		}

		if rule.StrictAssign {
			if strings.Contains(key, "=") ||
				(len(fields) > 1 && strings.HasPrefix(fields[1], "=") && fields[1] != "=") {
				return nil, sdkerr.At(sdkerr.KindSyntax, path, i+1, key, "missing whitespace around '='")
			}
			key = strings.ReplaceAll(key, ",", "")
			if len(fields) > 1 && fields[1] == "=" {
				if len(fields) < 3 || rule.KeepAlias == nil || !rule.KeepAlias(fields[2]) {
					continue
				}
			}
		} else {
			key = bareKey(key)
		}

		if rule.Skip != nil && rule.Skip(key) {
			continue
		}
		set.Add(Symbol{Name: key})
	}
	return set, nil
}

// bareKey strips an initializer and trailing commas from an enumerator.
func bareKey(key string) string {
	if before, _, ok := strings.Cut(key, "="); ok {
		key = before
	}
	return strings.TrimSpace(strings.ReplaceAll(key, ",", ""))
}

// readLines returns the lines of a regular file. A missing path is NotFound
// and a directory is WrongKind.
func readLines(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sdkerr.New(sdkerr.KindNotFound, "file '%s' not found", path)
		}
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "stat '%s'", path)
	}
	if info.IsDir() {
		return nil, sdkerr.New(sdkerr.KindWrongKind, "file '%s' is a folder", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "open '%s'", path)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindSyntax, err, "reading '%s'", path)
	}
	return lines, nil
}
