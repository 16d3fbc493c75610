package docbuild

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"sdkgen/internal/sdkerr"
)

// Version macros in ntv2enums.h.
const (
	macroMajor = "AJA_NTV2_SDK_VERSION_MAJOR"
	macroMinor = "AJA_NTV2_SDK_VERSION_MINOR"
	macroPoint = "AJA_NTV2_SDK_VERSION_POINT"
	macroBuild = "AJA_NTV2_SDK_BUILD_NUMBER"
	macroWhen  = "AJA_NTV2_SDK_BUILD_DATETIME"
	macroType  = "AJA_NTV2_SDK_BUILD_TYPE"
)

// Version is an SDK version as recorded in ntv2enums.h. An empty Type is a
// release build. Anything else is a beta.
type Version struct {
	Major, Minor, Point string
	Build               string
	When                string
	Type                string
}

// ParseExpected parses the --version argument. At least three dot-separated
// components are required. A fourth becomes Build.
func ParseExpected(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 3 {
		return Version{}, sdkerr.New(sdkerr.KindWrongKind, "%d version components found in '%s', expected at least 3", len(parts), s)
	}
	v := Version{Major: parts[0], Minor: parts[1], Point: parts[2]}
	if len(parts) > 3 {
		v.Build = parts[3]
	}
	return v, nil
}

// Triple is "major.minor.point".
func (v Version) Triple() string { return v.Major + "." + v.Minor + "." + v.Point }

// SameRelease compares major, minor and point.
func (v Version) SameRelease(o Version) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Point == o.Point
}

// Beta reports whether the build type marks a beta.
func (v Version) Beta() bool { return v.Type != "" }

// Display is the human-readable version: "16.2.0" for a release, "16.2.0b5"
// for beta build 5.
func (v Version) Display() string {
	if v.Beta() {
		return fmt.Sprintf("%s.%s.%sb%s", v.Major, v.Minor, v.Point, v.Build)
	}
	return v.Triple()
}

// Underscore is the version used in folder names: "16_2_0_5" for a release
// and "16_2_0beta" for any beta.
func (v Version) Underscore() string {
	if v.Beta() {
		return fmt.Sprintf("%s_%s_%sbeta", v.Major, v.Minor, v.Point)
	}
	return fmt.Sprintf("%s_%s_%s_%s", v.Major, v.Minor, v.Point, v.Build)
}

// Folder is the published documentation folder name.
func (v Version) Folder() string { return "NTV2SDK_docs_" + v.Underscore() }

// ReadVersion extracts the version macros from a header. Missing macros
// read as empty.
func ReadVersion(path string) (Version, error) {
	macros, err := Macros(path)
	if err != nil {
		return Version{}, err
	}
	return Version{
		Major: macros[macroMajor],
		Minor: macros[macroMinor],
		Point: macros[macroPoint],
		Build: macros[macroBuild],
		When:  macros[macroWhen],
		Type:  macros[macroType],
	}, nil
}

// Macros returns the value of every "#define NAME value" line in a file.
// Surrounding double quotes are removed, as is a trailing // comment. The
// first definition of a name wins.
func Macros(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "cannot read macros from '%s'", path)
	}
	defer f.Close()

	out := make(map[string]string)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		name, value, ok := parseDefine(sc.Text())
		if !ok {
			continue
		}
		if _, seen := out[name]; !seen {
			out[name] = value
		}
	}
	if err := sc.Err(); err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindSyntax, err, "reading '%s'", path)
	}
	return out, nil
}

func parseDefine(line string) (name, value string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(line[1:])
	if !strings.HasPrefix(line, "define") {
		return "", "", false
	}
	fields := strings.Fields(line[len("define"):])
	if len(fields) == 0 {
		return "", "", false
	}
	name = fields[0]
	value = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line[len("define"):]), name))
	if strings.HasPrefix(value, `"`) {
		if end := strings.Index(value[1:], `"`); end >= 0 {
			return name, value[1 : end+1], true
		}
	}
	if i := strings.Index(value, "//"); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	return name, value, true
}
