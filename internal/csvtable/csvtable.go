// Package csvtable loads device capabilities from the spreadsheet exports
// that predate the canonical .gen files.
//
// Every table has one row per symbol and one column per device. A cell
// holding "X" marks the device as supporting the row. GetNum.csv instead
// holds the value each device returns, with the DEVICE_ID_NOTFOUND column
// supplying the default.
package csvtable

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sdkgen/internal/registry"
	"sdkgen/internal/sdkerr"
	"sdkgen/internal/xref"
)

// Table names one CSV export and the column holding its row names.
type Table struct {
	Key      string
	File     string
	Category registry.Category
	Column   string
}

// Tables lists the exports in the order they are read. Key matches the
// features.tables configuration map.
var Tables = []Table{
	{"video_formats", "VideoFormats.csv", registry.VideoFormat, "NTV2VideoFormat"},
	{"fb_formats", "FBFormats.csv", registry.PixelFormat, "NTV2FrameBufferFormat"},
	{"widgets", "Widgets.csv", registry.WidgetID, "NTV2WidgetID"},
	{"conversion_modes", "ConversionModes.csv", registry.ConversionMode, "NTV2ConversionMode"},
	{"dsk_modes", "DSKModes.csv", registry.DSKMode, "NTV2DSKMode"},
	{"input_sources", "InputSources.csv", registry.InputSource, "NTV2InputSource"},
	{"cando", "CanDo.csv", registry.CanDo, "FunctionName"},
	{"getnum", "GetNum.csv", registry.GetNum, "FunctionName"},
}

// Special columns.
const (
	briefColumn     = "Brief"
	returnsColumn   = "Returns"
	deprecateColumn = "NonDeprecate?"
	deprecateGuard  = "NTV2_DEPRECATE"
)

// sheet is one parsed CSV file.
type sheet struct {
	path   string
	header []string
	rows   []map[string]string
	lines  []int
}

// Load reads every table from dir. files overrides the default file name of
// a table by key. Device columns come from the VideoFormats header.
func Load(dir string, files map[string]string) (*xref.Index, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "CSV folder '%s' not found", dir)
	}
	if !info.IsDir() {
		return nil, sdkerr.New(sdkerr.KindWrongKind, "CSV folder '%s' is not a folder", dir)
	}

	sheets := make(map[registry.Category]*sheet, len(Tables))
	for _, t := range Tables {
		name := t.File
		if f := files[t.Key]; f != "" {
			name = f
		}
		sh, err := readSheet(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if !sh.hasColumn(t.Column) {
			return nil, sdkerr.At(sdkerr.KindSyntax, sh.path, 1, t.Column, "missing name column")
		}
		sheets[t.Category] = sh
	}

	devices, err := deviceColumns(sheets[registry.VideoFormat])
	if err != nil {
		return nil, err
	}
	return build(sheets, devices)
}

func build(sheets map[registry.Category]*sheet, devices []string) (*xref.Index, error) {
	sets := make(map[registry.Category]*registry.Set, len(registry.All))
	sets[registry.DeviceID] = registry.NewSet(registry.DeviceID)
	for _, d := range devices {
		sets[registry.DeviceID].Add(registry.Symbol{Name: d})
	}
	sets[registry.DeviceID].Add(registry.Symbol{Name: registry.NotFoundDevice})

	type support struct {
		c        registry.Category
		sym, dev string
	}
	var supports []support
	values := make(map[string]map[string]string)
	defaults := make(map[string]string)

	for _, t := range Tables {
		sh := sheets[t.Category]
		set := registry.NewSet(t.Category)
		for i, row := range sh.rows {
			name := strings.TrimSpace(row[t.Column])
			if name == "" {
				continue
			}
			sym := registry.Symbol{Name: name}
			if t.Category.IsFunction() {
				sym.Desc = row[briefColumn]
			}
			if t.Category == registry.GetNum {
				sym.Type = strings.TrimSpace(row[returnsColumn])
				if sym.Type == "" {
					return nil, sdkerr.At(sdkerr.KindSyntax, sh.path, sh.lines[i], name, "missing '%s' type", returnsColumn)
				}
			}
			if d := strings.TrimSpace(row[deprecateColumn]); d == "X" || d == "1" {
				sym.Guard = deprecateGuard
			}
			if !set.Add(sym) {
				return nil, sdkerr.At(sdkerr.KindDuplicateDefinition, sh.path, sh.lines[i], name, "row defined more than once")
			}

			if t.Category == registry.GetNum {
				values[name] = make(map[string]string)
				for _, dev := range devices {
					if v := strings.TrimSpace(row[dev]); v != "" {
						values[name][dev] = v
					}
				}
				defaults[name] = strings.TrimSpace(row[registry.NotFoundDevice])
				continue
			}
			for _, dev := range devices {
				if strings.TrimSpace(row[dev]) == "X" {
					supports = append(supports, support{t.Category, name, dev})
				}
			}
		}
		sets[t.Category] = set
	}

	reg := registry.New()
	for _, c := range registry.All {
		if err := reg.Add(sets[c]); err != nil {
			return nil, err
		}
	}

	ix := xref.NewIndex(reg)
	for _, s := range supports {
		ix.AddSupport(s.c, s.sym, s.dev)
	}
	for fn, byDev := range values {
		for dev, v := range byDev {
			ix.SetValue(fn, dev, v)
		}
		ix.SetDefault(fn, defaults[fn])
	}
	return ix, nil
}

// deviceColumns returns the device names of the VideoFormats header, minus
// the name column and the DEVICE_ID_NOTFOUND sentinel.
func deviceColumns(sh *sheet) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, col := range sh.header[1:] {
		col = strings.TrimSpace(col)
		if col == "" || col == registry.NotFoundDevice {
			continue
		}
		if !strings.HasPrefix(col, "DEVICE_ID_") {
			return nil, sdkerr.At(sdkerr.KindSyntax, sh.path, 1, col, "device column must start with 'DEVICE_ID_'")
		}
		if seen[col] {
			return nil, sdkerr.At(sdkerr.KindDuplicateDefinition, sh.path, 1, col, "device column appears more than once")
		}
		seen[col] = true
		out = append(out, col)
	}
	if len(out) == 0 {
		return nil, sdkerr.At(sdkerr.KindSyntax, sh.path, 1, "", "no device columns")
	}
	return out, nil
}

func readSheet(path string) (*sheet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "CSV file '%s' not found", path)
	}
	if info.IsDir() {
		return nil, sdkerr.New(sdkerr.KindWrongKind, "CSV file '%s' is a folder, not a file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "open '%s'", path)
	}
	defer f.Close()
	return parseSheet(path, f)
}

func parseSheet(path string, r io.Reader) (*sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	sh := &sheet{path: path}
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, sdkerr.At(sdkerr.KindSyntax, path, 1, "", "empty CSV file")
	}
	if err != nil {
		return nil, csvError(path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	sh.header = header

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(path, err)
		}
		line, _ := cr.FieldPos(0)
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		sh.rows = append(sh.rows, row)
		sh.lines = append(sh.lines, line)
	}
	return sh, nil
}

func (sh *sheet) hasColumn(name string) bool {
	for _, col := range sh.header {
		if col == name {
			return true
		}
	}
	return false
}

func csvError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return sdkerr.At(sdkerr.KindSyntax, path, pe.Line, "", "%v", pe.Err)
	}
	return sdkerr.Wrap(sdkerr.KindSyntax, err, "reading '%s'", path)
}
