// Package emit renders the device-features C++ sources from a capability
// index.
//
// Two files are produced: a declarations header (ntv2devicefeatures.hh) and
// the function bodies (ntv2devicefeatures.hpp). Both are rendered in memory
// and written in one call, so a caller can validate everything before it
// touches the output tree. Output depends only on the registry, the index and
// the Header, which makes repeated runs byte-identical.
package emit

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"sdkgen/internal/registry"
	"sdkgen/internal/xref"
)

// Output file names.
const (
	DeclarationsFile = "ntv2devicefeatures.hh"
	DefinitionsFile  = "ntv2devicefeatures.hpp"
)

// query describes one generated "CanDo<enum>" function.
type query struct {
	Category registry.Category
	Func     string
	Param    string
	Invalid  string
	ByDevice bool
}

var queries = []query{
	{registry.ConversionMode, "NTV2DeviceCanDoConversionMode", "inConversionMode", "NTV2_CONVERSIONMODE_INVALID", false},
	{registry.DSKMode, "NTV2DeviceCanDoDSKMode", "inDSKMode", "NTV2_DSKMODE_INVALID", false},
	{registry.PixelFormat, "NTV2DeviceCanDoFrameBufferFormat", "inFBFormat", "NTV2_FBF_INVALID", false},
	{registry.InputSource, "NTV2DeviceCanDoInputSource", "inInputSource", "NTV2_INPUTSOURCE_INVALID", false},
	{registry.VideoFormat, "NTV2DeviceCanDoVideoFormat", "inVideoFormat", "NTV2_FORMAT_UNKNOWN", true},
	{registry.WidgetID, "NTV2DeviceCanDoWidget", "inWidgetID", "NTV2_WIDGET_INVALID", true},
}

// Emitter renders both output files.
type Emitter struct {
	Index  *xref.Index
	Header Header
}

// New returns an emitter over ix.
func New(ix *xref.Index, h Header) *Emitter {
	return &Emitter{Index: ix, Header: h}
}

func (e *Emitter) reg() *registry.Registry { return e.Index.Registry() }

// WriteDeclarations writes ntv2devicefeatures.hh.
func (e *Emitter) WriteDeclarations(w io.Writer) error {
	var b bytes.Buffer
	e.Header.write(&b, DeclarationsFile, "Declares NTV2DeviceCanDo... and NTV2DeviceGetNum... functions.", "ntv2devicefeatures.h")
	b.WriteString("#ifndef NTV2DEVICEFEATURES_HH\n#define NTV2DEVICEFEATURES_HH\n\n")
	b.WriteString("#if defined(__cplusplus) && defined(NTV2_BUILDING_DRIVER)\nextern \"C\"\n{\n#endif\n\n")

	for _, sym := range sortedSymbols(e.reg().Set(registry.CanDo)) {
		declare(&b, "bool", sym)
	}
	for _, sym := range sortedSymbols(e.reg().Set(registry.GetNum)) {
		declare(&b, sym.Type, sym)
	}
	for _, q := range queries {
		typ := q.Category.String()
		pad := "\t\t"
		if len(q.Param) >= 12 {
			pad = "\t"
		}
		fmt.Fprintf(&b, "\n/**\n\t@return\t\tTrue if the device having the given ID supports the given %s.\n", typ)
		b.WriteString("\t@param[in]\tinDeviceID\t\tSpecifies the NTV2DeviceID of interest.\n")
		fmt.Fprintf(&b, "\t@param[in]\t%s%sSpecifies the %s.\n**/\n", q.Param, pad, typ)
		fmt.Fprintf(&b, "AJAExport bool %s (const NTV2DeviceID inDeviceID, const %s %s);\n", q.Func, typ, q.Param)
	}

	b.WriteString("\n#if defined(__cplusplus) && defined(NTV2_BUILDING_DRIVER)\n}\n#endif\n\n")
	b.WriteString("\n\n#endif\t//\tNTV2DEVICEFEATURES_HH\n")
	_, err := w.Write(b.Bytes())
	return err
}

func declare(b *bytes.Buffer, typ string, sym registry.Symbol) {
	b.WriteString("\n/**\n")
	if sym.Desc != "" {
		fmt.Fprintf(b, "\t@return\t\t%s\n", sym.Desc)
	}
	b.WriteString("\t@param[in]\tinDeviceID\t\tSpecifies the NTV2DeviceID of interest.\n**/\n")
	fmt.Fprintf(b, "AJAExport %s %s (const NTV2DeviceID inDeviceID);\n", typ, sym.Name)
}

// WriteDefinitions writes ntv2devicefeatures.hpp.
func (e *Emitter) WriteDefinitions(w io.Writer) error {
	var b bytes.Buffer
	e.Header.write(&b, DefinitionsFile, "Contains implementations of NTV2DeviceCanDo... and NTV2DeviceGetNum... functions.", "ntv2devicefeatures.cpp")

	devices := Sorted(e.reg().Devices())
	for _, sym := range sortedSymbols(e.reg().Set(registry.CanDo)) {
		e.writeCanDo(&b, sym, devices)
	}
	for _, sym := range sortedSymbols(e.reg().Set(registry.GetNum)) {
		e.writeGetNum(&b, sym, devices)
	}
	for _, q := range queries {
		if q.ByDevice {
			e.writeByDevice(&b, q, devices)
		} else {
			e.writeByEnum(&b, q, devices)
		}
	}
	_, err := w.Write(b.Bytes())
	return err
}

func docBlock(b *bytes.Buffer, name, desc string) {
	fmt.Fprintf(b, "\n\n/**\n\t%s\n", name)
	if desc != "" {
		fmt.Fprintf(b, "\t%s\n", desc)
	}
	b.WriteString("**/\n")
}

func (e *Emitter) writeCanDo(b *bytes.Buffer, sym registry.Symbol, devices []string) {
	docBlock(b, sym.Name, sym.Desc)
	fmt.Fprintf(b, "bool %s (const NTV2DeviceID inDeviceID)\n{\n", sym.Name)

	if len(e.Index.Supporters(registry.CanDo, sym.Name)) == 0 {
		b.WriteString("\t(void) inDeviceID;\n")
	} else {
		b.WriteString("\tswitch (inDeviceID)\n\t{\n")
		var others []string
		for _, dev := range devices {
			if e.Index.Supports(registry.CanDo, sym.Name, dev) {
				fmt.Fprintf(b, "\t\tcase %s:\n", dev)
			} else {
				others = append(others, dev)
			}
		}
		b.WriteString("\t\t\treturn true;\n")
		b.WriteString("\t#if defined(_DEBUG)\n")
		for _, dev := range others {
			fmt.Fprintf(b, "\t\tcase %s:\n", dev)
		}
		b.WriteString("\t#else\n\t\tdefault:\n\t#endif\n\t\t\tbreak;\n")
		b.WriteString("\t}\t//\tswitch on inDeviceID\n")
	}
	b.WriteString("\n\treturn false;\n\n")
	fmt.Fprintf(b, "}\t//  %s (auto-generated)\n", sym.Name)
}

func (e *Emitter) writeGetNum(b *bytes.Buffer, sym registry.Symbol, devices []string) {
	docBlock(b, sym.Name, sym.Desc)
	fmt.Fprintf(b, "%s %s (const NTV2DeviceID inDeviceID)\n{\n", sym.Type, sym.Name)

	if !e.Index.HasValues(sym.Name) {
		b.WriteString("\t(void) inDeviceID;\t\t// No devices support this function\n")
	} else {
		b.WriteString("\tswitch (inDeviceID)\n\t{\n")
		var others []string
		for _, dev := range devices {
			v, ok := e.Index.Value(sym.Name, dev)
			if !ok {
				others = append(others, dev)
				continue
			}
			fmt.Fprintf(b, "\t\tcase %s:%sreturn %s;\n", dev, valueTabs(dev), v)
		}
		b.WriteString("\t#if defined(_DEBUG)\t\t// These devices all return the default:\n")
		for _, dev := range others {
			fmt.Fprintf(b, "\t\tcase %s:\n", dev)
		}
		b.WriteString("\t#else\n\t\tdefault:\n\t#endif\t//\tdefined(_DEBUG)\n\t\t\tbreak;\n")
		b.WriteString("\t}\t//\tswitch on inDeviceID\n\n")
	}
	fmt.Fprintf(b, "\treturn %s;\n\n", e.Index.Default(sym.Name))
	fmt.Fprintf(b, "}\t//  %s (auto-generated)\n", sym.Name)
}

// valueTabs aligns "return" columns for device names of typical length.
func valueTabs(device string) string {
	switch {
	case len(device) < 14:
		return "\t\t\t"
	case len(device) < 18:
		return "\t\t"
	default:
		return "\t"
	}
}

// enums returns the canonical symbols of q's category plus its invalid
// sentinel, sorted.
func (e *Emitter) enums(q query) []registry.Symbol {
	set := e.reg().Set(q.Category)
	syms := set.Symbols()
	if !set.Has(q.Invalid) {
		syms = append(syms, registry.Symbol{Name: q.Invalid})
	}
	sortSymbols(syms)
	return syms
}

// caseLabel writes "case X:" inside the symbol's preprocessor guard, if any.
func caseLabel(b *bytes.Buffer, indent string, sym registry.Symbol) {
	if sym.Guard != "" {
		fmt.Fprintf(b, "%s#if !defined (%s)\n", strings.TrimSuffix(indent, "\t"), sym.Guard)
	}
	fmt.Fprintf(b, "%scase %s:\n", indent, sym.Name)
	if sym.Guard != "" {
		fmt.Fprintf(b, "%s#endif\t//\t!defined (%s)\n", strings.TrimSuffix(indent, "\t"), sym.Guard)
	}
}

// writeByEnum switches on the enum first, then on the device.
func (e *Emitter) writeByEnum(b *bytes.Buffer, q query, devices []string) {
	typ := q.Category.String()
	docBlock(b, q.Func, "")
	fmt.Fprintf(b, "bool %s (const NTV2DeviceID inDeviceID, const %s %s)\n{\n", q.Func, typ, q.Param)
	fmt.Fprintf(b, "\tswitch (%s)\n\t{\n", q.Param)

	var unreferenced []registry.Symbol
	for _, sym := range e.enums(q) {
		if len(e.Index.Supporters(q.Category, sym.Name)) == 0 {
			unreferenced = append(unreferenced, sym)
			continue
		}
		if sym.Guard != "" {
			fmt.Fprintf(b, "\t#if !defined (%s)\n", sym.Guard)
		}
		fmt.Fprintf(b, "\t\tcase %s:\n", sym.Name)
		b.WriteString("\t\t\tswitch (inDeviceID)\n\t\t\t{\n")
		var others []string
		for _, dev := range devices {
			if e.Index.Supports(q.Category, sym.Name, dev) {
				fmt.Fprintf(b, "\t\t\t\tcase %s:\n", dev)
			} else {
				others = append(others, dev)
			}
		}
		b.WriteString("\t\t\t\t\treturn true;\n")
		fmt.Fprintf(b, "\t\t\t#if defined(_DEBUG)\t\t// These devices don't support %s:\n", sym.Name)
		for _, dev := range others {
			fmt.Fprintf(b, "\t\t\t\tcase %s:\n", dev)
		}
		b.WriteString("\t\t\t#else\n\t\t\t\tdefault:\n\t\t\t#endif\n\t\t\t\t\tbreak;\n")
		fmt.Fprintf(b, "\t\t\t}\t//  switch on inDeviceID for %s\n", sym.Name)
		fmt.Fprintf(b, "\t\t\tbreak;\t//  %s\n", sym.Name)
		if sym.Guard != "" {
			fmt.Fprintf(b, "\t#endif\t//\t!defined (%s)\n", sym.Guard)
		}
		b.WriteString("\n")
	}

	b.WriteString("\t#if defined(_DEBUG)\t\t// These are unreferenced:\n")
	for _, sym := range unreferenced {
		caseLabel(b, "\t\t", sym)
	}
	b.WriteString("\t#else\n\t\tdefault:\n\t#endif\n\t\t\tbreak;\n")
	fmt.Fprintf(b, "\t}\t//  switch on %s\n\n\treturn false;\n\n", q.Param)
	fmt.Fprintf(b, "}\t//  %s (auto-generated)\n", q.Func)
}

// writeByDevice switches on the device first, then on the enum.
func (e *Emitter) writeByDevice(b *bytes.Buffer, q query, devices []string) {
	typ := q.Category.String()
	docBlock(b, q.Func, "")
	fmt.Fprintf(b, "bool %s (const NTV2DeviceID inDeviceID, const %s %s)\n{\n", q.Func, typ, q.Param)
	b.WriteString("\tswitch (inDeviceID)\n\t{\n")

	enums := e.enums(q)
	for _, dev := range devices {
		if dev == registry.NotFoundDevice {
			continue
		}
		fmt.Fprintf(b, "\t\tcase %s:\n", dev)
		fmt.Fprintf(b, "\t\t\tswitch (%s)\n\t\t\t{\n", q.Param)
		var others []registry.Symbol
		for _, sym := range enums {
			if e.Index.Supports(q.Category, sym.Name, dev) {
				caseLabel(b, "\t\t\t\t", sym)
			} else {
				others = append(others, sym)
			}
		}
		if len(others) < len(enums) {
			b.WriteString("\t\t\t\t\treturn true;\n")
		}
		fmt.Fprintf(b, "\t\t\t#if defined(_DEBUG)\t\t// %ss not supported by %s:\n", typ, dev)
		for _, sym := range others {
			caseLabel(b, "\t\t\t\t", sym)
		}
		b.WriteString("\t\t\t#else\n\t\t\t\tdefault:\n\t\t\t#endif\n\t\t\t\t\tbreak;\n")
		fmt.Fprintf(b, "\t\t\t}\t//\tswitch on %s\n", q.Param)
		fmt.Fprintf(b, "\t\t\tbreak;\t//\tcase %s\n\n", dev)
	}

	fmt.Fprintf(b, "\t\tcase %s:\n\t\t\tbreak;\t//\tcase %s\n", registry.NotFoundDevice, registry.NotFoundDevice)
	b.WriteString("\t}\t//  switch on device ID\n\n\treturn false;\n\n")
	fmt.Fprintf(b, "}\t//  %s (auto-generated)\n", q.Func)
}

func less(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// Sorted returns a case-insensitively sorted copy of names, with the raw
// string breaking ties.
func Sorted(names []string) []string {
	out := append([]string(nil), names...)
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func sortSymbols(syms []registry.Symbol) {
	sort.Slice(syms, func(i, j int) bool { return less(syms[i].Name, syms[j].Name) })
}

func sortedSymbols(s *registry.Set) []registry.Symbol {
	syms := s.Symbols()
	sortSymbols(syms)
	return syms
}
