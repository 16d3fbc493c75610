// Package xref cross-validates device definitions against the canonical
// registry and accumulates the capability index the emitter consumes.
package xref

import (
	"strings"

	"sdkgen/internal/devices"
	"sdkgen/internal/logging"
	"sdkgen/internal/registry"
	"sdkgen/internal/sdkerr"
)

// Index records which devices support which symbols. Boolean categories map
// symbol to supporting devices. GetNum functions map symbol to per-device
// values.
type Index struct {
	reg        *registry.Registry
	supports   map[registry.Category]map[string][]string
	values     map[string]map[string]string
	defaults   map[string]string
	referenced map[string]bool
}

// NewIndex returns an empty index over reg.
func NewIndex(reg *registry.Registry) *Index {
	return &Index{
		reg:        reg,
		supports:   make(map[registry.Category]map[string][]string),
		values:     make(map[string]map[string]string),
		defaults:   make(map[string]string),
		referenced: make(map[string]bool),
	}
}

// Registry returns the registry the index was built against.
func (ix *Index) Registry() *registry.Registry { return ix.reg }

// AddSupport records that device supports a boolean symbol.
func (ix *Index) AddSupport(c registry.Category, symbol, device string) {
	m, ok := ix.supports[c]
	if !ok {
		m = make(map[string][]string)
		ix.supports[c] = m
	}
	m[symbol] = append(m[symbol], device)
	ix.referenced[symbol] = true
}

// SetValue records a GetNum result for device.
func (ix *Index) SetValue(function, device, value string) {
	m, ok := ix.values[function]
	if !ok {
		m = make(map[string]string)
		ix.values[function] = m
	}
	m[device] = value
	ix.referenced[function] = true
}

// SetDefault overrides the value a GetNum function returns for devices with
// no recorded value.
func (ix *Index) SetDefault(function, value string) { ix.defaults[function] = value }

// Supporters returns the devices that support symbol, in the order they
// were recorded.
func (ix *Index) Supporters(c registry.Category, symbol string) []string {
	return ix.supports[c][symbol]
}

// Supports reports whether device supports symbol.
func (ix *Index) Supports(c registry.Category, symbol, device string) bool {
	for _, d := range ix.supports[c][symbol] {
		if d == device {
			return true
		}
	}
	return false
}

// Value returns the GetNum value recorded for device.
func (ix *Index) Value(function, device string) (string, bool) {
	v, ok := ix.values[function][device]
	return v, ok
}

// HasValues reports whether any device has a value for function.
func (ix *Index) HasValues(function string) bool { return len(ix.values[function]) > 0 }

// Default returns the fallback value of a GetNum function ("0" unless set).
func (ix *Index) Default(function string) string {
	if v, ok := ix.defaults[function]; ok && v != "" {
		return v
	}
	return "0"
}

// Referenced reports whether any device file named symbol.
func (ix *Index) Referenced(symbol string) bool { return ix.referenced[symbol] }

// Unused returns the canonical symbols of a category that no device
// references, in registry order.
func (ix *Index) Unused(c registry.Category) []string {
	var out []string
	for _, name := range ix.reg.Set(c).Names() {
		if !ix.referenced[name] {
			out = append(out, name)
		}
	}
	return out
}

// CheckDevices verifies that every canonical device except the sentinel has
// a definition and that every definition names a canonical device.
func CheckDevices(reg *registry.Registry, defs []*devices.Definition) error {
	have := make(map[string]bool, len(defs))
	for _, d := range defs {
		have[d.DeviceID] = true
	}
	for _, id := range reg.Devices() {
		if id == registry.NotFoundDevice {
			continue
		}
		if !have[id] {
			return sdkerr.New(sdkerr.KindMissingCoverage, "canonical device %s not represented in device files", id)
		}
	}
	devs := reg.Set(registry.DeviceID)
	for _, d := range defs {
		if !devs.Has(d.DeviceID) {
			return sdkerr.At(sdkerr.KindUnrecognizedDevice, d.Path, 0, d.DeviceID,
				"device ID not in canonical list of %ss", registry.DeviceID)
		}
	}
	return nil
}

// Build classifies every device symbol through the registry's declared
// category table. A symbol missing from the registry that looks like one of
// its categories is an error. Any other unknown symbol is a warning.
func Build(reg *registry.Registry, defs []*devices.Definition, warn *logging.Warnings) (*Index, error) {
	if err := CheckDevices(reg, defs); err != nil {
		return nil, err
	}

	ix := NewIndex(reg)
	for _, def := range defs {
		for _, e := range def.Entries {
			c, ok := reg.Classify(e.Symbol)
			if ok && c == registry.DeviceID {
				ok = false
			}
			if !ok {
				if hint, looks := registry.Hint(e.Symbol); looks {
					return nil, sdkerr.At(sdkerr.KindUnrecognizedSymbol, def.Path, e.Line, e.Symbol,
						"not in canonical list of %ss", hint)
				}
				if err := warn.Warn(sdkerr.CodeWarning, "symbol %s parsed from device file %s not recognized as valid",
					e.Symbol, def.DeviceID); err != nil {
					return nil, err
				}
				continue
			}

			if c == registry.GetNum {
				if !e.HasValue {
					return nil, sdkerr.At(sdkerr.KindSyntax, def.Path, e.Line, e.Symbol, "missing value for 'GetNum' function")
				}
				ix.SetValue(e.Symbol, def.DeviceID, e.Value)
				continue
			}
			ix.AddSupport(c, e.Symbol, def.DeviceID)
		}
	}
	return ix, nil
}

// reportOrder is the order unused categories are reported in.
var reportOrder = []registry.Category{
	registry.VideoFormat,
	registry.PixelFormat,
	registry.InputSource,
	registry.WidgetID,
	registry.DSKMode,
	registry.ConversionMode,
	registry.GetNum,
	registry.CanDo,
}

// ReportUnused warns once per category that has unreferenced canonical
// symbols.
func ReportUnused(ix *Index, warn *logging.Warnings) error {
	for _, c := range reportOrder {
		unused := ix.Unused(c)
		if len(unused) == 0 {
			continue
		}
		noun := c.String() + " enums"
		if c.IsFunction() {
			noun = c.String() + "s"
		}
		if err := warn.Warn(sdkerr.CodeWarning, "%d unreferenced %s: %s", len(unused), noun, strings.Join(unused, ", ")); err != nil {
			return err
		}
	}
	return nil
}
