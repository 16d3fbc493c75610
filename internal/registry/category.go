// Package registry loads the canonical symbol sets that device definitions
// are validated against.
//
// Enum categories are scanned out of the SDK's ntv2enums.h, one rule per
// category. The two function categories (boolean "CanDo" queries and numeric
// "GetNum" queries) come from the canon .gen files. Once loaded, a Registry is
// read-only. Reference tracking belongs to the caller.
package registry

import "strings"

// Category names one family of canonical symbols.
type Category uint8

const (
	DeviceID Category = iota + 1
	VideoFormat
	PixelFormat
	InputSource
	WidgetID
	DSKMode
	ConversionMode
	CanDo
	GetNum
)

// EnumCategories lists the enum categories in header-scan order.
var EnumCategories = []Category{DeviceID, VideoFormat, PixelFormat, InputSource, WidgetID, DSKMode, ConversionMode}

// All lists every category.
var All = []Category{DeviceID, VideoFormat, PixelFormat, InputSource, WidgetID, DSKMode, ConversionMode, CanDo, GetNum}

var categoryNames = map[Category]string{
	DeviceID:       "NTV2DeviceID",
	VideoFormat:    "NTV2VideoFormat",
	PixelFormat:    "NTV2FrameBufferFormat",
	InputSource:    "NTV2InputSource",
	WidgetID:       "NTV2WidgetID",
	DSKMode:        "NTV2DSKMode",
	ConversionMode: "NTV2ConversionMode",
	CanDo:          "'CanDo' function",
	GetNum:         "'GetNum' function",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// IsFunction reports whether symbols of the category are function names.
func (c Category) IsFunction() bool { return c == CanDo || c == GetNum }

// NotFoundDevice is the sentinel device ID. It terminates the device-ID scan,
// is added to every registry after loading, and never needs a device file.
const NotFoundDevice = "DEVICE_ID_NOTFOUND"

// Hint guesses a device-file symbol's category from its spelling. It is only
// consulted for symbols missing from the registry, to tell a misspelled
// canonical symbol (an error) from an unrelated token (a warning).
func Hint(symbol string) (Category, bool) {
	switch {
	case strings.HasPrefix(symbol, "NTV2_DSKMode"):
		return DSKMode, true
	case strings.HasPrefix(symbol, "NTV2_FBF_"):
		return PixelFormat, true
	case strings.HasPrefix(symbol, "NTV2DeviceGet"):
		return GetNum, true
	case strings.HasPrefix(symbol, "NTV2_INPUTSOURCE_"):
		return InputSource, true
	case strings.HasPrefix(symbol, "NTV2_FORMAT_"):
		return VideoFormat, true
	case strings.HasPrefix(symbol, "NTV2_Wgt"):
		return WidgetID, true
	case hasAnyPrefix(symbol, "NTV2_108", "NTV2_525", "NTV2_625", "NTV2_720"):
		return ConversionMode, true
	case hasAnyPrefix(symbol, "NTV2DeviceCan", "NTV2DeviceHas", "NTV2DeviceIs", "NTV2DeviceNeed", "NTV2DeviceSof"):
		return CanDo, true
	}
	return 0, false
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
