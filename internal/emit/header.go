package emit

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Header is the provenance stamped at the top of every generated file.
type Header struct {
	Tool   string
	Holder string
	Time   time.Time
}

// timestampLayout matches the C library's "%c" in the POSIX locale.
const timestampLayout = "Mon Jan _2 15:04:05 2006"

// BuildTime returns the timestamp for generated files. SOURCE_DATE_EPOCH,
// when set to a valid Unix time, pins it so that builds are reproducible.
func BuildTime(getenv func(string) string, now func() time.Time) time.Time {
	if s := getenv("SOURCE_DATE_EPOCH"); s != "" {
		if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(sec, 0).UTC()
		}
	}
	return now()
}

// DefaultHeader stamps output with the running binary's name and the build
// time.
func DefaultHeader(holder string) Header {
	return Header{
		Tool:   os.Args[0],
		Holder: holder,
		Time:   BuildTime(os.Getenv, time.Now),
	}
}

// Timestamp formats the header time the way the C library's "%c" does.
func (h Header) Timestamp() string { return h.Time.Format(timestampLayout) }

func (h Header) holder() string {
	if h.Holder == "" {
		return "AJA Video Systems, Inc."
	}
	return h.Holder
}

func (h Header) write(w io.Writer, file, brief, includedFrom string) {
	fmt.Fprintf(w, "/**\n\t@file\t\t%s\n\t@brief\t\t%s\n", file, brief)
	fmt.Fprintf(w, "\t\t\t\tThis module is included at compile time from '%s'.\n", includedFrom)
	fmt.Fprintf(w, "\t@copyright\t(C) 2004-%d %s\tProprietary and confidential information.\n", h.Time.Year(), h.holder())
	fmt.Fprintf(w, "\t@note\t\tGenerated by '%s' on %s.\n**/\n", h.Tool, h.Time.Format(timestampLayout))
}
