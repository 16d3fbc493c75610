// Package canconnect extracts crosspoint routing from FPGA Verilog sources.
//
// Each input select in a crosspoint module is a "casex (sel)" block whose
// arms name the outputs that may drive it:
//
//	casex (fb1_in_sel)
//	  `XPT_SDI_IN1 : fb1_in <= sdi_in1;
//	  default      : fb1_in <= black;
//	endcase
//
// The listing written for each device pairs the NTV2 input crosspoint with
// every output name found in its block.
package canconnect

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phuslu/log"

	"sdkgen/internal/logging"
	"sdkgen/internal/sdkerr"
)

// OutputFile is the generated listing's file name.
const OutputFile = "ntv2canconnect.hpp"

// Route is one "output may drive input" arm.
type Route struct {
	Select string
	Input  string // NTV2 input crosspoint, empty when Select is unmapped
	Output string
	Line   int
}

// Listing is the parsed routing of one device.
type Listing struct {
	DeviceID string
	Source   string
	Routes   []Route
	Unmapped []string
	Lines    int
}

// Parse reads one Verilog source. xpts maps select names to NTV2 input
// crosspoints.
func Parse(deviceID, source string, r io.Reader, xpts map[string]string) (*Listing, error) {
	l := &Listing{DeviceID: deviceID, Source: source}
	seen := make(map[string]bool)

	var sel string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		l.Lines++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.Contains(line, "casex ("):
			if sel != "" {
				return nil, sdkerr.At(sdkerr.KindSyntax, source, l.Lines, trimmed,
					"%s: 'casex' encountered without prior closing 'endcase' for '%s'", deviceID, sel)
			}
			sel = strings.NewReplacer("casex", "", "(", "", ")", "").Replace(line)
			sel = strings.TrimSpace(sel)

		case strings.Contains(line, "endcase"):
			if sel == "" {
				return nil, sdkerr.At(sdkerr.KindSyntax, source, l.Lines, trimmed,
					"%s: 'endcase' encountered without prior opening 'casex'", deviceID)
			}
			sel = ""

		case sel != "" && strings.Contains(line, "<=") && !strings.Contains(line, "default"):
			if strings.HasPrefix(trimmed, "//") {
				continue
			}
			lhs, err := splitArm(line)
			if err != nil {
				return nil, sdkerr.At(sdkerr.KindSyntax, source, l.Lines, trimmed, "%s: in '%s', %v", deviceID, sel, err)
			}
			route := Route{
				Select: sel,
				Input:  xpts[sel],
				Output: strings.ReplaceAll(strings.TrimSpace(lhs), "`", ""),
				Line:   l.Lines,
			}
			if route.Input == "" && !seen[sel] {
				seen[sel] = true
				l.Unmapped = append(l.Unmapped, sel)
			}
			l.Routes = append(l.Routes, route)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindSyntax, err, "reading '%s'", source)
	}
	if sel != "" {
		return nil, sdkerr.At(sdkerr.KindSyntax, source, l.Lines, sel, "%s: no closing 'endcase' before end of file", deviceID)
	}
	return l, nil
}

// splitArm returns the output name of a "name : ... <= ..." arm.
func splitArm(line string) (string, error) {
	chunks := strings.Split(line, "<=")
	if len(chunks) != 2 {
		return "", fmt.Errorf("%d occurrence(s) of '<=' found, expected only one", len(chunks)-1)
	}
	parts := strings.Split(strings.TrimSpace(chunks[0]), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return "", fmt.Errorf("%d occurrence(s) of ':' found, expected one or two", len(parts)-1)
	}
	return parts[0], nil
}

// Write renders one device's routes.
func (l *Listing) Write(w io.Writer) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "\n\n%s:\t\t//\tFrom '%s'\n", l.DeviceID, l.Source)
	for _, r := range l.Routes {
		if r.Input != "" {
			fmt.Fprintf(&b, "%s <== '%s'\n", r.Input, r.Output)
		} else {
			fmt.Fprintf(&b, "'%s' <== '%s'\n", r.Select, r.Output)
		}
	}
	_, err := w.Write(b.Bytes())
	return err
}

// Generator parses the crosspoint sources of a set of devices.
type Generator struct {
	InputDir string
	Devices  map[string]Device
	Xpts     map[string]string
	Warn     *logging.Warnings
	Logger   *log.Logger
}

// Run parses the named device, or every known device when name is empty.
// Devices without a usable source are skipped with a warning.
func (g *Generator) Run(name string) ([]*Listing, error) {
	names := make([]string, 0, len(g.Devices))
	if name != "" {
		if _, ok := g.Devices[name]; !ok {
			return nil, sdkerr.New(sdkerr.KindUnknownDeviceName, "no such device '%s'", name)
		}
		names = append(names, name)
	} else {
		for n := range g.Devices {
			names = append(names, n)
		}
		sort.Strings(names)
	}

	var out []*Listing
	for _, n := range names {
		dev := g.Devices[n]
		if dev.Verilog == "" {
			if err := g.Warn.Warn(sdkerr.CodeWarning, "empty path to verilog file for '%s'", dev.ID); err != nil {
				return nil, err
			}
			continue
		}
		path := filepath.Join(g.InputDir, dev.Verilog)
		info, err := os.Stat(path)
		if err != nil {
			if err := g.Warn.Warn(sdkerr.CodeWarning, "device '%s' verilog file path '%s' not found", dev.ID, path); err != nil {
				return nil, err
			}
			continue
		}
		if info.IsDir() {
			if err := g.Warn.Warn(sdkerr.CodeWarning, "device '%s' verilog file path '%s' is folder", dev.ID, path); err != nil {
				return nil, err
			}
			continue
		}

		l, err := g.parseFile(dev.ID, path)
		if err != nil {
			return nil, err
		}
		for _, sel := range l.Unmapped {
			if err := g.Warn.Warn(sdkerr.CodeWarning, "no equivalent NTV2InputCrosspointID for '%s'", sel); err != nil {
				return nil, err
			}
		}
		if g.Logger != nil {
			g.Logger.Debug().Str("device", dev.ID).Int("lines", l.Lines).Int("routes", len(l.Routes)).Str("source", path).Msg("crosspoints parsed")
		}
		out = append(out, l)
	}
	return out, nil
}

func (g *Generator) parseFile(id, path string) (*Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "open '%s'", path)
	}
	defer f.Close()
	return Parse(id, path, f, g.Xpts)
}

// WriteListings writes the file banner followed by every listing.
func WriteListings(w io.Writer, tool, timestamp string, listings []*Listing) error {
	if _, err := fmt.Fprintf(w, "//\tGenerated by '%s' on %s\n", tool, timestamp); err != nil {
		return err
	}
	for _, l := range listings {
		if err := l.Write(w); err != nil {
			return err
		}
	}
	return nil
}
