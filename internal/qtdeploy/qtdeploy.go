// Package qtdeploy copies the Qt runtime a binary needs into an install
// tree.
//
// The platform deploy tool (windeployqt, macdeployqt) is run in JSON mode
// so that it only reports what it would deploy:
//
//	{"files": [{"source": "C:/Qt/6.5/bin/Qt6Core.dll", "target": "C:/stage"}]}
//
// Each source is then copied to the install folder, under the target's
// path relative to the tool's --dir.
package qtdeploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/phuslu/log"

	"sdkgen/internal/logging"
	"sdkgen/internal/pipeline"
	"sdkgen/internal/sdkerr"
)

// File is one entry of the tool's report.
type File struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Report is the tool's JSON output.
type Report struct {
	Files []File `json:"files"`
}

// DefaultTool is the deploy tool for the running platform.
func DefaultTool() string {
	if runtime.GOOS == "darwin" {
		return "macdeployqt"
	}
	return "windeployqt"
}

// Deployer runs the deploy tool for Binary and copies its files into
// Install.
type Deployer struct {
	Tool    string
	Binary  string
	Install string
	Stage   string // --dir given to the tool, defaults to Binary's folder
	DryRun  bool

	Runner pipeline.Runner
	Logger *log.Logger
	Warn   *logging.Warnings
}

// Result counts what was deployed.
type Result struct {
	Copied  int
	Missing int
	Files   []string // install-relative destinations
}

// Run deploys. A failing tool is a CommandFailed error.
func (d *Deployer) Run(ctx context.Context) (*Result, error) {
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Runner == nil {
		d.Runner = pipeline.ExecRunner{}
	}
	tool := d.Tool
	if tool == "" {
		tool = DefaultTool()
	}
	info, err := os.Stat(d.Binary)
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "binary '%s'", d.Binary)
	}
	if info.IsDir() {
		return nil, sdkerr.New(sdkerr.KindWrongKind, "binary '%s' is a folder", d.Binary)
	}
	stage := d.Stage
	if stage == "" {
		stage = filepath.Dir(d.Binary)
	}

	report, err := d.query(ctx, tool, stage)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, f := range report.Files {
		rel, err := filepath.Rel(stage, f.Target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			if err := d.Warn.Warn(sdkerr.CodeWarning, "target '%s' is outside '%s', using install root", f.Target, stage); err != nil {
				return nil, err
			}
			rel = "."
		}
		dst := filepath.Join(d.Install, rel, filepath.Base(f.Source))
		if _, err := os.Stat(f.Source); err != nil {
			res.Missing++
			if err := d.Warn.Warn(sdkerr.CodeWarning, "source file '%s' not found", f.Source); err != nil {
				return nil, err
			}
			continue
		}
		name, _ := filepath.Rel(d.Install, dst)
		res.Files = append(res.Files, filepath.ToSlash(name))
		if d.DryRun {
			d.Logger.Info().Str("source", f.Source).Str("dest", dst).Msg("[DRY RUN] would copy")
			continue
		}
		if err := copyFile(f.Source, dst); err != nil {
			return nil, sdkerr.Wrap(sdkerr.KindStaging, err, "copy '%s' to '%s'", f.Source, dst)
		}
		d.Logger.Debug().Str("source", f.Source).Str("dest", dst).Msg("copied")
		res.Copied++
	}
	d.Logger.Info().Int("copied", res.Copied).Int("missing", res.Missing).Str("install", d.Install).Msg("qt deploy complete")
	return res, nil
}

func (d *Deployer) query(ctx context.Context, tool, stage string) (*Report, error) {
	cmd := pipeline.Command{
		Dir:  filepath.Dir(d.Binary),
		Name: tool,
		Args: []string{"--dry-run", "--json", "--dir", stage, d.Binary},
	}
	var out bytes.Buffer
	d.Logger.Info().Str("command", cmd.String()).Msg("running")
	if err := d.Runner.Run(ctx, cmd, &out); err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindCommandFailed, err, "'%s' failed", cmd.String())
	}
	return ParseReport(out.Bytes())
}

// ParseReport decodes the tool's JSON. Anything printed before the opening
// brace is ignored, since some tool versions log to stdout first.
func ParseReport(data []byte) (*Report, error) {
	if i := bytes.IndexByte(data, '{'); i > 0 {
		data = data[i:]
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindSyntax, err, "parsing deploy tool output")
	}
	for i, f := range r.Files {
		if f.Source == "" || f.Target == "" {
			return nil, sdkerr.New(sdkerr.KindSyntax, "file %d: source and target are required", i+1)
		}
	}
	return &r, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("'%s' is a folder", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
