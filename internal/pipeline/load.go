package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"sdkgen/internal/sdkerr"
)

// Format is the encoding of a pipeline file.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the encoding from a file extension. Anything that is not
// .yaml or .yml is read as TOML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Load reads and validates a pipeline file.
func Load(path string) (*Pipeline, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "pipeline file '%s' not found", path)
	}
	if info.IsDir() {
		return nil, sdkerr.New(sdkerr.KindWrongKind, "pipeline file '%s' is a folder", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sdkerr.Wrap(sdkerr.KindNotFound, err, "reading '%s'", path)
	}
	p, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a pipeline.
func Parse(data []byte, format Format) (*Pipeline, error) {
	var p Pipeline
	if err := decode(data, format, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// decode turns a decoder panic into a syntax error. go-toml panics on some
// malformed array-of-tables layouts, such as a [[phase.step]] that appears
// before any [[phase]].
func decode(data []byte, format Format, p *Pipeline) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = sdkerr.New(sdkerr.KindSyntax, "decoding %s pipeline: %v", format, r)
		}
	}()
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, p)
	default:
		err = toml.Unmarshal(data, p)
	}
	if err != nil {
		return sdkerr.Wrap(sdkerr.KindSyntax, err, "decoding %s pipeline", format)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(stepRules, Step{})
	return v
}

// stepRules checks the operands each operation needs.
func stepRules(sl validator.StructLevel) {
	s := sl.Current().Interface().(Step)
	need := func(ok bool, field string) {
		if !ok {
			sl.ReportError(field, field, field, "required_for_"+s.Op, "")
		}
	}
	switch s.Op {
	case OpCheck:
		need(len(s.Paths) > 0, "Paths")
	case OpRename:
		need(s.Src != "", "Src")
		need(s.To != "", "To")
	case OpUnzip, OpDelete, OpMove, OpZip:
		need(s.Src != "", "Src")
	case OpReplace:
		need(s.Src != "", "Src")
		need(s.Old != "", "Old")
	case OpDelLines:
		need(s.Src != "", "Src")
		need(s.Token != "", "Token")
	case OpRun:
		need(len(s.Command) > 0 || s.Shell != "", "Command")
	case OpHook:
		need(s.Hook != "", "Hook")
	}
}

// Validate checks every phase and step, including the prologue and
// epilogue.
func (p *Pipeline) Validate() error {
	errs := collect(validate.Struct(p))
	for _, ph := range []Phase{p.Prologue, p.Epilogue} {
		for i := range ph.Steps {
			errs = append(errs, collect(validate.Struct(ph.Steps[i]))...)
		}
	}
	seen := make(map[string]bool)
	for _, ph := range p.Phases {
		if seen[ph.Name] {
			errs = append(errs, fmt.Sprintf("phase '%s' defined more than once", ph.Name))
		}
		seen[ph.Name] = true
	}
	if len(errs) > 0 {
		return sdkerr.New(sdkerr.KindSyntax, "invalid pipeline: %s", strings.Join(errs, "; "))
	}
	return nil
}

func collect(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
	}
	return out
}
