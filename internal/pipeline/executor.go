// Package pipeline runs declarative build plans: ordered phases of file
// staging steps, text patches and external commands, with $VAR expansion.
//
// Plans are TOML or YAML. The documentation build ships one embedded; users
// may supply their own with the same schema.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/phuslu/log"

	"sdkgen/internal/logging"
	"sdkgen/internal/sdkerr"
)

// Hook is Go code a plan calls by name with op = "hook".
type Hook func(ctx context.Context, e *Executor) error

// Executor runs one pipeline in a working directory.
type Executor struct {
	Pipeline *Pipeline
	Dir      string
	Runner   Runner
	Logger   *log.Logger
	Hooks    map[string]Hook
	Output   io.Writer // command output when a step names no log file
	DryRun   bool
	Clock    func() time.Time

	vars   map[string]string
	warned map[string]bool
}

// New returns an executor for p rooted at dir.
func New(p *Pipeline, dir string) *Executor {
	return &Executor{
		Pipeline: p,
		Dir:      dir,
		Runner:   ExecRunner{},
		Logger:   logging.Discard(),
		Hooks:    make(map[string]Hook),
	}
}

// Run executes the prologue, every phase in order, then the epilogue. The
// first failing phase stops the run unless errors are tolerated.
func (e *Executor) Run(ctx context.Context) error {
	if err := e.RunPhase(ctx, e.Pipeline.Prologue); err != nil {
		return err
	}
	for i, ph := range e.Pipeline.Phases {
		if err := e.RunPhase(ctx, ph); err != nil {
			if rest := len(e.Pipeline.Phases) - i - 1; rest > 0 {
				e.Logger.Info().Int("phases", rest).Msg("remaining phases skipped due to error(s)")
			}
			return err
		}
	}
	return e.RunPhase(ctx, e.Pipeline.Epilogue)
}

// RunPhase executes the steps of one phase.
func (e *Executor) RunPhase(ctx context.Context, ph Phase) error {
	if len(ph.Steps) == 0 {
		return nil
	}
	if ph.Unless != "" {
		if v, _ := e.planVar(ph.Unless); v != "" {
			e.Logger.Info().Str("phase", ph.Name).Str("unless", ph.Unless).Msg("skipping phase")
			return nil
		}
	}
	e.Logger.Info().Str("phase", ph.Name).Int("steps", len(ph.Steps)).Msg("starting phase")

	for i, step := range ph.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		s := e.expandStep(step, ph.Name)
		err := e.runStep(ctx, s)
		if err == nil {
			continue
		}
		if ph.Onerror != "" {
			err = fmt.Errorf("%s: %w", e.Expand(ph.Onerror, ph.Name), err)
		}
		if ph.ContinueOnError || e.Pipeline.ContinueOnError {
			e.Logger.Warn().Str("phase", ph.Name).Int("step", i+1).Err(err).Msg("step failed, continuing")
			continue
		}
		return fmt.Errorf("phase '%s' step %d (%s): %w", ph.Name, i+1, stepLabel(s), err)
	}
	return nil
}

func stepLabel(s Step) string {
	if s.Name != "" {
		return s.Name + " " + s.Op
	}
	return s.Op
}

func (e *Executor) runStep(ctx context.Context, s Step) error {
	l := e.Logger.Debug().Str("op", s.Op).Str("name", s.Name)
	if s.Src != "" {
		l = l.Str("src", s.Src)
	}
	if s.To != "" {
		l = l.Str("to", s.To)
	}
	l.Msg("step")

	if e.DryRun {
		e.Logger.Info().Str("op", s.Op).Str("src", s.Src).Str("to", s.To).Msg("[DRY RUN] would execute")
		return nil
	}

	switch s.Op {
	case OpCheck:
		return e.check(s.Paths)
	case OpRename:
		return e.rename(s.Src, s.To)
	case OpUnzip:
		return e.unzip(s.Src, s.To)
	case OpDelete:
		return e.remove(s.Src)
	case OpMove:
		return e.move(s.Src, s.From, s.To)
	case OpZip:
		return e.zip(s.Src)
	case OpReplace:
		return e.replace(s.Src, s.Old, s.New)
	case OpDelLines:
		return e.deleteLines(s.Src, s.Token)
	case OpRun:
		return e.run(ctx, s)
	case OpHook:
		h, ok := e.Hooks[s.Hook]
		if !ok {
			return sdkerr.New(sdkerr.KindNotFound, "no hook named '%s'", s.Hook)
		}
		return h(ctx, e)
	}
	return sdkerr.New(sdkerr.KindSyntax, "unknown op '%s'", s.Op)
}

// Path resolves rel against the working directory.
func (e *Executor) Path(rel string) string {
	if rel == "" {
		return e.Dir
	}
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(e.Dir, rel)
}

func (e *Executor) undefined(m, phase string) {
	if e.warned == nil {
		e.warned = make(map[string]bool)
	}
	if e.warned[m] {
		return
	}
	e.warned[m] = true
	e.Logger.Warn().Str("var", m).Str("phase", phase).Msg("undefined variable")
}
