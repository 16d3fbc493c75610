package pipeline

import (
	"os"
	"regexp"
	"strings"
	"time"
)

// $var or ${var} or $@
var varPattern = regexp.MustCompile(`\$\w+|\$\{[^}]+\}|\$@`)

// Expand substitutes variables in text. $@ is the running phase name.
// Undefined variables are left in place and reported once through the
// executor's logger.
func (e *Executor) Expand(text, phase string) string {
	return varPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := strings.Trim(strings.TrimPrefix(m, "$"), "{}")
		val, ok := e.Lookup(name, phase)
		if !ok {
			e.undefined(m, phase)
			return m
		}
		return val
	})
}

// Lookup resolves a variable: builtins first, then values set on the
// executor, then pipeline vars, then the environment.
func (e *Executor) Lookup(name, phase string) (string, bool) {
	switch name {
	case "TIMESTAMP":
		return e.now().Format("2006-01-02 15:04:05"), true
	case "@":
		return phase, true
	case "cwd":
		return e.Dir, true
	}
	if v, ok := e.planVar(name); ok {
		return v, true
	}
	return os.LookupEnv(name)
}

// planVar resolves a variable from the executor and the pipeline only.
// Phase conditions use it so the caller's environment cannot skip a phase.
func (e *Executor) planVar(name string) (string, bool) {
	if v, ok := e.vars[name]; ok {
		return v, true
	}
	if v, ok := e.Pipeline.Vars[name]; ok {
		return string(v), true
	}
	return "", false
}

// Set defines a variable for later steps. It shadows pipeline vars of the
// same name.
func (e *Executor) Set(name, value string) {
	if e.vars == nil {
		e.vars = make(map[string]string)
	}
	e.vars[name] = value
}

func (e *Executor) expandAll(in []string, phase string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = e.Expand(s, phase)
	}
	return out
}

func (e *Executor) expandStep(s Step, phase string) Step {
	s.Src = e.Expand(s.Src, phase)
	s.From = e.Expand(s.From, phase)
	s.To = e.Expand(s.To, phase)
	s.Paths = e.expandAll(s.Paths, phase)
	s.Old = e.Expand(s.Old, phase)
	s.New = e.Expand(s.New, phase)
	s.Token = e.Expand(s.Token, phase)
	s.Command = e.expandAll(s.Command, phase)
	s.Shell = e.Expand(s.Shell, phase)
	s.Log = e.Expand(s.Log, phase)
	return s
}

func (e *Executor) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}
