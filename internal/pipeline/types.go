package pipeline

// Var is a pipeline variable value.
type Var string

// Step operations.
const (
	OpCheck    = "check"    // every glob in Paths matches at least one entry
	OpRename   = "rename"   // the single match of Src becomes To
	OpUnzip    = "unzip"    // extract archive Src into To
	OpDelete   = "delete"   // remove Src, recursively
	OpMove     = "move"     // From/Src moves into folder To, keeping its name
	OpZip      = "zip"      // archive folder Src as Src.zip
	OpReplace  = "replace"  // replace Old with New in file Src
	OpDelLines = "dellines" // drop every line of Src containing Token
	OpRun      = "run"      // run Command (argv) or Shell, output to Log
	OpHook     = "hook"     // call the registered Go hook named Hook
)

// Step is one operation. Every string field is subject to $VAR expansion.
type Step struct {
	Name    string   `toml:"name" yaml:"name"`
	Op      string   `toml:"op" yaml:"op" validate:"required,oneof=check rename unzip delete move zip replace dellines run hook"`
	Src     string   `toml:"src" yaml:"src"`
	From    string   `toml:"from" yaml:"from"`
	To      string   `toml:"to" yaml:"to"`
	Paths   []string `toml:"paths" yaml:"paths"`
	Old     string   `toml:"old" yaml:"old"`
	New     string   `toml:"new" yaml:"new"`
	Token   string   `toml:"token" yaml:"token"`
	Command []string `toml:"command" yaml:"command"`
	Shell   string   `toml:"shell" yaml:"shell"`
	Log     string   `toml:"log" yaml:"log"`
	Hook    string   `toml:"hook" yaml:"hook"`
}

// Phase is a named, ordered list of steps. A phase is skipped when the
// plan or the executor gives its Unless variable a non-empty value.
type Phase struct {
	Name            string `toml:"name" yaml:"name" validate:"required"`
	Steps           []Step `toml:"step" yaml:"steps" validate:"dive"`
	Unless          string `toml:"unless" yaml:"unless"`
	Onerror         string `toml:"onerror" yaml:"onerror"`
	ContinueOnError bool   `toml:"continue_on_error" yaml:"continue_on_error"`
}

// Pipeline is a complete plan: variables plus phases run in order between
// an optional prologue and epilogue.
type Pipeline struct {
	Name            string         `toml:"name" yaml:"name"`
	ContinueOnError bool           `toml:"continue_on_error" yaml:"continue_on_error"`
	Vars            map[string]Var `toml:"vars" yaml:"vars"`
	Prologue        Phase          `toml:"prologue" yaml:"prologue" validate:"-"`
	Phases          []Phase        `toml:"phase" yaml:"phases" validate:"required,dive"`
	Epilogue        Phase          `toml:"epilogue" yaml:"epilogue" validate:"-"`
}
