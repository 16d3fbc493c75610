// Package sdkerr defines the coded errors shared by every sdkgen command.
//
// Each failure carries a Kind and a numeric exit status. The status values
// are the ones the SDK build scripts have always returned, so CI jobs that
// branch on them keep working. Errors are go-errors values underneath: the
// error code names the kind, and the context holds the source position.
package sdkerr

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/agilira/go-errors"
)

// Kind classifies a failure.
type Kind uint8

const (
	KindNotFound Kind = iota + 1
	KindWrongKind
	KindSyntax
	KindDuplicateDefinition
	KindUnrecognizedSymbol
	KindUnrecognizedDevice
	KindMissingCoverage
	KindUnknownDeviceName
	KindVersionMismatch
	KindOutputIsFolder
	KindWarning
	KindOutputExists
	KindCommandFailed
	KindStaging
)

// Exit statuses.
const (
	CodeOK                 = 0
	CodeFailure            = 1
	CodeNotFound           = 404
	CodeUnknownDeviceName  = 500
	CodeWrongKind          = 501
	CodeVersionMismatch    = 502
	CodeSyntax             = 503
	CodeOutputIsFolder     = 505
	CodeWarning            = 602
	CodeOutputExists       = 603
	CodeUnrecognizedSymbol = 605
	CodeUnrecognizedDevice = 610
	CodeMissingCoverage    = 611
)

// Context keys set on the underlying go-errors value.
const (
	ctxPath   = "path"
	ctxLine   = "line"
	ctxToken  = "token"
	ctxStatus = "status"
)

var kinds = map[Kind]struct {
	name   string
	code   goerrors.ErrorCode
	status int
}{
	KindNotFound:            {"not found", "SDK1404", CodeNotFound},
	KindWrongKind:           {"wrong kind", "SDK1501", CodeWrongKind},
	KindSyntax:              {"syntax error", "SDK1503", CodeSyntax},
	KindDuplicateDefinition: {"duplicate definition", "SDK2503", CodeSyntax},
	KindUnrecognizedSymbol:  {"unrecognized symbol", "SDK1605", CodeUnrecognizedSymbol},
	KindUnrecognizedDevice:  {"unrecognized device", "SDK1610", CodeUnrecognizedDevice},
	KindMissingCoverage:     {"missing canonical coverage", "SDK1611", CodeMissingCoverage},
	KindUnknownDeviceName:   {"unknown device name", "SDK1500", CodeUnknownDeviceName},
	KindVersionMismatch:     {"version mismatch", "SDK1502", CodeVersionMismatch},
	KindOutputIsFolder:      {"output is a folder", "SDK1505", CodeOutputIsFolder},
	KindWarning:             {"warning treated as error", "SDK1602", CodeWarning},
	KindOutputExists:        {"output exists", "SDK1603", CodeOutputExists},
	KindCommandFailed:       {"command failed", "SDK1001", CodeFailure},
	KindStaging:             {"staging error", "SDK2502", CodeVersionMismatch},
}

func (k Kind) String() string {
	if v, ok := kinds[k]; ok {
		return v.name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Code returns the default exit status for the kind.
func (k Kind) Code() int {
	if v, ok := kinds[k]; ok {
		return v.status
	}
	return CodeFailure
}

// ErrorCode returns the go-errors code that identifies the kind.
func (k Kind) ErrorCode() goerrors.ErrorCode {
	if v, ok := kinds[k]; ok {
		return v.code
	}
	return "SDK0000"
}

// Error is a coded failure with optional source position.
type Error struct {
	goError *goerrors.Error
	Kind    Kind
}

func newError(kind Kind, cause error, msg string) *Error {
	var ge *goerrors.Error
	if cause != nil {
		ge = goerrors.Wrap(cause, kind.ErrorCode(), msg)
	} else {
		ge = goerrors.New(kind.ErrorCode(), msg)
	}
	return &Error{goError: ge.WithUserMessage(kind.String()), Kind: kind}
}

// New returns an *Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return newError(kind, nil, fmt.Sprintf(format, args...))
}

// At returns an *Error positioned at path:line, naming the offending token.
func At(kind Kind, path string, line int, token, format string, args ...any) *Error {
	e := newError(kind, nil, fmt.Sprintf(format, args...))
	e.goError.WithContext(ctxPath, path).WithContext(ctxLine, line)
	if token != "" {
		e.goError.WithContext(ctxToken, token)
	}
	return e
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return newError(kind, err, fmt.Sprintf(format, args...))
}

// WithCode overrides the exit status.
func (e *Error) WithCode(code int) *Error {
	e.goError.WithContext(ctxStatus, code)
	return e
}

// Position returns the file, line and token the error was raised at. Any of
// them may be empty.
func (e *Error) Position() (path string, line int, token string) {
	path, _ = e.goError.Context[ctxPath].(string)
	line, _ = e.goError.Context[ctxLine].(int)
	token, _ = e.goError.Context[ctxToken].(string)
	return path, line, token
}

// ErrorCode returns the go-errors code of the error's kind.
func (e *Error) ErrorCode() goerrors.ErrorCode { return e.goError.ErrorCode() }

func (e *Error) Error() string {
	var b strings.Builder
	path, line, token := e.Position()
	if path != "" {
		b.WriteString(path)
		if line > 0 {
			fmt.Fprintf(&b, ":%d", line)
		}
		b.WriteString(": ")
	}
	if e.goError.Message != "" {
		b.WriteString(e.goError.Message)
	} else {
		b.WriteString(e.Kind.String())
	}
	if token != "" {
		fmt.Fprintf(&b, " '%s'", token)
	}
	if e.goError.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.goError.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the go-errors value, whose own Unwrap yields the cause.
func (e *Error) Unwrap() error { return e.goError }

// Is matches a sentinel of the same kind, so ErrNotFound and friends work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.goError.Message == ""
}

// ExitStatus returns the process exit status for the error.
func (e *Error) ExitStatus() int {
	if code, ok := e.goError.Context[ctxStatus].(int); ok && code != 0 {
		return code
	}
	return e.Kind.Code()
}

func sentinel(kind Kind) *Error {
	return &Error{goError: goerrors.New(kind.ErrorCode(), ""), Kind: kind}
}

// Sentinels for errors.Is.
var (
	ErrNotFound            = sentinel(KindNotFound)
	ErrWrongKind           = sentinel(KindWrongKind)
	ErrSyntax              = sentinel(KindSyntax)
	ErrDuplicateDefinition = sentinel(KindDuplicateDefinition)
	ErrUnrecognizedSymbol  = sentinel(KindUnrecognizedSymbol)
	ErrUnrecognizedDevice  = sentinel(KindUnrecognizedDevice)
	ErrMissingCoverage     = sentinel(KindMissingCoverage)
	ErrUnknownDeviceName   = sentinel(KindUnknownDeviceName)
	ErrVersionMismatch     = sentinel(KindVersionMismatch)
	ErrOutputIsFolder      = sentinel(KindOutputIsFolder)
	ErrWarning             = sentinel(KindWarning)
	ErrOutputExists        = sentinel(KindOutputExists)
	ErrCommandFailed       = sentinel(KindCommandFailed)
	ErrStaging             = sentinel(KindStaging)
)

// Has reports whether any error in err's chain has the given kind.
func Has(err error, kind Kind) bool {
	return goerrors.HasCode(err, kind.ErrorCode())
}

// ExitCode maps any error to a process exit status. nil is success, and
// errors that are not *Error exit with status 1.
func ExitCode(err error) int {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitStatus()
	}
	return CodeFailure
}

// KindOf reports the kind of err, or zero if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
