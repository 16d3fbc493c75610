package main

import (
	"errors"
	"fmt"

	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/phuslu/log"

	"sdkgen/internal/sdkerr"
)

// report logs a failed command once, with its source position as fields.
// Coded errors carry their own exit status. Anything else, including orpheus
// usage errors, exits 1.
func report(l *log.Logger, err error) {
	entry := l.Error().Int("status", sdkerr.ExitCode(err))
	var e *sdkerr.Error
	if errors.As(err, &e) {
		entry = entry.Str("kind", e.Kind.String()).Str("code", string(e.ErrorCode()))
		path, line, token := e.Position()
		if path != "" {
			entry = entry.Str("file", path)
		}
		if line > 0 {
			entry = entry.Int("line", line)
		}
		if token != "" {
			entry = entry.Str("token", token)
		}
	}
	entry.Msg(err.Error())
}

// usage reports a missing or malformed flag.
func usage(command, format string, args ...any) error {
	return orpheus.ValidationError(command, fmt.Sprintf(format, args...))
}
