package log

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

const (
	// ErrAttrKey is the field key under which errors are passed to the logger.
	ErrAttrKey = "error"
)

// ErrAttr is a helper to pass an error as the conventional error field:
//
//	logger.Error("write failed", log.ErrAttr(err)...)
func ErrAttr(err error) []any {
	return []any{ErrAttrKey, err}
}

// appendField writes one key/value pair onto a zerolog event. Errors under
// ErrAttrKey additionally carry the stack trace recorded by cockroachdb/errors.
func appendField(e *zerolog.Event, key string, value any) *zerolog.Event {
	if err, ok := value.(error); ok && key == ErrAttrKey {
		e = e.AnErr(key, err)
		if st := extractStacktrace(err); st != "" {
			e = e.Str(StacktraceKey, st)
		}
		return e
	}

	switch v := value.(type) {
	case zerolog.LogObjectMarshaler:
		return e.Object(key, v)
	case error:
		return e.AnErr(key, v)
	case fmt.Stringer:
		return e.Stringer(key, v)
	default:
		return e.Interface(key, v)
	}
}

// appendContext is the zerolog.Context counterpart of appendField used by With.
func appendContext(c zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case zerolog.LogObjectMarshaler:
		return c.Object(key, v)
	case error:
		return c.AnErr(key, v)
	case fmt.Stringer:
		return c.Stringer(key, v)
	default:
		return c.Interface(key, v)
	}
}

// extractStacktrace returns the first stack trace found in the error chain,
// falling back to the verbose rendering of the error.
func extractStacktrace(err error) string {
	for _, layer := range errors.GetAllSafeDetails(err) {
		for _, detail := range layer.SafeDetails {
			if detail != "" {
				return detail
			}
		}
	}
	if verbose := fmt.Sprintf("%+v", err); verbose != err.Error() {
		return verbose
	}
	return ""
}
