package polyhedra

import "github.com/rs/zerolog"

// logger receives diagnostics from the long-running operations (decomposition
// progress, internal consistency failures). It discards everything until
// SetLogger is called.
var logger = zerolog.Nop()

// SetLogger routes the package's diagnostic output to the given logger.
func SetLogger(l zerolog.Logger) {
	logger = l
}
