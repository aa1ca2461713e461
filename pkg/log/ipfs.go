package log

import (
	golog "github.com/ipfs/go-log/v2"
	"go.uber.org/zap"
)

// NewIPFSLogger returns a Logger for an ipfs go-log subsystem. Subsystem
// levels can then be tuned at runtime through GOLOG_LOG_LEVEL, which is
// useful when the client is embedded in a larger go-log based service.
func NewIPFSLogger(system string, level Level) Logger {
	// Errors only signal an unknown level name; go-log keeps its default then.
	_ = golog.SetLogLevel(system, string(level))

	zl := golog.Logger(system).SugaredLogger.Desugar().WithOptions(zap.AddCallerSkip(2)).Sugar()
	return &ZapLogger{lg: zl}
}
