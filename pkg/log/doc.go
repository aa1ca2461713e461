// Package log provides the structured, context-aware logger used by the
// ledger client and its CLI.
//
// Loggers are passed explicitly or through a context:
//
//	lg := log.New(log.Config{Format: "logfmt", Level: log.LevelDebug})
//	ctx = log.SetContextLogger(ctx, lg.WithName("watch"))
//	...
//	log.FromContext(ctx).Info("mempool acquired", "slot", slot)
//
// When the context carries an OpenTelemetry span, SetContextLogger wraps the
// logger in a SpanLogger so that entries are also recorded as span events.
// Spans come from the embedding service's tracer; the CLI runs without them.
package log
