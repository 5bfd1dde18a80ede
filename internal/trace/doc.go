// Package trace records what gotoc does while it builds and serializes
// symbol tables.
//
// Events form a tree of spans: a driver span per command, a unit span per
// symbol table and, at the debug level, one point per symbol. Every event
// carries the unit it belongs to, so output from parallel serialization
// workers stays readable:
//
//	gotoc layout --trace=- --trace-level=detail decls.toml
//
// The stream tracer writes events as they happen. The ring tracer keeps the
// most recent ones in memory and is dumped when an internal compiler error
// aborts a run. Both can run at once.
//
// Tracing state travels in a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithUnit(ctx, "shapes")
//	span, ctx := trace.Start(ctx, trace.ScopeUnit, "irep.json")
//	defer span.End("")
package trace
