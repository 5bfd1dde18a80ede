package trace

import "context"

// frame is the tracing state carried by a context.
type frame struct {
	tracer Tracer
	span   uint64
	unit   string
}

type frameKey struct{}

func frameOf(ctx context.Context) frame {
	if ctx != nil {
		if f, ok := ctx.Value(frameKey{}).(frame); ok {
			return f
		}
	}
	return frame{tracer: Nop}
}

func withFrame(ctx context.Context, f frame) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, frameKey{}, f)
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return frameOf(ctx).tracer
}

// WithTracer attaches t to ctx. A nil t disables tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	f := frameOf(ctx)
	f.tracer = t
	return withFrame(ctx, f)
}

// WithUnit tags every event started under the returned context with unit.
func WithUnit(ctx context.Context, unit string) context.Context {
	f := frameOf(ctx)
	f.unit = unit
	return withFrame(ctx, f)
}

// UnitFromContext returns the unit set by WithUnit.
func UnitFromContext(ctx context.Context) string {
	return frameOf(ctx).unit
}

// Start opens a span under the span carried by ctx and returns a context
// carrying the new span.
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	f := frameOf(ctx)
	span := begin(f.tracer, scope, name, f.span, f.unit)
	if span.id == 0 {
		return span, ctx
	}
	f.span = span.id
	return span, withFrame(ctx, f)
}

// Point emits an instant event under the span carried by ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	f := frameOf(ctx)
	if !f.tracer.Enabled() || !f.tracer.Level().ShouldEmit(scope) {
		return
	}
	f.tracer.Emit(&Event{
		Time:     now(),
		Seq:      nextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: f.span,
		Unit:     f.unit,
		Name:     name,
		Detail:   detail,
	})
}
