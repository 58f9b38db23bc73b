package logging

import (
	"context"
	"maps"

	"github.com/rs/zerolog"
)

type contextHook struct{}

func (h contextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}
	if v := ctx.Value(fieldContextKey{}); v != nil {
		fctx := v.(fieldContext)
		for k, v := range fctx.strValues {
			e.Str(k, v)
		}
		for k, v := range fctx.intValues {
			e.Int(k, v)
		}
	}
}

type fieldContextKey struct{}
type fieldContext struct {
	strValues map[string]string
	intValues map[string]int
}

// getFieldContext returns a copy of the fields stored in ctx, so that adding
// to a derived context never leaks fields into its parent.
func getFieldContext(ctx context.Context) fieldContext {
	if v := ctx.Value(fieldContextKey{}); v != nil {
		fctx := v.(fieldContext)
		return fieldContext{
			strValues: maps.Clone(fctx.strValues),
			intValues: maps.Clone(fctx.intValues),
		}
	}
	return fieldContext{
		strValues: make(map[string]string),
		intValues: make(map[string]int),
	}
}

// ContextWithStr adds a string to the context such that it will be included in all log lines printed with this context.
func ContextWithStr(ctx context.Context, key, value string) context.Context {
	fctx := getFieldContext(ctx)
	fctx.strValues[key] = value
	return context.WithValue(ctx, fieldContextKey{}, fctx)
}

// ContextWithInt adds an int to the context such that it will be included in all log lines printed with this context.
func ContextWithInt(ctx context.Context, key string, value int) context.Context {
	fctx := getFieldContext(ctx)
	fctx.intValues[key] = value
	return context.WithValue(ctx, fieldContextKey{}, fctx)
}

// StrFromContext returns a string field previously stored with ContextWithStr.
func StrFromContext(ctx context.Context, key string) (string, bool) {
	if v := ctx.Value(fieldContextKey{}); v != nil {
		s, ok := v.(fieldContext).strValues[key]
		return s, ok
	}
	return "", false
}
