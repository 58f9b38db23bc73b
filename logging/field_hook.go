package logging

import "github.com/rs/zerolog"

// FieldHook adds a fixed set of string fields to every event.
type FieldHook struct {
	Fields map[string]string
}

func (h FieldHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	for k, v := range h.Fields {
		e.Str(k, v)
	}
}
