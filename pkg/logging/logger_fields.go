package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component field helpers for common field names
func Component(name string) Field {
	return String("component", name)
}

// PassID tags an entry with the analysis pass it belongs to
func PassID(id string) Field {
	return String("pass_id", id)
}

// Network tags an entry with the ladder network being processed
func Network(id int) Field {
	return Int("network", id)
}

// Stage tags an entry with the pipeline stage (load, decode, build, synthesize)
func Stage(name string) Field {
	return String("stage", name)
}
