package tools

import (
	"fmt"

	"github.com/spf13/cast"
)

// Args is the loosely typed argument mapping a tool is called with. Models
// send numbers as JSON numbers or strings, so values are coerced on read.
type Args map[string]any

func (a Args) Int(name string, def int) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("argument %s: %w", name, err)
	}
	return n, nil
}

func (a Args) Float(name string, def float64) (float64, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("argument %s: %w", name, err)
	}
	return f, nil
}
