package markup

import "context"

// Source produces HTML markup for one content object.
type Source interface {
	Markup(ctx context.Context) (string, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) (string, error)

// Markup calls f.
func (f Func) Markup(ctx context.Context) (string, error) {
	return f(ctx)
}

// HTML is markup used as is.
type HTML string

// Markup returns h unchanged.
func (h HTML) Markup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(h), nil
}
