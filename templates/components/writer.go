// Package components holds small templ components shared by pages and partials.
package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Writer writes HTML fragments and keeps the first error
type Writer struct {
	ctx context.Context
	w   io.Writer
	err error
}

// NewWriter wraps w for rendering in ctx
func NewWriter(ctx context.Context, w io.Writer) *Writer {
	return &Writer{ctx: ctx, w: w}
}

// Raw writes trusted markup as is
func (hw *Writer) Raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// Text writes escaped text
func (hw *Writer) Text(s string) {
	hw.Raw(templ.EscapeString(s))
}

// Render renders a child component
func (hw *Writer) Render(c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(hw.ctx, hw.w)
}

// Err returns the first write error
func (hw *Writer) Err() error {
	return hw.err
}
