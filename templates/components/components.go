package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorState renders a failed render's message. Nothing else is shown with it.
func ErrorState(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(ctx, w)
		hw.Raw(`<div class="error-state" role="alert"><strong>Error:</strong> `)
		hw.Text(message)
		hw.Raw(`</div>`)
		return hw.Err()
	})
}

// Notice renders an informational message
func Notice(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(ctx, w)
		hw.Raw(`<div class="notice">`)
		hw.Text(message)
		hw.Raw(`</div>`)
		return hw.Err()
	})
}

// Option is one entry of a select box
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Select renders a labelled select box. Changing it reloads the page content through htmx.
func Select(name, label string, multiple bool, options []Option) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(ctx, w)
		hw.Raw(`<label>`)
		hw.Text(label)
		hw.Raw(` <select name="`)
		hw.Text(name)
		hw.Raw(`"`)
		if multiple {
			hw.Raw(` multiple`)
		}
		hw.Raw(`>`)
		for _, o := range options {
			hw.Raw(`<option value="`)
			hw.Text(o.Value)
			hw.Raw(`"`)
			if o.Selected {
				hw.Raw(` selected`)
			}
			hw.Raw(`>`)
			if o.Label == "" {
				hw.Text(o.Value)
			} else {
				hw.Text(o.Label)
			}
			hw.Raw(`</option>`)
		}
		hw.Raw(`</select></label>`)
		return hw.Err()
	})
}

// Hidden renders a hidden input so a parameter is sent even when nothing else sets it
func Hidden(name, value string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(ctx, w)
		hw.Raw(`<input type="hidden" name="`)
		hw.Text(name)
		hw.Raw(`" value="`)
		hw.Text(value)
		hw.Raw(`">`)
		return hw.Err()
	})
}
