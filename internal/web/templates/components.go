// Package templates holds the HTML fragments returned to HTMX requests.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert renders the error banner swapped into the page on failure.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p class="alert-message">%s</p>`,
			templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, `<p class="alert-code">Code: %s</p></div>`, templ.EscapeString(code))
		return err
	})
}

// FailedRecord is one rejected row shown in an import summary.
type FailedRecord struct {
	Name   string
	Email  string
	Reason string
	Code   string
}

// ImportSummary renders the outcome of an import.
func ImportSummary(fileName string, succeeded int, failed []FailedRecord) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<div class="import-summary"><p>%s: %d imported, %d failed</p>`,
			templ.EscapeString(fileName), succeeded, len(failed)); err != nil {
			return err
		}
		if len(failed) > 0 {
			if _, err := io.WriteString(w, `<table class="import-failures"><thead><tr><th>Name</th><th>Email</th><th>Reason</th><th>Code</th></tr></thead><tbody>`); err != nil {
				return err
			}
			for _, f := range failed {
				if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
					templ.EscapeString(f.Name), templ.EscapeString(f.Email),
					templ.EscapeString(f.Reason), templ.EscapeString(f.Code)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</tbody></table>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
