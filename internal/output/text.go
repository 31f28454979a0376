package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Header is printed before full-data results.
const Header = "DOMAIN,[FINAL_URL],[STATUS_CODE]"

// TextWriter prints one line per result.
type TextWriter struct {
	w        io.Writer
	closer   io.Closer
	fullData bool
	noColor  bool
	quiet    bool
}

func newTextWriter(w io.Writer, closer io.Closer, fullData, noColor, quiet bool) *TextWriter {
	return &TextWriter{w: w, closer: closer, fullData: fullData, noColor: noColor, quiet: quiet}
}

// WriteHeader prints Header in full-data mode unless quiet.
func (t *TextWriter) WriteHeader() error {
	if t.quiet || !t.fullData {
		return nil
	}
	_, err := fmt.Fprintln(t.w, Header)
	return err
}

func (t *TextWriter) WriteResult(e Entry) error {
	_, err := fmt.Fprintln(t.w, formatLine(e.ProbeResult, t.fullData, t.status))
	return err
}

func (t *TextWriter) status(code int) string {
	return t.colorForStatus(code).Sprint(code)
}

// WriteFooter is a no-op; the run summary goes to the logger.
func (t *TextWriter) WriteFooter(Stats) error { return nil }

func (t *TextWriter) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

func (t *TextWriter) colorForStatus(code int) *color.Color {
	var c *color.Color
	switch {
	case code >= 200 && code < 300:
		c = color.New(color.FgGreen)
	case code >= 300 && code < 400:
		c = color.New(color.FgCyan)
	case code >= 400 && code < 500:
		c = color.New(color.FgYellow)
	case code >= 500:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.Reset)
	}
	if t.noColor {
		c.DisableColor()
	}
	return c
}
