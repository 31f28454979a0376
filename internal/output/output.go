package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/maxvaer/hostprobe/internal/scanner"
)

// Stats holds aggregate run statistics.
type Stats struct {
	Total       int
	Active      int
	Printed     int
	Filtered    int
	Duration    time.Duration
	HostsPerSec float64
}

// Inactive returns the number of hosts that never answered.
func (s Stats) Inactive() int {
	return s.Total - s.Active
}

// Entry is one printable result together with the verdicts computed for it
// by the runner.
type Entry struct {
	*scanner.ProbeResult
	Wildcard bool `json:"wildcard"`
}

// Writer is implemented by each output format.
type Writer interface {
	WriteHeader() error
	WriteResult(entry Entry) error
	WriteFooter(stats Stats) error
	Close() error
}

// Options selects and configures a Writer.
type Options struct {
	Format   string    // text, jsonl or csv
	File     string    // empty writes to Stdout
	Stdout   io.Writer // defaults to os.Stdout
	FullData bool
	NoColor  bool
	Quiet    bool
	SortBy   string // buffer and replay sorted by host, status or size
}

// NewWriter creates the writer for o.Format. Output files are truncated.
func NewWriter(o Options) (Writer, error) {
	w := o.Stdout
	if w == nil {
		w = os.Stdout
	}
	var closer io.Closer
	if o.File != "" {
		f, err := os.Create(o.File)
		if err != nil {
			return nil, fmt.Errorf("creating output file: %w", err)
		}
		w, closer = f, f
		o.NoColor = true
	}

	var out Writer
	switch o.Format {
	case "", "text":
		out = newTextWriter(w, closer, o.FullData, o.NoColor, o.Quiet)
	case "jsonl":
		out = newJSONLWriter(w, closer)
	case "csv":
		out = newCSVWriter(w, closer)
	default:
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("unknown output format %q", o.Format)
	}

	if o.SortBy != "" {
		out = NewSortedWriter(out, o.SortBy)
	}
	return out, nil
}

// Line renders a result the way text output prints it: host, final URL and
// status in full-data mode, the reachable scheme://host otherwise.
func Line(r *scanner.ProbeResult, fullData bool) string {
	return formatLine(r, fullData, strconv.Itoa)
}

// formatLine is Line with a custom rendering of the status code.
func formatLine(r *scanner.ProbeResult, fullData bool, status func(int) string) string {
	if fullData {
		return r.Host + "," + r.FinalURL + "," + status(r.StatusCode)
	}
	return r.HostURL
}
