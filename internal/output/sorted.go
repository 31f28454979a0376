package output

import (
	"cmp"
	"slices"
)

// SortedWriter buffers entries and replays them sorted when WriteFooter is
// called. It wraps any other Writer.
type SortedWriter struct {
	inner   Writer
	sortBy  string
	entries []Entry
}

// NewSortedWriter wraps inner and buffers entries for sorted replay. sortBy
// is host, status or size; ties and unknown keys fall back to host order.
func NewSortedWriter(inner Writer, sortBy string) *SortedWriter {
	return &SortedWriter{inner: inner, sortBy: sortBy}
}

func (w *SortedWriter) WriteHeader() error {
	return w.inner.WriteHeader()
}

func (w *SortedWriter) WriteResult(e Entry) error {
	w.entries = append(w.entries, e)
	return nil
}

func (w *SortedWriter) WriteFooter(stats Stats) error {
	slices.SortStableFunc(w.entries, func(a, b Entry) int {
		var c int
		switch w.sortBy {
		case "status":
			c = cmp.Compare(a.StatusCode, b.StatusCode)
		case "size":
			c = cmp.Compare(a.ContentLength, b.ContentLength)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Host, b.Host)
	})
	for _, e := range w.entries {
		if err := w.inner.WriteResult(e); err != nil {
			return err
		}
	}
	w.entries = nil
	return w.inner.WriteFooter(stats)
}

func (w *SortedWriter) Close() error {
	return w.inner.Close()
}
