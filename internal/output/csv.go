package output

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvColumns = []string{
	"host", "protocol", "host_url", "final_url", "status", "title",
	"content_type", "content_length", "words", "lines", "cross_host", "wildcard",
}

// CSVWriter writes results in CSV format, flushing after every row.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

func newCSVWriter(w io.Writer, closer io.Closer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), closer: closer}
}

func (c *CSVWriter) WriteHeader() error {
	return c.write(csvColumns)
}

func (c *CSVWriter) WriteResult(e Entry) error {
	return c.write([]string{
		e.Host,
		e.Protocol,
		e.HostURL,
		e.FinalURL,
		strconv.Itoa(e.StatusCode),
		e.Title,
		e.ContentType,
		strconv.FormatInt(e.ContentLength, 10),
		strconv.Itoa(e.WordCount),
		strconv.Itoa(e.LineCount),
		strconv.FormatBool(e.CrossHost),
		strconv.FormatBool(e.Wildcard),
	})
}

func (c *CSVWriter) WriteFooter(Stats) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

func (c *CSVWriter) write(record []string) error {
	if err := c.w.Write(record); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}
