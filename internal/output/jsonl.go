package output

import (
	"encoding/json"
	"io"
)

// JSONLWriter streams one JSON object per result.
type JSONLWriter struct {
	enc    *json.Encoder
	closer io.Closer
}

func newJSONLWriter(w io.Writer, closer io.Closer) *JSONLWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{enc: enc, closer: closer}
}

func (j *JSONLWriter) WriteHeader() error { return nil }

func (j *JSONLWriter) WriteResult(e Entry) error {
	return j.enc.Encode(e)
}

func (j *JSONLWriter) WriteFooter(Stats) error { return nil }

func (j *JSONLWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
