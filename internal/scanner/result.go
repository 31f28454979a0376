package scanner

// State is the liveness outcome of a probe.
type State string

const (
	StateActive   State = "ACTIVE"
	StateInactive State = "INACTIVE"
)

// ProbeResult holds everything learned about one host. It is populated once
// by the prober and treated as read-only afterwards.
type ProbeResult struct {
	Host          string       `json:"host"`
	State         State        `json:"state"`
	StatusCode    int          `json:"status_code"`
	Protocol      string       `json:"protocol,omitempty"`
	HostURL       string       `json:"host_url,omitempty"`
	FinalURL      string       `json:"final_url,omitempty"`
	Title         string       `json:"title,omitempty"`
	Body          string       `json:"body,omitempty"`
	Headers       string       `json:"headers,omitempty"`
	ContentType   string       `json:"content_type,omitempty"`
	ContentLength int64        `json:"content_length"`
	WordCount     int          `json:"words"`
	LineCount     int          `json:"lines"`
	CrossHost     bool         `json:"cross_host"`
	Fingerprint   *Fingerprint `json:"fingerprint,omitempty"`

	BodyHash [16]byte `json:"-"` // MD5 of the (truncated) body
	Links    []string `json:"-"` // hosts linked from the whole page, with CollectLinks
	Err      error    `json:"-"` // last transport error for inactive hosts
}

// Active reports whether any scheme answered before retries ran out.
func (r *ProbeResult) Active() bool {
	return r != nil && r.State == StateActive
}

// Fingerprint records how a host answers for paths that almost certainly do
// not exist. The three slices are parallel: index i describes the same
// synthetic probe in each.
type Fingerprint struct {
	ContentLengths []int64 `json:"content_lengths"`
	WordCounts     []int   `json:"word_counts"`
	LineCounts     []int   `json:"line_counts"`
}

// Len returns the number of synthetic probes recorded.
func (f *Fingerprint) Len() int {
	if f == nil {
		return 0
	}
	return len(f.ContentLengths)
}

func (f *Fingerprint) add(length int64, words, lines int) {
	f.ContentLengths = append(f.ContentLengths, length)
	f.WordCounts = append(f.WordCounts, words)
	f.LineCounts = append(f.LineCounts, lines)
}

// ResultMap maps each submitted host to its result.
type ResultMap map[string]*ProbeResult
