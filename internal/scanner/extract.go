package scanner

import (
	"context"
	"crypto/md5"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/maxvaer/hostprobe/internal/crawl"
)

// MaxBodySize caps how much of a response body is read for extraction.
const MaxBodySize = 1 << 20

// Placeholder for a title or body element the document does not contain.
const missingElement = "NULL"

var (
	titleSelector, titleSelectorErr = cascadia.Compile("title")
	bodySelector, bodySelectorErr   = cascadia.Compile("body")
)

// Extract fills the metadata fields of result from resp. requested is the
// URL the probe was sent to before any redirect. A body read error leaves
// an empty body; it never fails the probe.
func Extract(ctx context.Context, resp *http.Response, requested *url.URL, result *ProbeResult, cfg *Config, rng *rand.Rand) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		cfg.Logger.Debug().Str("host", result.Host).Err(err).Msg("body read failed")
		raw = nil
	}
	body := string(raw)

	result.ContentType = resp.Header.Get("Content-Type")
	result.Headers = dumpHeaders(resp.Header)
	result.ContentLength = contentLength(resp.Header, body)
	result.WordCount = len(strings.Fields(body))
	result.LineCount = strings.Count(body, "\n") + 1
	result.BodyHash = md5.Sum(raw)
	if requested != nil && resp.Request != nil {
		result.CrossHost = resp.Request.URL.Host != requested.Host
	}

	base := requested
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}
	extractElements(body, base, result, cfg)

	if cfg.Fingerprint {
		host := result.Host
		if resp.Request != nil && resp.Request.URL.Host != "" {
			host = resp.Request.URL.Host
		}
		fp := DetectFingerprint(ctx, host, cfg, rng)
		result.Fingerprint = &fp
	}
}

func extractElements(body string, base *url.URL, result *ProbeResult, cfg *Config) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		cfg.Logger.Warn().Str("host", result.Host).Err(err).Msg("html parse failed")
		return
	}

	if titleSelectorErr != nil {
		cfg.Logger.Warn().Err(titleSelectorErr).Msg("title selector unavailable")
	} else {
		result.Title = innerHTML(doc.FindMatcher(titleSelector))
	}
	if bodySelectorErr != nil {
		cfg.Logger.Warn().Err(bodySelectorErr).Msg("body selector unavailable")
	} else {
		result.Body = innerHTML(doc.FindMatcher(bodySelector))
	}
	if cfg.CollectLinks && base != nil {
		result.Links = crawl.LinkHosts(doc, base)
	}
}

func innerHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return missingElement
	}
	html, err := sel.First().Html()
	if err != nil {
		return missingElement
	}
	return html
}

// contentLength prefers a parseable Content-Length header and falls back to
// the character count of the body read.
func contentLength(h http.Header, body string) int64 {
	if v := h.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	return int64(utf8.RuneCountInString(body))
}

func dumpHeaders(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range h[k] {
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
