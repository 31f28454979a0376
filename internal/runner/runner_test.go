package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxvaer/hostprobe/internal/config"
	"github.com/maxvaer/hostprobe/internal/scanner"
)

// deadHost refuses connections immediately.
const deadHost = "127.0.0.1:1"

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u.Host
}

func testOpts() *config.Options {
	opts := config.Default()
	opts.Threads = 4
	opts.NoColor = true
	return &opts
}

func run(t *testing.T, opts *config.Options, hosts ...string) (scanner.ResultMap, string) {
	t.Helper()
	var stdout bytes.Buffer
	stdin := strings.NewReader(strings.Join(hosts, "\n") + "\n")
	results, err := Run(context.Background(), opts, stdin, &stdout)
	require.NoError(t, err)
	return results, stdout.String()
}

func TestRunFullData(t *testing.T) {
	live := serve(t, http.StatusOK, "<title>up</title>")
	opts := testOpts()
	opts.ShowFullData = true

	results, out := run(t, opts, live, deadHost)

	assert.Equal(t, "DOMAIN,[FINAL_URL],[STATUS_CODE]\n"+live+",http://"+live+",200\n", out)
	require.Len(t, results, 2)
	assert.True(t, results[live].Active())
	assert.Equal(t, "http", results[live].Protocol)
	assert.Equal(t, scanner.StateInactive, results[deadHost].State)
	assert.Zero(t, results[deadHost].StatusCode)
}

func TestRunCompact(t *testing.T) {
	live := serve(t, http.StatusNotFound, "missing")
	_, out := run(t, testOpts(), live)
	assert.Equal(t, "http://"+live+"\n", out)
}

func TestRunStatusFilters(t *testing.T) {
	ok := serve(t, http.StatusOK, "ok")
	missing := serve(t, http.StatusNotFound, "missing")

	t.Run("include", func(t *testing.T) {
		opts := testOpts()
		opts.FilterCodes = []int{200, 301}
		results, out := run(t, opts, ok, missing)
		assert.Equal(t, "http://"+ok+"\n", out)
		assert.Len(t, results, 2, "filtered hosts stay in the result map")
	})

	t.Run("exclude", func(t *testing.T) {
		opts := testOpts()
		opts.ExcludeCodes = []int{404}
		_, out := run(t, opts, ok, missing)
		assert.Equal(t, "http://"+ok+"\n", out)
	})

	t.Run("class", func(t *testing.T) {
		opts := testOpts()
		opts.MatchClass = []string{"4xx"}
		_, out := run(t, opts, ok, missing)
		assert.Equal(t, "http://"+missing+"\n", out)
	})
}

func TestRunQuietPrintsSortedWithoutHeader(t *testing.T) {
	a := serve(t, http.StatusOK, "a")
	b := serve(t, http.StatusForbidden, "b")
	opts := testOpts()
	opts.Quiet = true
	opts.ShowFullData = true

	_, out := run(t, opts, b, a, deadHost)

	want := []string{
		a + ",http://" + a + ",200",
		b + ",http://" + b + ",403",
	}
	sort.Strings(want)
	assert.Equal(t, strings.Join(want, "\n")+"\n", out)
}

func TestRunJSONLWithFingerprint(t *testing.T) {
	catchAll := serve(t, http.StatusOK, "<html><body>nothing to see here</body></html>")
	opts := testOpts()
	opts.OutputFormat = "jsonl"
	opts.Fingerprint = true

	results, out := run(t, opts, catchAll)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &got))
	assert.Equal(t, catchAll, got["host"])
	assert.Equal(t, true, got["wildcard"])
	assert.Equal(t, "NULL", got["title"])

	fp := results[catchAll].Fingerprint
	require.NotNil(t, fp)
	assert.Equal(t, 4, fp.Len())
}

func TestRunDropWildcards(t *testing.T) {
	catchAll := serve(t, http.StatusOK, "same page for every path")
	opts := testOpts()
	opts.Fingerprint = true
	opts.DropWildcards = true

	_, out := run(t, opts, catchAll)

	assert.Empty(t, out)
}

func TestRunDedupe(t *testing.T) {
	var hosts []string
	for i := 0; i < 3; i++ {
		hosts = append(hosts, serve(t, http.StatusOK, "parked domain"))
	}
	opts := testOpts()
	opts.Dedupe = 1

	_, out := run(t, opts, hosts...)

	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestRunBodyFilters(t *testing.T) {
	login := serve(t, http.StatusOK, "<title>Login</title><p>sign in</p>")
	blank := serve(t, http.StatusOK, "<p>welcome</p>")
	opts := testOpts()
	opts.MatchBody = "login"

	_, out := run(t, opts, login, blank)

	assert.Equal(t, "http://"+login+"\n", out)
}

func TestRunOutputFile(t *testing.T) {
	live := serve(t, http.StatusOK, "ok")
	opts := testOpts()
	opts.OutputFile = filepath.Join(t.TempDir(), "alive.csv")
	opts.OutputFormat = "csv"

	_, out := run(t, opts, live)

	assert.Empty(t, out)
	data, err := os.ReadFile(opts.OutputFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], live+",http,"))
}

func TestRunListFile(t *testing.T) {
	live := serve(t, http.StatusOK, "ok")
	list := filepath.Join(t.TempDir(), "hosts.txt")
	require.NoError(t, os.WriteFile(list, []byte("# targets\n"+live+"\n"), 0644))
	opts := testOpts()
	opts.ListFile = list

	results, err := Run(context.Background(), opts, nil, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, results, live)
}

func TestRunMissingListFile(t *testing.T) {
	opts := testOpts()
	opts.ListFile = filepath.Join(t.TempDir(), "nope.txt")

	_, err := Run(context.Background(), opts, nil, &bytes.Buffer{})

	assert.Error(t, err)
}

func TestRunBadTimeout(t *testing.T) {
	opts := testOpts()
	opts.Timeout = 0

	_, err := Run(context.Background(), opts, strings.NewReader("example.com\n"), &bytes.Buffer{})

	assert.ErrorIs(t, err, scanner.ErrInvalidTimeout)
}

func TestRunCancelled(t *testing.T) {
	live := serve(t, http.StatusOK, "ok")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, testOpts(), strings.NewReader(live+"\n"), &bytes.Buffer{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[live].Active())
}

func TestRunDiscoverFollowsHeadLinks(t *testing.T) {
	linked := serve(t, http.StatusOK, "<title>linked</title>")
	_, linkedPort, _ := strings.Cut(linked, ":")
	page := serve(t, http.StatusOK, `<html><head><link rel="canonical" href="http://localhost:`+linkedPort+`/"></head><body>home</body></html>`)
	_, pagePort, _ := strings.Cut(page, ":")

	opts := testOpts()
	opts.Discover = 1
	opts.Quiet = true

	results, out := run(t, opts, "localhost:"+pagePort)

	require.Len(t, results, 2)
	found := results["localhost:"+linkedPort]
	require.NotNil(t, found)
	assert.True(t, found.Active())
	assert.Equal(t, "linked", found.Title)
	assert.Contains(t, out, "http://localhost:"+linkedPort+"\n")
}
