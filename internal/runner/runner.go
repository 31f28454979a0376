package runner

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/maxvaer/hostprobe/internal/config"
	"github.com/maxvaer/hostprobe/internal/filter"
	"github.com/maxvaer/hostprobe/internal/hook"
	"github.com/maxvaer/hostprobe/internal/hosts"
	"github.com/maxvaer/hostprobe/internal/output"
	"github.com/maxvaer/hostprobe/internal/scanner"
	"github.com/maxvaer/hostprobe/internal/useragent"
	"github.com/maxvaer/hostprobe/pkg/version"
)

// Run executes the full probing pipeline: load hosts, probe them, filter and
// write every result to stdout (or the output file). The diagnostic logger
// is taken from ctx. It returns the complete result map, including hosts
// that were filtered or never answered.
func Run(ctx context.Context, opts *config.Options, stdin io.Reader, stdout io.Writer) (scanner.ResultMap, error) {
	log := zerolog.Ctx(ctx).With().Str("run_id", uuid.NewString()).Logger()

	// 1. Load hosts.
	src := hosts.Source{
		ListFile:   opts.ListFile,
		Domain:     opts.Domain,
		Bruteforce: opts.Bruteforce,
		CIDR:       opts.CIDR,
		Ports:      opts.Ports,
	}
	interactive := isTerminal(stdin)
	if interactive {
		if opts.ListFile == "" && opts.CIDR == "" && (opts.Domain == "" || opts.Bruteforce) {
			return nil, ErrNoInput
		}
	} else {
		src.Input = stdin
	}
	targets, err := hosts.Load(src)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("hosts", len(targets)).Msg("hosts loaded")

	// 2. Create HTTP clients.
	client, err := scanner.NewClient(scanner.ClientOptions{
		Timeout:      opts.TimeoutDuration(),
		MaxRedirects: opts.MaxRedirects,
		MaxIdleConns: 2 * opts.Threads,
	})
	if err != nil {
		return nil, fmt.Errorf("creating http client: %w", err)
	}
	defer client.CloseIdleConnections()

	var fpClient *http.Client
	if opts.Fingerprint {
		fpClient, err = scanner.NewClient(scanner.ClientOptions{
			Timeout:      scanner.FingerprintTimeout,
			MaxRedirects: scanner.FingerprintMaxRedirects,
		})
		if err != nil {
			return nil, fmt.Errorf("creating fingerprint client: %w", err)
		}
		defer fpClient.CloseIdleConnections()
	}

	// 3. Build filter chain.
	chain, err := buildChain(opts)
	if err != nil {
		return nil, err
	}

	// 4. Create output writer.
	sortBy := opts.SortBy
	if opts.Quiet && sortBy == "" {
		sortBy = "host"
	}
	out, err := output.NewWriter(output.Options{
		Format:   opts.OutputFormat,
		File:     opts.OutputFile,
		Stdout:   stdout,
		FullData: opts.ShowFullData,
		NoColor:  opts.NoColor,
		Quiet:    opts.Quiet,
		SortBy:   sortBy,
	})
	if err != nil {
		return nil, err
	}
	defer out.Close()

	stderrTTY := term.IsTerminal(int(os.Stderr.Fd()))
	if !opts.Quiet && stderrTTY {
		printBanner(os.Stderr, opts, len(targets))
	}
	if err := out.WriteHeader(); err != nil {
		return nil, err
	}

	// 5. Hook runner, pause toggle and progress.
	var hookRunner *hook.Runner
	if opts.OnResultCmd != "" {
		hookRunner = hook.NewRunner(opts.OnResultCmd, log)
	}

	var pauser *scanner.Pauser
	if interactive && !opts.Quiet {
		var cleanup func()
		pauser, cleanup = startStdinToggle(stdin, log)
		defer cleanup()
	}

	progress := output.NewProgress(os.Stderr, len(targets), !opts.Quiet && stderrTTY)
	progress.Start()

	agents := useragent.Default()
	if opts.UserAgent != "" {
		agents = []string{opts.UserAgent}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimit)
	}

	var (
		writeErr error
		printed  []string
	)
	handle := func(r *scanner.ProbeResult) {
		filtered, reason := chain.Apply(r)
		progress.Record(r.Active(), r.Active() && filtered)
		if filtered {
			if r.Active() {
				log.Debug().Str("host", r.Host).Str("filter", reason).Msg("filtered")
			}
			return
		}

		entry := output.Entry{ProbeResult: r}
		if r.Fingerprint != nil {
			entry.Wildcard = filter.IsWildcard(r, opts.WildcardTol)
		}

		progress.Suspend(func() {
			if err := out.WriteResult(entry); err != nil && writeErr == nil {
				writeErr = err
				log.Error().Err(err).Msg("writing result")
			}
		})
		printed = append(printed, r.Host)

		if hookRunner != nil {
			hookRunner.Run(ctx, entry)
		}
	}

	cfg := &scanner.Config{
		Client:            client,
		UserAgents:        agents,
		Retries:           opts.Retries,
		Threads:           opts.Threads,
		Extract:           opts.NeedsExtraction(),
		Fingerprint:       opts.Fingerprint,
		Quiet:             opts.Quiet,
		CollectLinks:      opts.Discover > 0,
		FingerprintClient: fpClient,
		Limiter:           limiter,
		Pauser:            pauser,
		Seed:              rand.Uint64(),
		Logger:            log,
		OnResult:          handle,
	}

	// 6. Probe.
	start := time.Now()
	results := scanner.Dispatch(ctx, targets, cfg)
	if opts.Discover > 0 {
		discover(ctx, results, opts.Discover, opts.Domain, cfg, progress, log)
	}

	// Quiet runs print nothing while probing; the final set goes out at once.
	if opts.Quiet {
		for _, host := range sortedKeys(results) {
			handle(results[host])
		}
	}
	progress.Stop()

	// 7. Footer, tree and summary.
	stats := progress.Stats()
	stats.Duration = time.Since(start)
	if err := out.WriteFooter(stats); err != nil && writeErr == nil {
		writeErr = err
	}
	if opts.Tree {
		output.PrintTree(os.Stderr, printed)
	}

	if ctx.Err() != nil {
		log.Warn().Err(ctx.Err()).Msg("probing interrupted")
	}
	log.Info().
		Int("total", stats.Total).
		Int("active", stats.Active).
		Int("inactive", stats.Inactive()).
		Int("printed", len(printed)).
		Int("filtered", stats.Filtered).
		Dur("duration", stats.Duration).
		Msg("probe complete")

	return results, writeErr
}

// buildChain assembles the output filters enabled in opts. The status
// policy always runs first.
func buildChain(opts *config.Options) (*filter.Chain, error) {
	chain := filter.NewChain()
	if len(opts.FilterCodes) > 0 || len(opts.ExcludeCodes) > 0 {
		chain.Add(filter.NewStatusFilter(opts.FilterCodes, opts.ExcludeCodes))
	}
	if len(opts.MatchClass) > 0 {
		cf, err := filter.NewClassFilter(opts.MatchClass)
		if err != nil {
			return nil, err
		}
		chain.Add(cf)
	}
	if len(opts.ExcludeSize) > 0 {
		chain.Add(filter.NewSizeFilter(opts.ExcludeSize))
	}
	if opts.MatchBody != "" {
		chain.Add(filter.NewBodyMatchFilter(opts.MatchBody))
	}
	if opts.ExcludeBody != "" {
		chain.Add(filter.NewBodyExcludeFilter(opts.ExcludeBody))
	}
	if opts.DropWildcards {
		chain.Add(filter.NewWildcardFilter(opts.WildcardTol))
	}
	// Duplicates last so hidden results do not count towards the threshold.
	if opts.Dedupe > 0 {
		chain.Add(filter.NewDuplicateFilter(opts.Dedupe))
	}
	return chain, nil
}

func sortedKeys(results scanner.ResultMap) []string {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// isTerminal reports whether r is an interactive terminal rather than a
// pipe or file.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printBanner(w io.Writer, opts *config.Options, hostCount int) {
	paint := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if opts.NoColor {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	cyan, white, dim := paint(color.FgCyan), paint(color.FgHiWhite), paint(color.Faint)
	red, green, yellow := paint(color.FgRed), paint(color.FgGreen), paint(color.FgYellow)

	logo := []string{
		`    __              __                  __       `,
		`   / /_  ____  ____/ /_____  _________  / /_  ___ `,
		`  / __ \/ __ \/ ___/ __/ __ \/ ___/ __ \/ __ \/ _ \`,
		` / / / / /_/ (__  ) /_/ /_/ / /  / /_/ / /_/ /  __/`,
		`/_/ /_/\____/____/\__/ .___/_/   \____/_.___/\___/ `,
		`                    /_/                            `,
	}
	fmt.Fprintln(w)
	for i, line := range logo {
		if i == 4 {
			fmt.Fprintf(w, "%s %s\n", cyan(line), dim("v"+version.Version))
			continue
		}
		fmt.Fprintln(w, cyan(line))
	}
	fmt.Fprintln(w, white("    HTTP(S) Host Liveness Prober"))

	onOff := func(on bool) string {
		if on {
			return green("ON")
		}
		return red("OFF")
	}
	rule := dim("  ──────────────────────────────────────")

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s        %s\n", dim("Hosts:"), white(hostCount))
	fmt.Fprintf(w, "  %s      %s\n", dim("Threads:"), yellow(opts.Threads))
	fmt.Fprintf(w, "  %s      %s\n", dim("Timeout:"), white(fmt.Sprintf("%ds x %d", opts.Timeout, opts.Retries)))
	if opts.RateLimit > 0 {
		fmt.Fprintf(w, "  %s   %s\n", dim("Rate limit:"), yellow(fmt.Sprintf("%d req/s", opts.RateLimit)))
	}
	fmt.Fprintf(w, "  %s   %s\n", dim("Extraction:"), onOff(opts.NeedsExtraction()))
	fmt.Fprintf(w, "  %s  %s\n", dim("Fingerprint:"), onOff(opts.Fingerprint))
	if opts.Discover > 0 {
		fmt.Fprintf(w, "  %s    %s\n", dim("Discovery:"), yellow(fmt.Sprintf("%d passes", opts.Discover)))
	}
	fmt.Fprintf(w, "%s\n\n", rule)
}
