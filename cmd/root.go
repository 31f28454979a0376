package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maxvaer/hostprobe/internal/config"
	"github.com/maxvaer/hostprobe/internal/filter"
	"github.com/maxvaer/hostprobe/internal/logger"
	"github.com/maxvaer/hostprobe/internal/runner"
	"github.com/maxvaer/hostprobe/pkg/version"
)

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"INPUT", []string{"domain", "bruteforce", "list", "cidr", "ports"}},
	{"PROBING", []string{"threads", "timeout", "retries", "max-redirects", "rate-limit", "user-agent"}},
	{"EXTRACTION", []string{"extract", "fingerprint", "discover"}},
	{"MATCHERS", []string{"filter-codes", "match-class", "match-body"}},
	{"FILTERS", []string{"exclude-codes", "exclude-size", "exclude-body", "drop-wildcards", "wildcard-tolerance", "dedupe"}},
	{"OUTPUT", []string{"show-full-data", "quiet", "output", "format", "sort", "tree", "no-color", "on-result"}},
	{"CONFIGURATION", []string{"config", "verbose", "log-level", "log-format", "log-file"}},
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := config.Default()
	var (
		configFile string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:     "hostprobe [flags] < hosts.txt",
		Short:   "Fast HTTPS/HTTP host liveness prober",
		Version: version.Version,
		Long: `hostprobe reads host names from stdin and reports which of them answer
over HTTPS or HTTP. Both schemes are raced per host; the first response
wins. Optional extraction collects title, body and size metadata, and
fingerprinting flags hosts that serve the same page for every path.`,
		Example: `  cat hosts.txt | hostprobe
  cat hosts.txt | hostprobe -s -t 100 --timeout 5
  cat words.txt | hostprobe -b -d example.com -s
  cat hosts.txt | hostprobe -f 200,301 -q
  cat hosts.txt | hostprobe --fingerprint --drop-wildcards --format jsonl -o alive.jsonl
  hostprobe --cidr 10.0.0.0/24 --ports 80,443,8080
  hostprobe -l hosts.txt --config hostprobe.yaml --on-result "notify {url}"`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfigFile(cmd.Flags(), configFile, &opts); err != nil {
				return err
			}
			if verbose {
				opts.Log.Level = "debug"
			}
			if opts.DropWildcards {
				opts.Fingerprint = true
			}
			return config.Validate(&opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			log, logCloser, err := logger.New(opts.Log)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer logCloser.Close()
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx = log.WithContext(ctx)

			_, err = runner.Run(ctx, &opts, os.Stdin, os.Stdout)
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.SortFlags = false

	// Input
	f.StringVarP(&opts.Domain, "domain", "d", "", "Target domain; with -b, stdin labels are prepended to it")
	f.BoolVarP(&opts.Bruteforce, "bruteforce", "b", false, "Treat stdin as a word list of labels for --domain")
	f.StringVarP(&opts.ListFile, "list", "l", "", "File with one host per line (in addition to stdin)")
	f.StringVar(&opts.CIDR, "cidr", "", "CIDR range or single IP to probe (e.g. 192.168.1.0/24)")
	f.StringVar(&opts.Ports, "ports", "", "Ports for CIDR hosts (comma-separated, e.g. 80,443,8080)")

	// Probing
	f.IntVarP(&opts.Threads, "threads", "t", config.DefaultThreads, "Number of hosts probed concurrently")
	f.IntVar(&opts.Timeout, "timeout", config.DefaultTimeout, "Per-request timeout in seconds")
	f.IntVarP(&opts.Retries, "retries", "r", config.DefaultRetries, "Probe attempts per host")
	f.IntVarP(&opts.MaxRedirects, "max-redirects", "L", config.DefaultMaxRedirects, "Maximum redirects to follow (0 = do not follow)")
	f.IntVar(&opts.RateLimit, "rate-limit", 0, "Maximum requests per second across all probes")
	f.StringVar(&opts.UserAgent, "user-agent", "", "Fixed User-Agent (default: random per host from a built-in pool)")

	// Extraction
	f.BoolVar(&opts.Extract, "extract", false, "Collect title, body, headers and size metadata")
	f.BoolVar(&opts.Fingerprint, "fingerprint", false, "Probe random paths per host to detect catch-all pages")
	f.IntVar(&opts.Discover, "discover", 0, "Probe in-scope hosts linked from live pages, up to N passes (0 = off)")

	// Status filtering
	f.VarP(newIntListValue(&opts.FilterCodes, filter.ParseStatusList), "filter-codes", "f", "Only show these status codes (comma-separated)")
	f.VarP(newIntListValue(&opts.ExcludeCodes, filter.ParseStatusList), "exclude-codes", "e", "Hide these status codes (comma-separated)")
	f.StringSliceVar(&opts.MatchClass, "match-class", nil, "Only show these status classes (e.g. 2xx,3xx)")

	// Response filtering
	f.Var(newIntListValue(&opts.ExcludeSize, parseSizes), "exclude-size", "Hide responses of these content lengths (comma-separated)")
	f.StringVar(&opts.MatchBody, "match-body", "", "Only show responses whose title or body contains this string")
	f.StringVar(&opts.ExcludeBody, "exclude-body", "", "Hide responses whose title or body contains this string")
	f.BoolVar(&opts.DropWildcards, "drop-wildcards", false, "Hide results matching their host's fingerprint (implies --fingerprint)")
	f.IntVar(&opts.WildcardTol, "wildcard-tolerance", config.DefaultWildcardTol, "Size tolerance in bytes for wildcard matching")
	f.IntVar(&opts.Dedupe, "dedupe", 0, "Hide responses seen more than N times across hosts (0 = off)")

	// Output
	f.BoolVarP(&opts.ShowFullData, "show-full-data", "s", false, "Print host, final URL and status code")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "No header, banner or progress; print results once probing ends")
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Output file path")
	f.StringVar(&opts.OutputFormat, "format", config.DefaultFormat, "Output format: text, jsonl, csv")
	f.StringVar(&opts.SortBy, "sort", "", "Sort results: host, status, size (buffers until probing ends)")
	f.BoolVar(&opts.Tree, "tree", false, "Print a tree of live hosts after probing")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	f.StringVar(&opts.OnResultCmd, "on-result", "", "Shell command to run for each result (receives JSON on stdin)")

	// Configuration
	f.StringVar(&configFile, "config", "", "YAML config file; explicit flags take precedence")
	f.BoolVarP(&verbose, "verbose", "v", false, "Debug logging (same as --log-level debug)")
	f.StringVar(&opts.Log.Level, "log-level", opts.Log.Level, "Log level: debug, info, warn, error")
	f.StringVar(&opts.Log.Format, "log-format", opts.Log.Format, "Log format: console, json")
	f.StringVar(&opts.Log.File, "log-file", "", "Also write logs to this file (rotated)")

	// --show-codes is the historical name of --show-full-data.
	f.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "show-codes" {
			name = "show-full-data"
		}
		return pflag.NormalizedName(name)
	})

	// Custom help: categorized flags like httpx.
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})

	return cmd
}

// applyConfigFile loads path into opts and then re-applies every flag that
// was set explicitly, so the command line wins over the file.
func applyConfigFile(fs *pflag.FlagSet, path string, opts *config.Options) error {
	if path == "" {
		return nil
	}

	type setting struct {
		value string
		slice []string
	}
	explicit := make(map[string]setting)
	fs.Visit(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			explicit[f.Name] = setting{slice: sv.GetSlice()}
			return
		}
		explicit[f.Name] = setting{value: f.Value.String()}
	})

	if err := config.LoadFile(path, opts); err != nil {
		return err
	}

	for name, s := range explicit {
		f := fs.Lookup(name)
		var err error
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			err = sv.Replace(s.slice)
		} else {
			err = f.Value.Set(s.value)
		}
		if err != nil {
			return fmt.Errorf("re-applying --%s: %w", name, err)
		}
	}
	return nil
}

// intListValue implements pflag.Value and pflag.SliceValue for
// comma-separated integer lists. The first Set replaces the default,
// later ones append.
type intListValue struct {
	target  *[]int
	parse   func(string) ([]int, error)
	changed bool
}

func newIntListValue(target *[]int, parse func(string) ([]int, error)) *intListValue {
	return &intListValue{target: target, parse: parse}
}

func (v *intListValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	return strings.Join(v.GetSlice(), ",")
}

func (v *intListValue) Set(s string) error {
	vals, err := v.parse(s)
	if err != nil {
		return err
	}
	if !v.changed {
		*v.target = vals
		v.changed = true
		return nil
	}
	*v.target = append(*v.target, vals...)
	return nil
}

func (v *intListValue) Type() string { return "ints" }

func (v *intListValue) Append(s string) error {
	vals, err := v.parse(s)
	if err != nil {
		return err
	}
	*v.target = append(*v.target, vals...)
	return nil
}

func (v *intListValue) Replace(items []string) error {
	vals, err := v.parse(strings.Join(items, ","))
	if err != nil {
		return err
	}
	*v.target = vals
	return nil
}

func (v *intListValue) GetSlice() []string {
	out := make([]string, len(*v.target))
	for i, n := range *v.target {
		out[i] = strconv.Itoa(n)
	}
	return out
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid size %q", p)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	// Pad to fixed column width for aligned descriptions.
	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	// Show default for non-zero values.
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
    __              __                  __
   / /_  ____  ____/ /_____  _________  / /_  ___
  / __ \/ __ \/ ___/ __/ __ \/ ___/ __ \/ __ \/ _ \
 / / / / /_/ (__  ) /_/ /_/ / /  / /_/ / /_/ /  __/
/_/ /_/\____/____/\__/ .___/_/   \____/_.___/\___/  %s
                    /_/

`, ver)
}
