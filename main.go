package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/michael1026/reflectcheck/reflectedscanner"
	"github.com/michael1026/reflectcheck/scanhttp"
	"github.com/michael1026/reflectcheck/types/args"
	"github.com/michael1026/reflectcheck/types/scan"
	"github.com/michael1026/reflectcheck/util"
)

var (
	red     = color.New(color.FgRed)
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	blue    = color.New(color.FgBlue)
	cyan    = color.New(color.FgCyan)
	magenta = color.New(color.FgMagenta)
)

type options struct {
	randomAgent bool
	agentsFile  string
	delay       bool
	delayRange  string
	concurrent  int
	timeout     int
	exclude     string
	include     string
	headers     args.HeaderArgs
	outputFile  string
	debug       bool
	silent      bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}
	rawUrl := flag.Arg(0)

	config, err := buildConfig(opts)
	if err != nil {
		red.Fprintf(os.Stderr, "[-] %s\n", err)
		return 1
	}

	logger := buildLogger(opts.debug)
	defer logger.Sync()

	var agents *scanhttp.HeaderPool
	if config.RandomAgent {
		agents, err = scanhttp.LoadUserAgents(opts.agentsFile)
		if err != nil {
			red.Fprintf(os.Stderr, "[-] %s\n", err)
			return 1
		}
	}

	params, err := reflectedscanner.ExtractParameters(rawUrl)
	if err != nil {
		red.Fprintf(os.Stderr, "[-] Error parsing URL: %s\n", err)
		return 1
	}

	client, err := scanhttp.BuildHttpClient(config.Concurrency)
	if err != nil {
		red.Fprintf(os.Stderr, "[-] %s\n", err)
		return 1
	}

	tester, err := reflectedscanner.NewTester(config, client, agents, logger)
	if err != nil {
		red.Fprintf(os.Stderr, "[-] %s\n", err)
		return 1
	}

	if !opts.silent {
		printBanner(rawUrl, opts, config, agents)
	}

	if len(params) == 0 {
		red.Println("[-] No parameters found in the URL!")
		return 0
	}

	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}
	fmt.Printf("[*] Found parameters: %s\n", strings.Join(names, ", "))
	yellow.Println("Testing parameter reflection...")

	tester.SetHooks(newHooks(opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports, err := tester.Analyze(ctx, rawUrl)
	switch {
	case errors.Is(err, scan.ErrInterrupted):
		yellow.Fprintln(os.Stderr, "\n[!] Interrupted")
		writeOutput(opts.outputFile, reports)
	case errors.Is(err, scan.ErrNoParametersFound):
		red.Println("[-] No parameters found in the URL!")
	case err != nil:
		red.Fprintf(os.Stderr, "[-] %s\n", err)
	default:
		if !writeOutput(opts.outputFile, reports) {
			return 1
		}
	}

	return exitCode(err)
}

// exitCode maps the result of a run to the process status. An interrupt is a
// clean exit.
func exitCode(err error) int {
	switch {
	case err == nil,
		errors.Is(err, scan.ErrInterrupted),
		errors.Is(err, scan.ErrNoParametersFound):
		return 0
	default:
		return 1
	}
}

// printableError reports whether an errored outcome is worth showing. Probes
// cut short by an interrupt are not.
func printableError(outcome scan.Outcome) bool {
	return outcome.Status == scan.Errored && !errors.Is(outcome.Err, context.Canceled)
}

func parseFlags() *options {
	opts := &options{}

	flag.BoolVar(&opts.randomAgent, "random-agent", true, "Random User-Agent and Accept header for each request")
	flag.StringVar(&opts.agentsFile, "agents", "useragents.json", "User-Agent list (JSON array or YAML list)")
	flag.BoolVar(&opts.delay, "delay", false, "Random delay before each request")
	flag.StringVar(&opts.delayRange, "delay-range", "0.1,0.5", "Delay range in seconds (format: min,max)")
	flag.IntVarP(&opts.concurrent, "concurrent", "c", 5, "Number of concurrent requests")
	flag.IntVarP(&opts.timeout, "timeout", "t", 5, "Timeout for each request in seconds")
	flag.StringVar(&opts.exclude, "exclude", "", "Characters to remove from the default list (comma separated)")
	flag.StringVar(&opts.include, "include", "", "Characters to add to the default list (comma separated)")
	flag.VarP(&opts.headers, "header", "H", "Extra header sent with every request (\"Name: Value\", repeatable)")
	flag.StringVarP(&opts.outputFile, "output", "o", "", "File to output results to (.json)")
	flag.BoolVar(&opts.debug, "debug", false, "Show more information in output")
	flag.BoolVar(&opts.silent, "silent", false, "Hide banner and progress bar")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] URL\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	return opts
}

func buildConfig(opts *options) (scan.Config, error) {
	delayMin, delayMax, err := args.ParseDelayRange(opts.delayRange)
	if err != nil {
		return scan.Config{}, &scan.ConfigError{Field: "delay-range", Reason: err.Error()}
	}

	config := scan.Config{
		Concurrency: opts.concurrent,
		Timeout:     time.Duration(opts.timeout) * time.Second,
		Delay:       opts.delay,
		DelayMin:    delayMin,
		DelayMax:    delayMax,
		RandomAgent: opts.randomAgent,
		Exclude:     args.SplitChars(opts.exclude),
		Include:     args.SplitChars(opts.include),
		Headers:     opts.headers.Map(),
		Debug:       opts.debug,
	}

	return config, config.Validate()
}

func buildLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func printBanner(rawUrl string, opts *options, config scan.Config, agents *scanhttp.HeaderPool) {
	enabled := func(b bool) string {
		if b {
			return "Enabled"
		}
		return "Disabled"
	}
	listOrNone := func(list []string) string {
		if len(list) == 0 {
			return "[NONE]"
		}
		return strings.Join(list, ", ")
	}

	blue.Printf("\nAnalyzing URL: %s\n", rawUrl)
	cyan.Printf("Low profile mode: %s\n", enabled(config.RandomAgent))
	if agents != nil {
		cyan.Printf("User agents loaded: %d\n", agents.Len())
	}
	cyan.Printf("Concurrent requests: %d\n", config.Concurrency)
	cyan.Printf("Timeout: %s\n", config.Timeout)
	cyan.Printf("Delay: %s\n", enabled(config.Delay))
	cyan.Printf("Delay Range: %s\n", opts.delayRange)
	cyan.Printf("Debug Message: %t\n", config.Debug)
	cyan.Printf("Exclude Characters: %s\n", listOrNone(config.Exclude))
	cyan.Printf("Include Characters: %s\n", listOrNone(config.Include))
	fmt.Println(strings.Repeat("=", 50))
}

func newHooks(opts *options) reflectedscanner.Hooks {
	var bar *progressbar.ProgressBar
	showBar := !opts.debug && !opts.silent

	return reflectedscanner.Hooks{
		OnParameter: func(param scan.Parameter, total int) {
			magenta.Printf(" Testing parameter: %s\n", param.Name)
			magenta.Printf(" Original value: %s\n", param.Value)
			fmt.Println(strings.Repeat("-", 40))

			if showBar {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription(param.Name),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
		},
		OnOutcome: func(outcome scan.Outcome) {
			if bar != nil {
				bar.Add(1)
			}
			if opts.debug && outcome.Status == scan.Reflected {
				yellow.Printf("[+] '%s' reflected unsanitized in response for parameter '%s'\n", outcome.Char, outcome.Param)
			}
			if opts.debug && printableError(outcome) {
				red.Printf("[-] Error testing '%s' for parameter '%s': %s\n", outcome.Char, outcome.Param, outcome.Message())
			}
		},
		OnReport: func(report scan.ParameterReport) {
			if bar != nil {
				bar.Finish()
				bar = nil
			}
			printReport(report, opts.debug)
		},
	}
}

func printReport(report scan.ParameterReport, debug bool) {
	if len(report.Reflected) > 0 {
		green.Println("Reflected characters without sanitization (potential vulnerability):")
		for _, char := range report.Reflected {
			if contexts, ok := report.Contexts[char]; ok && debug {
				green.Printf("  - %s (%s)\n", char, strings.Join(contexts, ", "))
				continue
			}
			green.Printf("  - %s\n", char)
		}
	}
	if len(report.NotReflected) > 0 && debug {
		yellow.Println("Non-reflected or sanitized characters:")
		for _, char := range report.NotReflected {
			yellow.Printf("  - %s\n", char)
		}
	}
	if len(report.Errors) > 0 {
		red.Println("Errors encountered:")
		for _, e := range report.Errors {
			red.Printf("  - %s: %s\n", e.Char, e.Message)
		}
	}
	fmt.Println(strings.Repeat("=", 50))
}

func writeOutput(outputFile string, reports []scan.ParameterReport) bool {
	if outputFile == "" {
		return true
	}

	resultJson, err := util.JSONMarshal(reports)
	if err != nil {
		red.Fprintf(os.Stderr, "Unable to print to file: %s\n", err)
		return false
	}

	if err := os.WriteFile(outputFile, resultJson, 0644); err != nil {
		red.Fprintf(os.Stderr, "Unable to print to file: %s\n", err)
		return false
	}

	return true
}
