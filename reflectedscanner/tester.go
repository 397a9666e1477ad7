package reflectedscanner

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/michael1026/reflectcheck/scanhttp"
	"github.com/michael1026/reflectcheck/types/scan"
)

type Hooks struct {
	// OnParameter fires before the probes of a parameter are scheduled.
	OnParameter func(param scan.Parameter, total int)
	OnOutcome   func(outcome scan.Outcome)
	// OnReport fires once a parameter is fully aggregated.
	OnReport func(report scan.ParameterReport)
}

// Tester drives a whole run: parameters are tested one after another, the
// characters of a single parameter concurrently.
type Tester struct {
	config  scan.Config
	client  *http.Client
	agents  *scanhttp.HeaderPool
	headers map[string]string
	chars   []string
	logger  *zap.Logger
	hooks   Hooks
}

// NewTester validates config before anything touches the network. agents may
// be nil only when random agents are disabled.
func NewTester(config scan.Config, client *http.Client, agents *scanhttp.HeaderPool, logger *zap.Logger) (*Tester, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.RandomAgent && agents == nil {
		return nil, &scan.ConfigError{Field: "agents", Reason: "random agent mode needs a user agent list"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	chars := EffectiveChars(scan.DefaultChars, config.Include, config.Exclude)
	if len(chars) == 0 {
		return nil, &scan.ConfigError{Field: "exclude", Reason: "every test character is excluded"}
	}

	return &Tester{
		config:  config,
		client:  client,
		agents:  agents,
		headers: scanhttp.DefaultHeaders(),
		chars:   chars,
		logger:  logger,
	}, nil
}

func (t *Tester) SetHooks(hooks Hooks) {
	t.hooks = hooks
}

func (t *Tester) Chars() []string {
	return t.chars
}

// Analyze returns one report per query parameter of rawUrl, in URL order.
// A URL without parameters gives an empty list and ErrNoParametersFound.
// On interruption the reports finished so far are returned with
// ErrInterrupted.
func (t *Tester) Analyze(ctx context.Context, rawUrl string) ([]scan.ParameterReport, error) {
	params, err := ExtractParameters(rawUrl)
	if err != nil {
		return nil, err
	}

	reports := []scan.ParameterReport{}
	if len(params) == 0 {
		return reports, scan.ErrNoParametersFound
	}

	for _, param := range params {
		report, err := t.RunTests(ctx, rawUrl, param)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return reports, fmt.Errorf("%w: %v", scan.ErrInterrupted, err)
			}
			return reports, err
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// RunTests probes every effective character against a single parameter.
func (t *Tester) RunTests(ctx context.Context, rawUrl string, param scan.Parameter) (scan.ParameterReport, error) {
	probes := make([]scan.Probe, 0, len(t.chars))
	for _, char := range t.chars {
		probe, err := BuildProbe(rawUrl, param.Name, param.Value, char)
		if err != nil {
			return scan.ParameterReport{}, err
		}
		probes = append(probes, probe)
	}

	t.logger.Info("testing parameter",
		zap.String("param", param.Name),
		zap.String("original", param.Value),
		zap.Int("chars", len(probes)))

	if t.hooks.OnParameter != nil {
		t.hooks.OnParameter(param, len(probes))
	}

	scheduler := &Scheduler{
		Concurrency: t.config.Concurrency,
		Delay:       t.config.Delay,
		DelayMin:    t.config.DelayMin,
		DelayMax:    t.config.DelayMax,
		OnOutcome:   t.hooks.OnOutcome,
	}

	outcomes, err := scheduler.Run(ctx, probes, t.testReflection)
	if err != nil {
		return scan.ParameterReport{}, err
	}

	report := Aggregate(param, outcomes)

	t.logger.Info("parameter done",
		zap.String("param", param.Name),
		zap.Int("reflected", len(report.Reflected)),
		zap.Int("not_reflected", len(report.NotReflected)),
		zap.Int("errors", len(report.Errors)))

	if t.hooks.OnReport != nil {
		t.hooks.OnReport(report)
	}

	return report, nil
}

func (t *Tester) testReflection(ctx context.Context, probe scan.Probe) scan.Outcome {
	outcome := Execute(ctx, t.client, probe, t.requestHeaders(), t.config.Timeout)

	switch outcome.Status {
	case scan.Errored:
		t.logger.Debug("probe failed",
			zap.String("param", probe.Param),
			zap.String("char", probe.Char),
			zap.Error(outcome.Err))
	case scan.Reflected:
		t.logger.Debug("reflected",
			zap.String("param", probe.Param),
			zap.String("char", probe.Char),
			zap.Strings("contexts", outcome.Contexts))
	}

	return outcome
}

// requestHeaders is called once per probe so random mode rotates per request.
func (t *Tester) requestHeaders() map[string]string {
	var base map[string]string
	if t.config.RandomAgent {
		base = t.agents.Random()
	} else {
		base = t.headers
	}

	headers := make(map[string]string, len(base)+len(t.config.Headers))
	for name, value := range base {
		headers[name] = value
	}
	for name, value := range t.config.Headers {
		headers[name] = value
	}
	return headers
}
