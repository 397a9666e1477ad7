package reflectedscanner

import (
	"github.com/michael1026/reflectcheck/types/scan"
)

// Aggregate sorts outcomes into the three buckets of a ParameterReport,
// keeping the order the outcomes are given in.
func Aggregate(param scan.Parameter, outcomes []scan.Outcome) scan.ParameterReport {
	report := scan.ParameterReport{
		Parameter:    param.Name,
		Original:     param.Value,
		Reflected:    []string{},
		NotReflected: []string{},
		Errors:       []scan.CharError{},
	}

	for _, outcome := range outcomes {
		switch outcome.Status {
		case scan.Reflected:
			report.Reflected = append(report.Reflected, outcome.Char)
			if len(outcome.Contexts) > 0 {
				if report.Contexts == nil {
					report.Contexts = make(map[string][]string)
				}
				report.Contexts[outcome.Char] = outcome.Contexts
			}
		case scan.NotReflected:
			report.NotReflected = append(report.NotReflected, outcome.Char)
		default:
			message := outcome.Message()
			if message == "" {
				message = "unknown error"
			}
			report.Errors = append(report.Errors, scan.CharError{
				Char:    outcome.Char,
				Message: message,
			})
		}
	}

	return report
}
