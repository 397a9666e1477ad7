package reflectedscanner

import (
	"context"
	"net/http"
	"time"

	"github.com/michael1026/reflectcheck/scanhttp"
	"github.com/michael1026/reflectcheck/types/scan"
)

// Execute sends one probe and classifies the response. It never returns an
// error: a failed request is an Errored outcome and is not retried.
func Execute(ctx context.Context, client *http.Client, probe scan.Probe, headers map[string]string, timeout time.Duration) scan.Outcome {
	outcome := scan.Outcome{
		Param: probe.Param,
		Char:  probe.Char,
	}

	page, err := scanhttp.Fetch(ctx, client, probe.URL, headers, timeout)
	if err != nil {
		outcome.Status = scan.Errored
		outcome.Err = err
		return outcome
	}

	outcome.StatusCode = page.StatusCode

	if CheckBodyForReflection(page.Body, probe.Expected) {
		outcome.Status = scan.Reflected
		outcome.Contexts = ReflectionContexts(page.Body, probe.Expected)
	} else {
		outcome.Status = scan.NotReflected
	}

	return outcome
}
