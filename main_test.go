package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/michael1026/reflectcheck/types/scan"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 0, exitCode(fmt.Errorf("%w: %w", scan.ErrInterrupted, context.Canceled)))
	assert.Equal(t, 0, exitCode(scan.ErrNoParametersFound))
	assert.Equal(t, 1, exitCode(fmt.Errorf("%w: missing host", scan.ErrMalformedURL)))
	assert.Equal(t, 1, exitCode(&scan.ConfigError{Field: "timeout", Reason: "must be positive"}))
}

func TestPrintableError(t *testing.T) {
	cancelled := fmt.Errorf("%w: %w", scan.ErrRequest, context.Canceled)
	timedOut := fmt.Errorf("%w: %w", scan.ErrRequest, context.DeadlineExceeded)

	assert.False(t, printableError(scan.Outcome{Status: scan.Errored, Err: cancelled}))
	assert.True(t, printableError(scan.Outcome{Status: scan.Errored, Err: timedOut}))
	assert.True(t, printableError(scan.Outcome{Status: scan.Errored, Err: errors.New("connection reset")}))
	assert.False(t, printableError(scan.Outcome{Status: scan.Reflected}))
}
