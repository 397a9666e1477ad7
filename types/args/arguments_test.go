package args

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderArgs(t *testing.T) {
	var h HeaderArgs
	require.NoError(t, h.Set("X-Test: one"))
	require.NoError(t, h.Set("Cookie:session=abc:def"))
	assert.Error(t, h.Set("no-colon"))

	assert.Equal(t, map[string]string{
		"X-Test": "one",
		"Cookie": "session=abc:def",
	}, h.Map())
	assert.Equal(t, "X-Test: one, Cookie:session=abc:def", h.String())
}

func TestSplitChars(t *testing.T) {
	assert.Nil(t, SplitChars(""))
	assert.Equal(t, []string{"<", ">", "$"}, SplitChars("<,>,,$"))
	assert.Equal(t, []string{" ", "{{"}, SplitChars(" ,{{"))
}

func TestParseDelayRange(t *testing.T) {
	min, max, err := ParseDelayRange("0.1,0.5")
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, min)
	assert.Equal(t, 500*time.Millisecond, max)

	// ordering is left to scan.Config.Validate
	min, max, err = ParseDelayRange("0.5, 0.1")
	require.NoError(t, err)
	assert.Greater(t, min, max)

	_, _, err = ParseDelayRange("0.5")
	assert.Error(t, err)
	_, _, err = ParseDelayRange("a,b")
	assert.Error(t, err)
}
