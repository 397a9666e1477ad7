package util

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michael1026/reflectcheck/types/scan"
)

func TestMarker(t *testing.T) {
	alnum := regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		m := Marker()
		require.Len(t, m, MarkerLength)
		require.Regexp(t, alnum, m)
		require.False(t, seen[m], "marker %s repeated", m)
		seen[m] = true
	}
}

func TestAppendIfMissing(t *testing.T) {
	s := AppendIfMissing(nil, "<")
	s = AppendIfMissing(s, ">")
	s = AppendIfMissing(s, "<")
	assert.Equal(t, []string{"<", ">"}, s)
}

func TestJSONMarshalKeepsHTML(t *testing.T) {
	out, err := JSONMarshal(map[string]string{"c": "<&>"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"<&>"`)
}

func TestDecodeBody(t *testing.T) {
	body, err := DecodeBody([]byte("<b>héllo</b>"), "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "<b>héllo</b>", body)

	// é in latin-1
	body, err = DecodeBody([]byte("caf\xe9"), "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "café", body)

	_, err = DecodeBody([]byte("bad \xc3\x28 bytes"), "text/html; charset=utf-8")
	require.Error(t, err)
	assert.True(t, errors.Is(err, scan.ErrDecode))
}
