package reflectedscanner

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/michael1026/reflectcheck/types/scan"
	"github.com/michael1026/reflectcheck/util"
)

func parseTarget(rawUrl string) (*url.URL, error) {
	parsedUrl, err := url.Parse(rawUrl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scan.ErrMalformedURL, err)
	}
	if parsedUrl.Scheme != "http" && parsedUrl.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", scan.ErrMalformedURL, parsedUrl.Scheme)
	}
	if parsedUrl.Host == "" {
		return nil, fmt.Errorf("%w: missing host", scan.ErrMalformedURL)
	}
	return parsedUrl, nil
}

// ExtractParameters returns the query parameters of rawUrl in the order they
// first appear. For repeated names the first value is kept. A key or value
// with a broken escape ("100%") is kept as its raw text.
func ExtractParameters(rawUrl string) ([]scan.Parameter, error) {
	parsedUrl, err := parseTarget(rawUrl)
	if err != nil {
		return nil, err
	}

	var params []scan.Parameter
	seen := make(map[string]bool)

	for _, segment := range strings.Split(parsedUrl.RawQuery, "&") {
		if segment == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(segment, "=")

		key := unescapeOrRaw(rawKey)
		value := unescapeOrRaw(rawValue)

		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		params = append(params, scan.Parameter{Name: key, Value: value})
	}

	return params, nil
}

func unescapeOrRaw(raw string) string {
	if decoded, err := url.QueryUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// EffectiveChars is defaults followed by include, without duplicates and
// without anything listed in exclude.
func EffectiveChars(defaults, include, exclude []string) []string {
	chars := make([]string, 0, len(defaults)+len(include))

	for _, list := range [][]string{defaults, include} {
		for _, c := range list {
			if c == "" || slices.Contains(exclude, c) {
				continue
			}
			chars = util.AppendIfMissing(chars, c)
		}
	}

	return chars
}

// BuildProbe rewrites param in baseUrl to original+char+marker. Every other
// part of the URL, including the order and encoding of the other query
// segments, is left untouched.
func BuildProbe(baseUrl, param, original, char string) (scan.Probe, error) {
	parsedUrl, err := parseTarget(baseUrl)
	if err != nil {
		return scan.Probe{}, err
	}

	marker := util.Marker()
	parsedUrl.RawQuery = replaceParam(parsedUrl.RawQuery, param, original+char+marker)

	return scan.Probe{
		Param:    param,
		Original: original,
		Char:     char,
		Marker:   marker,
		URL:      parsedUrl.String(),
		Expected: char + marker,
	}, nil
}

func replaceParam(rawQuery, param, value string) string {
	var segments []string
	replaced := false

	for _, segment := range strings.Split(rawQuery, "&") {
		if segment == "" {
			continue
		}
		rawKey, _, _ := strings.Cut(segment, "=")
		if unescapeOrRaw(rawKey) != param {
			segments = append(segments, segment)
			continue
		}
		if replaced {
			continue
		}
		segments = append(segments, rawKey+"="+url.QueryEscape(value))
		replaced = true
	}

	if !replaced {
		segments = append(segments, url.QueryEscape(param)+"="+url.QueryEscape(value))
	}

	return strings.Join(segments, "&")
}
