package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/michael1026/reflectcheck/types/scan"
)

const MarkerLength = 10

func AppendIfMissing(slice []string, s string) []string {
	if slices.Contains(slice, s) {
		return slice
	}
	return append(slice, s)
}

// Marker returns a fresh alphanumeric token taken from a v4 UUID. The UUID is
// read from crypto/rand, so Marker is safe to call from many goroutines.
func Marker() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:MarkerLength]
}

func JSONMarshal(t interface{}) ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(t)
	return buffer.Bytes(), err
}

// DecodeBody converts a raw response body to text using the charset from
// contentType, a BOM or a <meta> tag. Invalid UTF-8 and undecodable bytes
// return an error wrapping scan.ErrDecode.
func DecodeBody(raw []byte, contentType string) (string, error) {
	enc, name, _ := charset.DetermineEncoding(raw, contentType)

	if name == "utf-8" {
		if _, _, err := transform.Bytes(encoding.UTF8Validator, raw); err != nil {
			return "", fmt.Errorf("%w: %v", scan.ErrDecode, err)
		}
		return string(raw), nil
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", scan.ErrDecode, name, err)
	}

	return string(decoded), nil
}
