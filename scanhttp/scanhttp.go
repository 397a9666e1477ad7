package scanhttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/projectdiscovery/fastdialer/fastdialer"

	"github.com/michael1026/reflectcheck/types/scan"
	"github.com/michael1026/reflectcheck/util"
)

// Page is a fetched response with its body already decoded to text.
type Page struct {
	StatusCode  int
	ContentType string
	Body        string
}

// Fetch issues a single GET with the given headers. The timeout covers the
// whole exchange including the body read. Transport failures wrap
// scan.ErrRequest and the underlying error, so a cancelled ctx still matches
// context.Canceled. Undecodable bodies wrap scan.ErrDecode. Any status code is
// a successful fetch.
func Fetch(ctx context.Context, client *http.Client, rawUrl string, headers map[string]string, timeout time.Duration) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scan.ErrRequest, err)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", scan.ErrRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", scan.ErrRequest, err)
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := util.DecodeBody(raw, contentType)
	if err != nil {
		return nil, err
	}

	return &Page{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// BuildHttpClient returns the client shared by every probe of a run.
// Certificate verification is off: targets are often staging hosts with
// self-signed or mismatched certificates.
func BuildHttpClient(concurrency int) (*http.Client, error) {
	fastdialerOpts := fastdialer.DefaultOptions
	fastdialerOpts.EnableFallback = true
	dialer, err := fastdialer.NewDialer(fastdialerOpts)
	if err != nil {
		return nil, fmt.Errorf("building dialer: %w", err)
	}

	return &http.Client{Transport: newTransport(dialer.Dial, concurrency)}, nil
}

func newTransport(dial func(ctx context.Context, network, address string) (net.Conn, error), concurrency int) *http.Transport {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: concurrency,
		IdleConnTimeout:     time.Second * 10,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
	}
	if dial != nil {
		transport.DialContext = dial
	}
	return transport
}
