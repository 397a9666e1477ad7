package scanhttp

import (
	"math/rand"
	"os"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/michael1026/reflectcheck/types/scan"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

var acceptValues = []string{"text/html", "*/*", "application/json"}

// HeaderPool is the User-Agent list loaded at startup. It is never modified
// after construction and is shared by all probes.
type HeaderPool struct {
	userAgents []string
}

// LoadUserAgents reads a JSON array or YAML list of User-Agent strings.
func LoadUserAgents(path string) (*HeaderPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &scan.ConfigError{Field: "agents", Reason: err.Error()}
	}

	var agents []string
	if err := yaml.Unmarshal(data, &agents); err != nil {
		return nil, &scan.ConfigError{Field: "agents", Reason: "parsing " + path + ": " + err.Error()}
	}

	return NewHeaderPool(agents)
}

func NewHeaderPool(agents []string) (*HeaderPool, error) {
	pool := &HeaderPool{}
	for _, agent := range agents {
		agent = strings.TrimSpace(agent)
		if agent != "" && !slices.Contains(pool.userAgents, agent) {
			pool.userAgents = append(pool.userAgents, agent)
		}
	}

	if len(pool.userAgents) == 0 {
		return nil, &scan.ConfigError{Field: "agents", Reason: "user agent list is empty"}
	}

	return pool, nil
}

func (p *HeaderPool) Len() int {
	return len(p.userAgents)
}

// Random picks a fresh User-Agent and Accept pair. The top-level math/rand
// functions lock internally so Random can be called concurrently.
func (p *HeaderPool) Random() map[string]string {
	return map[string]string{
		"User-Agent": p.userAgents[rand.Intn(len(p.userAgents))],
		"Accept":     acceptValues[rand.Intn(len(acceptValues))],
		"Connection": "keep-alive",
	}
}

func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent": DefaultUserAgent,
		"Accept":     DefaultAccept,
	}
}
