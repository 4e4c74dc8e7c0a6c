package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type StatusSeed struct {
	Statuses []string `yaml:"statuses"`
}

// LoadStatusSeed reads the operator-defined status vocabulary. Blank and
// case-insensitively repeated names are dropped, first spelling wins.
func LoadStatusSeed(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read status seed: %w", err)
	}
	return ParseStatusSeed(raw)
}

func ParseStatusSeed(raw []byte) ([]string, error) {
	var seed StatusSeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse status seed: %w", err)
	}

	seen := make(map[string]struct{}, len(seed.Statuses))
	out := make([]string, 0, len(seed.Statuses))
	for _, name := range seed.Statuses {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}
