// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package tidyrule

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type manifestDocument struct {
	Rules []manifestRule `yaml:"rules"`
}

type manifestRule struct {
	Name        string         `yaml:"name"`
	LogTemplate string         `yaml:"log_template"`
	Scope       string         `yaml:"scope"`
	Weight      uint64         `yaml:"weight"`
	Kind        string         `yaml:"kind"`
	Params      map[string]any `yaml:"params"`
}

// LoadManifest reads a YAML rule manifest from path and returns an Engine
// over the successfully parsed rules, plus the count of rules added.
// Entries with an unrecognized kind are skipped with a warning log rather
// than failing the whole load.
func LoadManifest(path string) (*Engine, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("tidyrule: read manifest %s: %w", path, err)
	}

	var doc manifestDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("tidyrule: parse manifest %s: %w", path, err)
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for _, mr := range doc.Rules {
		kind := Kind(mr.Kind)
		switch kind {
		case KindMisnamed, KindDuplicated, KindPerished:
		default:
			log.Warn().Str("rule", mr.Name).Str("kind", mr.Kind).Msg("tidyrule: unknown rule kind, skipping")
			continue
		}

		scope := mr.Scope
		if scope == "" {
			scope = ScopeAll
		}
		weight := mr.Weight
		if weight == 0 {
			weight = 1
		}

		rules = append(rules, Rule{
			Name:        mr.Name,
			LogTemplate: mr.LogTemplate,
			Scope:       scope,
			Weight:      weight,
			Kind:        kind,
			Params:      mr.Params,
		})
	}

	return NewEngine(rules), len(rules), nil
}
