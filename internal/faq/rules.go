// Package faq implements the two deterministic reply stages that run before
// the language model:
//
//   - a static rule table (ordered regex pattern sets with canned answers),
//     loaded from YAML and immutable after construction;
//   - per-hotel FAQ matching over stored question/answer pairs.
//
// Both are pure functions of their inputs, safe for concurrent use and do no
// logging; callers decide what to record.
package faq

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// Rule is one compiled static FAQ entry.
type Rule struct {
	Name     string
	Patterns []*regexp.Regexp
	Answer   string
}

// Matches reports whether any of the rule's patterns matches text.
func (r Rule) Matches(text string) bool {
	for _, re := range r.Patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// RuleSet is an ordered, read-only list of rules.
type RuleSet struct {
	rules []Rule
}

type fileRule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	Answer   string   `yaml:"answer"`
}

type ruleFile struct {
	Rules []fileRule `yaml:"rules"`
}

// Parse decodes and compiles a YAML rule table. Every pattern is compiled
// case-insensitive; a rule needs at least one pattern and a non-empty answer.
func Parse(data []byte) (*RuleSet, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("faq: decode rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, errors.New("faq: rule table is empty")
	}
	rs := &RuleSet{rules: make([]Rule, 0, len(f.Rules))}
	for i, fr := range f.Rules {
		name := strings.TrimSpace(fr.Name)
		if name == "" {
			name = fmt.Sprintf("rule_%d", i+1)
		}
		if len(fr.Patterns) == 0 {
			return nil, fmt.Errorf("faq: rule %q has no patterns", name)
		}
		if strings.TrimSpace(fr.Answer) == "" {
			return nil, fmt.Errorf("faq: rule %q has an empty answer", name)
		}
		r := Rule{Name: name, Answer: fr.Answer}
		for _, p := range fr.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("faq: rule %q: %w", name, err)
			}
			r.Patterns = append(r.Patterns, re)
		}
		rs.rules = append(rs.rules, r)
	}
	return rs, nil
}

// Default returns the built-in rule table (check-in, check-out, parking,
// breakfast).
func Default() *RuleSet {
	rs, err := Parse(defaultRulesYAML)
	if err != nil {
		panic(err)
	}
	return rs
}

// Load reads a rule table from path, or returns Default when path is empty.
func Load(path string) (*RuleSet, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("faq: read rules: %w", err)
	}
	return Parse(data)
}

// Match returns the first rule with a pattern matching msg. Blank input never
// matches.
func (rs *RuleSet) Match(msg string) (Rule, bool) {
	msg = strings.TrimSpace(msg)
	if rs == nil || msg == "" {
		return Rule{}, false
	}
	for _, r := range rs.rules {
		if r.Matches(msg) {
			return r, true
		}
	}
	return Rule{}, false
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Names lists rule names in evaluation order.
func (rs *RuleSet) Names() []string {
	if rs == nil {
		return nil
	}
	out := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.Name
	}
	return out
}
