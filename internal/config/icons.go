package config

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed icon_rules.yaml
var defaultIconRules []byte

type IconRules struct {
	Version int               `yaml:"version"`
	Default string            `yaml:"default"`
	Icons   map[string]string `yaml:"icons"`
	Rules   []IconRule        `yaml:"rules"`

	compiled []compiledRule
}

type IconRule struct {
	Pattern string `yaml:"pattern"`
	Icon    string `yaml:"icon"`
}

type compiledRule struct {
	re   *regexp.Regexp
	icon string
}

// LoadIconRules reads a rule file, or the embedded defaults when path is empty.
func LoadIconRules(path string) (*IconRules, error) {
	data := defaultIconRules
	if strings.TrimSpace(path) != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading icon rules: %w", err)
		}
	}
	return ParseIconRules(data)
}

// DefaultIconRules returns the embedded rule set. It panics if the embedded file is invalid.
func DefaultIconRules() *IconRules {
	rules, err := ParseIconRules(defaultIconRules)
	if err != nil {
		panic(err)
	}
	return rules
}

func ParseIconRules(data []byte) (*IconRules, error) {
	var rules IconRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("loading icon rules: %w", err)
	}
	if err := validateIconRules(&rules); err != nil {
		return nil, fmt.Errorf("loading icon rules: %w", err)
	}

	rules.compiled = make([]compiledRule, 0, len(rules.Rules))
	for _, rule := range rules.Rules {
		re := regexp.MustCompile("(?i)" + rule.Pattern)
		rules.compiled = append(rules.compiled, compiledRule{re: re, icon: rules.Icons[rule.Icon]})
	}

	return &rules, nil
}

func validateIconRules(r *IconRules) error {
	if r.Version != 1 {
		return fmt.Errorf("unsupported version: %d", r.Version)
	}
	if len(r.Icons) == 0 {
		return fmt.Errorf("at least one icon is required")
	}
	if _, ok := r.Icons[r.Default]; !ok {
		return fmt.Errorf("default icon %q is not defined", r.Default)
	}
	for name, path := range r.Icons {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("icon %s has empty path", name)
		}
	}
	for i, rule := range r.Rules {
		if strings.TrimSpace(rule.Pattern) == "" {
			return fmt.Errorf("rule %d pattern is required", i)
		}
		if _, ok := r.Icons[rule.Icon]; !ok {
			return fmt.Errorf("rule %d references unknown icon: %s", i, rule.Icon)
		}
		if _, err := regexp.Compile("(?i)" + rule.Pattern); err != nil {
			return fmt.Errorf("rule %d pattern: %w", i, err)
		}
	}
	return nil
}

// Pick returns the icon path of the first rule matching the ability name or text.
func (r *IconRules) Pick(name, text string) string {
	if r == nil {
		return ""
	}
	haystack := name + "\n" + text
	for _, rule := range r.compiled {
		if rule.re.MatchString(haystack) {
			return rule.icon
		}
	}
	return r.Icons[r.Default]
}
