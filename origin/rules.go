// Package origin implements the self/external provenance state machine:
// it walks a document's chunks in order and marks each one as
// transcribing the host document's own material or material copied from
// another norm.
package origin

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

//go:embed rules.json
var embeddedRules []byte

// Confidence is the categorical confidence attached to an origin call.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rule is one named lexical trigger, compiled from the rules.json data
// file so the rule set can be extended without touching the state
// machine.
type Rule struct {
	Name       string
	Pattern    *regexp.Regexp
	Confidence Confidence
}

// RuleSet groups the rule tables the classifier consults, so callers (and
// tests) can substitute an alternate table without touching the state
// machine itself.
type RuleSet struct {
	Entry []Rule
	Exit  []Rule
}

type ruleSpec struct {
	Name       string `json:"name"`
	Pattern    string `json:"pattern"`
	Confidence string `json:"confidence"`
}

type ruleFile struct {
	Entry []ruleSpec `json:"entry"`
	Exit  []ruleSpec `json:"exit"`
}

// DefaultRuleSet is compiled once from the embedded rules.json.
// LoadRules replaces it from a caller-supplied file at startup.
var DefaultRuleSet = mustParseRules(embeddedRules)

func mustParseRules(data []byte) RuleSet {
	rs, err := parseRules(data)
	if err != nil {
		panic(fmt.Sprintf("origin: embedded rules.json is invalid: %v", err))
	}
	return rs
}

func parseRules(data []byte) (RuleSet, error) {
	var f ruleFile
	if err := json.Unmarshal(data, &f); err != nil {
		return RuleSet{}, err
	}
	entry, err := compileRules(f.Entry)
	if err != nil {
		return RuleSet{}, err
	}
	exit, err := compileRules(f.Exit)
	if err != nil {
		return RuleSet{}, err
	}
	return RuleSet{Entry: entry, Exit: exit}, nil
}

func compileRules(specs []ruleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		pat, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", spec.Name, err)
		}
		rules = append(rules, Rule{
			Name:       spec.Name,
			Pattern:    pat,
			Confidence: Confidence(spec.Confidence),
		})
	}
	return rules, nil
}

// LoadRules replaces DefaultRuleSet from a JSON file with the same shape
// as the embedded rules.json. Call before any ingestion starts.
func LoadRules(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("origin: reading rules %s: %w", path, err)
	}
	rs, err := parseRules(data)
	if err != nil {
		return fmt.Errorf("origin: parsing rules %s: %w", path, err)
	}
	DefaultRuleSet = rs
	return nil
}
