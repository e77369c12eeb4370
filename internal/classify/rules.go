// Package classify holds the ordered keyword and prefix tables that tag a
// commit message with priority, impact and conventional commit type.
package classify

import (
	"regexp"
	"strings"

	"github.com/just-nibble/git-digest/internal/domain"
)

// Rule yields Result when the message contains any of Keywords.
type Rule[T any] struct {
	Keywords []string
	Result   T
}

// RuleSet evaluates rules top-down; the first match wins.
type RuleSet[T any] struct {
	rules    []Rule[T]
	fallback T
}

// NewRuleSet copies rules so later changes to the caller's slice have no effect.
// Keywords are matched case-insensitively.
func NewRuleSet[T any](fallback T, rules ...Rule[T]) RuleSet[T] {
	copied := make([]Rule[T], len(rules))
	for i, r := range rules {
		keywords := make([]string, len(r.Keywords))
		for j, k := range r.Keywords {
			keywords[j] = strings.ToLower(k)
		}
		copied[i] = Rule[T]{Keywords: keywords, Result: r.Result}
	}
	return RuleSet[T]{rules: copied, fallback: fallback}
}

func (s RuleSet[T]) Match(message string) T {
	lower := strings.ToLower(message)
	for _, r := range s.rules {
		for _, k := range r.Keywords {
			if strings.Contains(lower, k) {
				return r.Result
			}
		}
	}
	return s.fallback
}

func DefaultPriorityRules() RuleSet[domain.Level] {
	return NewRuleSet(domain.LevelLow,
		Rule[domain.Level]{Keywords: []string{"fix", "hotfix", "urgent"}, Result: domain.LevelHigh},
		Rule[domain.Level]{Keywords: []string{"feat", "update"}, Result: domain.LevelMedium},
	)
}

func DefaultImpactRules() RuleSet[domain.Level] {
	return NewRuleSet(domain.LevelLow,
		Rule[domain.Level]{Keywords: []string{"break", "major"}, Result: domain.LevelHigh},
		Rule[domain.Level]{Keywords: []string{"feature", "enhancement"}, Result: domain.LevelMedium},
	)
}

// TypeRule maps a conventional commit prefix to a display type.
type TypeRule struct {
	Prefix string
	Type   string
}

const OtherType = "Other"

// TypeTable matches "<prefix>(<scope>)?:" at the start of a message.
type TypeTable struct {
	patterns []*regexp.Regexp
	types    []string
}

func NewTypeTable(rules ...TypeRule) TypeTable {
	t := TypeTable{
		patterns: make([]*regexp.Regexp, 0, len(rules)),
		types:    make([]string, 0, len(rules)),
	}
	for _, r := range rules {
		t.patterns = append(t.patterns, regexp.MustCompile(`^`+regexp.QuoteMeta(r.Prefix)+`(\(.*?\))?:`))
		t.types = append(t.types, r.Type)
	}
	return t
}

func DefaultTypeTable() TypeTable {
	return NewTypeTable(
		TypeRule{Prefix: "feat", Type: "Feature"},
		TypeRule{Prefix: "fix", Type: "Bug Fix"},
		TypeRule{Prefix: "docs", Type: "Documentation"},
		TypeRule{Prefix: "style", Type: "Styling"},
		TypeRule{Prefix: "refactor", Type: "Refactor"},
		TypeRule{Prefix: "test", Type: "Testing"},
		TypeRule{Prefix: "chore", Type: "Maintenance"},
	)
}

func (t TypeTable) Type(message string) string {
	for i, p := range t.patterns {
		if p.MatchString(message) {
			return t.types[i]
		}
	}
	return OtherType
}

// Rules bundles the tables used to classify one commit.
type Rules struct {
	Priority RuleSet[domain.Level]
	Impact   RuleSet[domain.Level]
}

func DefaultRules() Rules {
	return Rules{
		Priority: DefaultPriorityRules(),
		Impact:   DefaultImpactRules(),
	}
}

func (r Rules) Classify(message string) (priority, impact domain.Level) {
	return r.Priority.Match(message), r.Impact.Match(message)
}

// SplitMessage returns the first line as title and the trimmed rest as description.
func SplitMessage(message string) (title, description string) {
	lines := strings.Split(message, "\n")
	title = lines[0]
	if len(lines) > 1 {
		description = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}
	return title, description
}
