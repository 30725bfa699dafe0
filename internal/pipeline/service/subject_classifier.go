package service

import (
	"regexp"
	"sort"
	"strings"
)

// SubjectMatch is one tracked subject found in an article, with a match
// strength in (0,1].
type SubjectMatch struct {
	Subject  string
	Strength float64
}

// SubjectClassifier finds which tracked subjects an article concerns. It is
// a pure function of (text, subject list); matching runs before the costly
// sentiment step so unmatched articles never reach the model.
type SubjectClassifier struct {
	subjects []subjectPattern
}

type subjectPattern struct {
	name    string
	aliases []*regexp.Regexp
}

// NewSubjectClassifier compiles word-boundary patterns for each subject and
// its space-separated aliases ("joe biden" matches on "joe" or "biden").
func NewSubjectClassifier(subjects []string) *SubjectClassifier {
	compiled := make([]subjectPattern, 0, len(subjects))
	for _, subject := range subjects {
		subject = strings.ToLower(strings.TrimSpace(subject))
		if subject == "" {
			continue
		}
		var aliases []*regexp.Regexp
		for _, alias := range strings.Fields(subject) {
			aliases = append(aliases, regexp.MustCompile(`\b`+regexp.QuoteMeta(alias)+`\b`))
		}
		compiled = append(compiled, subjectPattern{name: subject, aliases: aliases})
	}
	return &SubjectClassifier{subjects: compiled}
}

// Classify returns the subjects mentioned in the article, strongest first.
// A title hit counts double a body hit.
func (c *SubjectClassifier) Classify(title, body string) []SubjectMatch {
	title = strings.ToLower(title)
	body = strings.ToLower(body)

	var matches []SubjectMatch
	for _, subject := range c.subjects {
		var score, max float64
		for _, alias := range subject.aliases {
			max += 3
			if alias.MatchString(title) {
				score += 2
			}
			if alias.MatchString(body) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, SubjectMatch{
				Subject:  subject.name,
				Strength: score / max,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Strength > matches[j].Strength
	})
	return matches
}
