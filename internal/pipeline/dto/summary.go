package dto

import "fmt"

// RunSummary aggregates the counts of one pipeline cycle. Per-item and
// per-source failures end up here instead of aborting the run.
type RunSummary struct {
	Discovered       int               `json:"discovered"`
	Fetched          int               `json:"fetched"`
	SkippedDuplicate int               `json:"skipped_duplicate"`
	NoSubject        int               `json:"no_subject"`
	Analyzed         int               `json:"analyzed"`
	Verdicts         int               `json:"verdicts"`
	InverseBias      int               `json:"inverse_bias"`
	Errored          int               `json:"errored"`
	SourceErrors     map[string]string `json:"source_errors,omitempty"`
}

// Format renders the summary as a short human-readable message.
func (s *RunSummary) Format() string {
	return fmt.Sprintf(
		"discovered=%d fetched=%d duplicates=%d no_subject=%d analyzed=%d verdicts=%d inverse=%d errors=%d source_errors=%d",
		s.Discovered, s.Fetched, s.SkippedDuplicate, s.NoSubject,
		s.Analyzed, s.Verdicts, s.InverseBias, s.Errored, len(s.SourceErrors),
	)
}
