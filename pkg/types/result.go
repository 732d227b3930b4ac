package types

// RunResult is the terminal outcome of a migration run: per-outcome counters
// plus one message per failed record. The run always completes and reports
// exclusively through this structure; callers decide how to escalate a
// non-zero Failed count.
type RunResult struct {
	RunID   string   `json:"run_id"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Processed returns the number of records that reached a terminal outcome.
func (r RunResult) Processed() int {
	return r.Created + r.Updated + r.Skipped + r.Failed
}
