package companion

import "time"

const activeWindow = 5 * time.Minute

// timeFormats follows parseTimeBestEffortV2's fallback chain, extended
// with the RFC3339Nano-with-fractional-seconds shape session transcripts
// actually emit.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

// parseTimeBestEffort tries every known transcript timestamp shape,
// returning the zero Time if none match.
func parseTimeBestEffort(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ActivityStatus is the session-count / last-activity summary for a repo
// (spec.md §4.8).
type ActivityStatus struct {
	SessionCount int       `json:"session_count"`
	LastActivity time.Time `json:"last_activity,omitempty"`
	Active       bool      `json:"active"`
}

// Activity reports session count and recency for repoPath. A repo with no
// transcript directory yields a zero-value, inactive status.
func (r *Reader) Activity(repoPath string) ActivityStatus {
	files := r.sessionFiles(repoPath)
	status := ActivityStatus{SessionCount: len(files)}

	var last time.Time
	for _, path := range files {
		lines := tailLines(path, 1)
		if len(lines) == 0 {
			continue
		}
		ev, ok := parseEvent(lines[0])
		if !ok {
			continue
		}
		t := parseTimeBestEffort(ev.Timestamp)
		if t.After(last) {
			last = t
		}
	}

	if !last.IsZero() {
		status.LastActivity = last
		status.Active = time.Since(last) < activeWindow
	}
	return status
}
