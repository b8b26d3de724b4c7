package companion

import (
	"fmt"
	"sort"
	"time"
)

const transcriptTailLines = 500

// canonicalToolKeys is the small set of tool-input fields worth
// surfacing in a one-line summary, in priority order (spec.md §4.8).
var canonicalToolKeys = []string{"file_path", "path", "command", "pattern", "query", "prompt", "description"}

const toolKeyTruncateLen = 80

// MessageKind distinguishes the two message shapes the companion reader
// surfaces.
type MessageKind string

const (
	MessageText    MessageKind = "text"
	MessageToolUse MessageKind = "tool_use"
)

// Message is one flattened, display-ready transcript entry.
type Message struct {
	SessionID string      `json:"session_id"`
	Role      string      `json:"role"`
	Kind      MessageKind `json:"kind"`
	Timestamp time.Time   `json:"timestamp,omitempty"`
	Text      string      `json:"text,omitempty"`
	ToolName  string      `json:"tool_name,omitempty"`
	ToolInput string      `json:"tool_input,omitempty"`
}

// truncate follows truncateStringV2: cut to maxLen-3 and append an
// ellipsis, leaving short strings untouched.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// summarizeToolInput renders a tool_use block's input as a single display
// line, preferring whichever canonical key is present.
func summarizeToolInput(input map[string]interface{}) string {
	for _, key := range canonicalToolKeys {
		v, ok := input[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		return truncate(s, toolKeyTruncateLen)
	}
	return ""
}

// messagesFromSession flattens one session's transcript into Messages:
// assistant text + tool-use blocks, and user text blocks. Tool results
// and system/sidechain bookkeeping lines are not surfaced.
func messagesFromSession(path, sessionID string, lines []string) []Message {
	var out []Message
	for _, line := range lines {
		ev, ok := parseEvent(line)
		if !ok {
			continue
		}
		if ev.Type != "user" && ev.Type != "assistant" {
			continue
		}
		ts := parseTimeBestEffort(ev.Timestamp)

		for _, block := range ev.Message.Content {
			switch {
			case block.Type == "tool_use":
				out = append(out, Message{
					SessionID: sessionID, Role: ev.Message.Role, Kind: MessageToolUse,
					Timestamp: ts, ToolName: block.Name, ToolInput: summarizeToolInput(block.Input),
				})
			case block.Text != "":
				out = append(out, Message{
					SessionID: sessionID, Role: ev.Message.Role, Kind: MessageText,
					Timestamp: ts, Text: block.Text,
				})
			}
		}
	}
	sortMessagesByTime(out)
	return out
}

// RecentMessages returns the trailing messages for a session: the most
// recently modified one if sessionID is empty, per spec.md §4.8 reading
// the trailing 500 transcript lines.
func (r *Reader) RecentMessages(repoPath, sessionID string) []Message {
	files := r.sessionFiles(repoPath)
	if len(files) == 0 {
		return nil
	}

	path := files[0]
	resolvedID := sessionIDFromPath(path)
	if sessionID != "" {
		found := false
		for _, f := range files {
			if sessionIDFromPath(f) == sessionID {
				path, resolvedID, found = f, sessionID, true
				break
			}
		}
		if !found {
			return nil
		}
	}

	return messagesFromSession(path, resolvedID, tailLines(path, transcriptTailLines))
}

// sortMessagesByTime orders a message slice chronologically, following
// BuildTimelineFromData's sort step; messages with an unparseable
// timestamp sort first rather than panicking on a zero Time.
func sortMessagesByTime(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}

func (m Message) String() string {
	if m.Kind == MessageToolUse {
		return fmt.Sprintf("[%s] %s: %s(%s)", m.Role, m.Kind, m.ToolName, m.ToolInput)
	}
	return fmt.Sprintf("[%s] %s: %s", m.Role, m.Kind, truncate(m.Text, 100))
}
