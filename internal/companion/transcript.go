package companion

import (
	"bufio"
	"encoding/json"
	"os"
)

// rawEvent is one line of a session transcript. Only the fields the
// companion reader needs are declared; unknown fields are ignored rather
// than rejected, since transcript schemas evolve.
type rawEvent struct {
	Type               string     `json:"type"`
	UUID               string     `json:"uuid"`
	Timestamp          string     `json:"timestamp"`
	SessionID          string     `json:"sessionId"`
	LogicalParentUUID  string     `json:"logicalParentUuid"`
	Message            rawMessage `json:"message"`
}

type rawMessage struct {
	Role    string         `json:"role"`
	Content []rawContentBlock `json:"content"`
}

// rawContentBlock covers the block shapes that appear in message content:
// plain text, and tool-use invocations. rawMessage.UnmarshalJSON turns a
// plain string content field into a single text block.
type rawContentBlock struct {
	Type  string                 `json:"type"`
	Text  string                 `json:"text"`
	Name  string                 `json:"name"`
	Input map[string]interface{} `json:"input"`
}

// UnmarshalJSON lets rawMessage.Content be either a JSON array of blocks
// or a bare string, both of which appear across transcript schema
// versions.
func (m *rawMessage) UnmarshalJSON(data []byte) error {
	var a struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	m.Role = a.Role
	if len(a.Content) == 0 {
		return nil
	}
	var blocks []rawContentBlock
	if err := json.Unmarshal(a.Content, &blocks); err == nil {
		m.Content = blocks
		return nil
	}
	var asString string
	if err := json.Unmarshal(a.Content, &asString); err == nil {
		m.Content = []rawContentBlock{{Type: "text", Text: asString}}
	}
	return nil
}

// readLines reads every line of path as a string slice. Malformed reads
// yield nil rather than an error.
func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

// tailLines returns the last n lines of path (fewer if the file is
// shorter).
func tailLines(path string, n int) []string {
	lines := readLines(path)
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

// headLines returns the first n lines of path.
func headLines(path string, n int) []string {
	lines := readLines(path)
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}

// parseEvent best-effort decodes one transcript line. A malformed line
// yields ok=false rather than an error.
func parseEvent(line string) (rawEvent, bool) {
	var ev rawEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		return rawEvent{}, false
	}
	return ev, true
}
