package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// DefaultUnit is the unit-of-measure label assigned when none is supplied
const DefaultUnit = "units"

// Todo represents a single task in the global, priority-ordered list
type Todo struct {
	ID            int64       `json:"id"`
	Text          string      `json:"text"`
	Priority      int         `json:"priority"`
	Completed     bool        `json:"completed"`
	Category      string      `json:"category"`
	Unit          string      `json:"unit"`
	RequiredItems StringList  `json:"requiredItems"`
	Procedure     StringList  `json:"procedure"`
	Subtasks      SubtaskList `json:"subtasks"`
	ActiveCounter int         `json:"activeCounter"`
	ActiveTimer   int         `json:"activeTimer"`
}

// Subtask is one entry of a todo's subtask checklist
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// HistoryEntry is an immutable snapshot of one todo taken at one reset.
// Entries created by the same reset share a session ID and timestamp.
type HistoryEntry struct {
	ID              int64  `json:"id"`
	TodoID          int64  `json:"todoId"`
	SessionID       string `json:"sessionId"`
	Timestamp       string `json:"timestamp"`
	Completed       bool   `json:"completed"`
	SnapshotCounter int    `json:"snapshotCounter"`
	SnapshotTimer   int    `json:"snapshotTimer"`
}

// SessionSummary identifies one reset session and the timestamp of its most
// recent history entry
type SessionSummary struct {
	SessionID string `json:"sessionId"`
	Timestamp string `json:"timestamp"`
}

// TodoWithHistory is a todo joined with its history entries from the
// recent-session window
type TodoWithHistory struct {
	Todo
	History []*HistoryEntry `json:"history"`
}

// Backup is the portable export of the full todo and history tables
type Backup struct {
	Todos   []*Todo         `json:"todos"`
	History []*HistoryEntry `json:"history"`
}

// StringList is an ordered list of non-empty trimmed strings. Its decoder
// tolerates the legacy export encoding (a JSON array serialized into a JSON
// string) as well as arbitrary client payloads: non-string and blank entries
// are dropped, and undecodable input yields an empty list rather than an
// error.
type StringList []string

// UnmarshalJSON implements the tolerant decode described on StringList
func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = StringList{}

	raw := unwrapLegacyEncoding(data)
	if raw == nil {
		return nil
	}

	var entries []any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	out := make(StringList, 0, len(entries))
	for _, e := range entries {
		s, ok := e.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// SubtaskList is an ordered list of subtasks. Decoding mirrors StringList:
// legacy string-encoded arrays are unwrapped, each entry is coerced to
// {id, text, completed} with a generated ID when absent, and entries whose
// text is blank are dropped.
type SubtaskList []Subtask

// UnmarshalJSON implements the tolerant decode described on SubtaskList
func (l *SubtaskList) UnmarshalJSON(data []byte) error {
	*l = SubtaskList{}

	raw := unwrapLegacyEncoding(data)
	if raw == nil {
		return nil
	}

	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	out := make(SubtaskList, 0, len(entries))
	for _, e := range entries {
		text, _ := e["text"].(string)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		id, _ := e["id"].(string)
		if id == "" {
			id = uuid.New().String()
		}
		completed, _ := e["completed"].(bool)
		out = append(out, Subtask{ID: id, Text: text, Completed: completed})
	}
	*l = out
	return nil
}

// unwrapLegacyEncoding unwraps the legacy export format, where list fields
// arrive as a JSON string containing the serialized array. Returns nil for
// JSON null or an undecodable wrapper.
func unwrapLegacyEncoding(data []byte) []byte {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil
		}
		return []byte(inner)
	}
	return data
}
