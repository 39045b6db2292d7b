package ai

import (
	"encoding/json"
	"strings"
)

// Suggestion is one proposed task extracted from an assistant reply.
type Suggestion struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Priority          string `json:"priority"`
	EstimatedDuration string `json:"estimated_duration"`
	ProjectName       string `json:"project_name"`
}

type suggestionBlock struct {
	SuggestedTasks []Suggestion `json:"suggested_tasks"`
}

// ParseReply splits an assistant reply into the human-readable message and
// any suggestions carried in a fenced JSON block. Extraction is conservative:
// a reply without a parseable block comes back whole, with no suggestions.
func ParseReply(raw string) (message string, suggestions []Suggestion) {
	start := strings.Index(raw, "```json")
	if start < 0 {
		return strings.TrimSpace(raw), nil
	}
	rest := raw[start+len("```json"):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(raw), nil
	}

	var block suggestionBlock
	if err := json.Unmarshal([]byte(rest[:end]), &block); err != nil {
		return strings.TrimSpace(raw), nil
	}

	var kept []Suggestion
	for _, s := range block.SuggestedTasks {
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" {
			continue
		}
		switch s.Priority {
		case "High", "Medium", "Low":
		default:
			s.Priority = "Medium"
		}
		kept = append(kept, s)
	}

	message = strings.TrimSpace(raw[:start] + rest[end+len("```"):])
	if message == "" {
		message = strings.TrimSpace(raw)
	}
	return message, kept
}
