package ai

import (
	"strings"
	"testing"
)

func TestParseReply(t *testing.T) {
	t.Run("plain reply passes through", func(t *testing.T) {
		msg, suggs := ParseReply("  Let's start by listing your goals.  ")
		if msg != "Let's start by listing your goals." {
			t.Errorf("message = %q", msg)
		}
		if suggs != nil {
			t.Errorf("expected no suggestions, got %v", suggs)
		}
	})

	t.Run("fenced block extracted", func(t *testing.T) {
		raw := "Here is a plan.\n\n```json\n" +
			`{"suggested_tasks": [{"title": "Write outline", "description": "One page", "priority": "High", "estimated_duration": "1h", "project_name": "Launch"}]}` +
			"\n```\nGood luck!"
		msg, suggs := ParseReply(raw)
		if strings.Contains(msg, "```") {
			t.Errorf("fence left in message: %q", msg)
		}
		if !strings.Contains(msg, "Here is a plan.") || !strings.Contains(msg, "Good luck!") {
			t.Errorf("surrounding text lost: %q", msg)
		}
		if len(suggs) != 1 {
			t.Fatalf("suggestions = %v", suggs)
		}
		s := suggs[0]
		if s.Title != "Write outline" || s.Priority != "High" || s.ProjectName != "Launch" {
			t.Errorf("unexpected suggestion: %+v", s)
		}
	})

	t.Run("invalid priority defaults to Medium", func(t *testing.T) {
		raw := "```json\n{\"suggested_tasks\": [{\"title\": \"X\", \"priority\": \"Urgent\"}]}\n```"
		_, suggs := ParseReply(raw)
		if len(suggs) != 1 || suggs[0].Priority != "Medium" {
			t.Fatalf("suggestions = %v", suggs)
		}
	})

	t.Run("untitled suggestions dropped", func(t *testing.T) {
		raw := "```json\n{\"suggested_tasks\": [{\"title\": \"  \"}, {\"title\": \"Keep\"}]}\n```"
		_, suggs := ParseReply(raw)
		if len(suggs) != 1 || suggs[0].Title != "Keep" {
			t.Fatalf("suggestions = %v", suggs)
		}
	})

	t.Run("malformed block returned verbatim", func(t *testing.T) {
		raw := "Thoughts:\n```json\n{not json\n```"
		msg, suggs := ParseReply(raw)
		if msg != strings.TrimSpace(raw) {
			t.Errorf("message = %q", msg)
		}
		if suggs != nil {
			t.Errorf("expected no suggestions, got %v", suggs)
		}
	})

	t.Run("unterminated fence returned verbatim", func(t *testing.T) {
		raw := "```json\n{\"suggested_tasks\": []}"
		msg, suggs := ParseReply(raw)
		if msg != strings.TrimSpace(raw) || suggs != nil {
			t.Errorf("msg = %q suggs = %v", msg, suggs)
		}
	})
}
