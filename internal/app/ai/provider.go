// Package ai holds the planning-assistant provider clients. Each provider
// takes the ordered conversation history and returns the assistant's raw
// reply; suggestion extraction happens afterwards in ParseReply so the two
// providers stay interchangeable.
package ai

import "context"

// Turn is one entry of conversation history sent to a provider.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Provider produces the assistant reply for a conversation.
type Provider interface {
	// Name identifies the provider in logs and settings ("openai", "anthropic").
	Name() string
	// Complete sends the system prompt plus history and returns the raw reply.
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// systemPrompt steers the model toward planning help and asks for the
// machine-readable suggestion block ParseReply looks for.
const systemPrompt = `You are a helpful task planning assistant. Help the user break down ` +
	`their goals into concrete, actionable tasks.

When you propose tasks, include at the end of your reply a fenced JSON block of the form:

` + "```json" + `
{"suggested_tasks": [{"title": "...", "description": "...", "priority": "High|Medium|Low", "estimated_duration": "...", "project_name": "..."}]}
` + "```" + `

Only include the block when you are actually proposing tasks. Keep titles short and descriptions concrete.`
