package llm

import (
	"context"
	"fmt"
)

// ChatModel is a minimal abstraction for chat-based LLMs used by the
// responder chain. It intentionally hides concrete providers to preserve
// dependency direction.
type ChatModel interface {
	// Name identifies the provider in stored turns ("gpt", "gemini").
	Name() string
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SystemPrompt grounds the model in the scraped company content. The model
// is instructed to answer only from the text between the markers.
func SystemPrompt(companyContent string) string {
	return fmt.Sprintf(`You are a helpful and accurate chatbot for Inbox Infotech Pvt. Ltd.
Use ONLY the content between === markers to answer user queries or generate interview questions.
If the requested information is not present in the content, politely say you cannot help.

=== WEBSITE CONTENT START ===
%s
=== WEBSITE CONTENT END ===
`, companyContent)
}
