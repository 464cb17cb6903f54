package chat

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/itzperi/omnimeet/internal/event"
)

type openaiResponder struct {
	client *openai.Client
	model  string
	topic  string
}

// NewOpenAIResponder answers chat questions with a completion grounded on
// the transcript tail.
func NewOpenAIResponder(apiKey, model, topic string) Responder {
	return &openaiResponder{client: openai.NewClient(apiKey), model: model, topic: topic}
}

func (r *openaiResponder) Respond(ctx context.Context, question string, transcript []event.TranscriptEvent) (string, error) {
	var b strings.Builder
	for _, seg := range transcript {
		b.WriteString(seg.FormatLine())
		b.WriteString("\n")
	}

	system := fmt.Sprintf(
		"You are a live meeting assistant for %q. Answer briefly, grounded on the transcript excerpt below. If the transcript does not cover the question, say so.\n\nTranscript:\n%s",
		r.topic, b.String(),
	)

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
