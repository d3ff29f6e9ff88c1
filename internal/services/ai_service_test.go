package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentiqhub/backend/internal/models"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare json object",
			text: `{"title":"Module"}`,
			want: `{"title":"Module"}`,
		},
		{
			name: "json wrapped in prose",
			text: "Here is your module:\n\n{\"title\":\"Module\"}\n\nLet me know!",
			want: `{"title":"Module"}`,
		},
		{
			name: "json inside a code fence",
			text: "```json\n{\"title\":\"Module\"}\n```",
			want: `{"title":"Module"}`,
		},
		{
			name: "nested braces span first to last",
			text: `prefix {"lessons":[{"title":"a"},{"title":"b"}]} suffix`,
			want: `{"lessons":[{"title":"a"},{"title":"b"}]}`,
		},
		{
			name: "no json at all",
			text: "I could not generate that content.",
			want: "",
		},
		{
			name: "malformed json is a miss, not an error",
			text: `{"title": unquoted}`,
			want: "",
		},
		{
			name: "empty text",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.text)
			if tt.want == "" {
				assert.Nil(t, got)
			} else {
				assert.Equal(t, tt.want, string(got))
			}
		})
	}
}

func TestAIService_GenerateModule(t *testing.T) {
	client := &mockCompleter{reply: `{"title":"Listing Descriptions with AI","lessons":[]}`}
	svc := NewAIService(client)

	resp, err := svc.Generate(context.Background(), &models.GenerateRequest{
		Action: models.ActionGenerateModule,
		Context: models.GenerateContext{
			Topic:   "Writing listing descriptions",
			Section: "Real Estate AI Workflows",
			Tier:    models.TierPremium,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, models.ActionGenerateModule, resp.Action)
	assert.NotNil(t, resp.Parsed)

	require.Len(t, client.gotMessages, 1)
	assert.Contains(t, client.gotMessages[0].Content, `"Writing listing descriptions"`)
	assert.Contains(t, client.gotMessages[0].Content, "Real Estate AI Workflows")
	assert.Contains(t, client.gotSystem, "AgentIQ Hub")
	assert.NotContains(t, client.gotSystem, "planning conversation")
}

func TestAIService_GenerateQuizDefaultsToFiveQuestions(t *testing.T) {
	client := &mockCompleter{reply: `{"questions":[]}`}
	svc := NewAIService(client)

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{
		Action:  models.ActionGenerateQuiz,
		Context: models.GenerateContext{ModuleName: "Foundations", Topic: "prompting"},
	})

	require.NoError(t, err)
	assert.Contains(t, client.gotMessages[0].Content, "Generate exactly 5 questions")
}

func TestAIService_ChatCarriesHistory(t *testing.T) {
	client := &mockCompleter{reply: "What skill level should this target?"}
	svc := NewAIService(client)

	resp, err := svc.Generate(context.Background(), &models.GenerateRequest{
		Action: models.ActionChat,
		Context: models.GenerateContext{
			Message: "Let's plan a module on CMA reports",
			History: []models.ChatMessage{
				{Role: "user", Content: "I want a new premium module"},
				{Role: "assistant", Content: "Great, what topic?"},
			},
		},
	})

	require.NoError(t, err)
	// chat replies are prose, never parsed
	assert.Nil(t, resp.Parsed)
	assert.Equal(t, "What skill level should this target?", resp.Text)

	require.Len(t, client.gotMessages, 3)
	assert.Equal(t, "I want a new premium module", client.gotMessages[0].Content)
	assert.Equal(t, "Let's plan a module on CMA reports", client.gotMessages[2].Content)
	assert.Contains(t, client.gotSystem, "planning conversation")
}

func TestAIService_DocumentContentTruncated(t *testing.T) {
	long := make([]byte, maxDocumentChars+500)
	for i := range long {
		long[i] = 'x'
	}

	client := &mockCompleter{reply: "{}"}
	svc := NewAIService(client)

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{
		Action:  models.ActionGenerateFromDocument,
		Context: models.GenerateContext{DocumentContent: string(long)},
	})

	require.NoError(t, err)
	assert.Less(t, len(client.gotMessages[0].Content), maxDocumentChars+2000)
}

func TestAIService_UnknownAction(t *testing.T) {
	svc := NewAIService(&mockCompleter{})

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{Action: "translate"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestAIService_ClientError(t *testing.T) {
	svc := NewAIService(&mockCompleter{err: errors.New("AI service is rate limited, try again in a moment")})

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{
		Action:  models.ActionGenerateLesson,
		Context: models.GenerateContext{ModuleName: "Foundations", Topic: "prompts"},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
