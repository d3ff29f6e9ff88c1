package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentiqhub/backend/internal/clients/anthropic"
	"github.com/agentiqhub/backend/internal/models"
)

const (
	maxLessonContentChars = 2000
	maxDocumentChars      = 8000
)

const basePrompt = `You are an AI course content assistant for AgentIQ Hub, an AI mastery course for real estate agents.
You help create professional, engaging training content that teaches realtors how to use AI in their business.

The course has 5 sections:
- Section I: AI Foundations (free tier)
- Section II: Essential AI Tools (free tier)
- Section III: Real Estate AI Workflows (premium tier)
- Section IV: Advanced AI Strategies (premium tier)
- Section V: Certification (premium tier)

Each module has 3 lessons and 5 quiz questions. Lessons should be practical, actionable, and include specific AI prompts realtors can use.

IMPORTANT: Always respond with valid JSON when generating structured content.`

const chatPromptSuffix = `

You are having an interactive planning conversation with the course administrator. Your role is to be a proactive course design partner — not just answer questions, but actively help plan and develop course content through back-and-forth dialogue.

IMPORTANT BEHAVIORS:
1. ASK CLARIFYING QUESTIONS before suggesting content. For example:
   - "What specific pain points do your realtors face with this topic?"
   - "What skill level should this module target — beginners or agents who already use some AI?"
   - "How many lessons are you thinking for this module? The standard is 3, but we could do more."
   - "Should this be a free teaser module or premium content?"

2. PLAN BEFORE BUILDING: When discussing new modules or content, outline the plan first:
   - Suggest a module structure (lesson titles, key topics per lesson)
   - Get confirmation before recommending they use the Quick Generate or Document Upload tools
   - Help refine the plan through conversation

3. BE PROACTIVE: Suggest related content ideas, identify gaps in the current curriculum, and recommend improvements.

4. REMEMBER CONTEXT: Reference earlier parts of the conversation and build on it.

5. When the plan is finalized, point the administrator at the "Quick Generate" panel to create the module with a specific topic, or at the Content Manager tab to build it manually.`

// Completer defines the LLM surface the generator needs
type Completer interface {
	// Complete sends a conversation and returns the model's text reply
	//
	// "ctx" is the context for the request.
	// "system" is the system prompt.
	// "messages" is the conversation so far, oldest first.
	//
	// Returns the reply text and an error if any.
	Complete(ctx context.Context, system string, messages []anthropic.Message) (string, error)
}

type aiService struct {
	client Completer
}

// NewAIService creates the AI content generation service
func NewAIService(client Completer) *aiService {
	return &aiService{
		client: client,
	}
}

// Generate runs one content generation action. For every action except chat
// the model is asked for JSON, and whatever JSON object can be found in the
// reply is extracted best-effort; an unparseable reply is not an error, the
// raw text still comes back.
func (s *aiService) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	system, user, err := buildPrompts(req.Action, &req.Context)
	if err != nil {
		return nil, err
	}

	var messages []anthropic.Message
	if req.Action == models.ActionChat {
		for _, turn := range req.Context.History {
			messages = append(messages, anthropic.Message{Role: turn.Role, Content: turn.Content})
		}
	}
	messages = append(messages, anthropic.Message{Role: "user", Content: user})

	text, err := s.client.Complete(ctx, system, messages)
	if err != nil {
		return nil, err
	}

	resp := &models.GenerateResponse{
		Text:   text,
		Action: req.Action,
	}
	if req.Action != models.ActionChat {
		resp.Parsed = ExtractJSON(text)
	}

	return resp, nil
}

func buildPrompts(action models.GenerateAction, c *models.GenerateContext) (string, string, error) {
	system := basePrompt

	var user string
	switch action {
	case models.ActionGenerateModule:
		section := c.Section
		if section == "" {
			section = "Not specified"
		}
		tier := c.Tier
		if tier == "" {
			tier = models.TierPremium
		}
		user = fmt.Sprintf(`Create a complete new training module about: "%s"

Section: %s
Tier: %s

Generate a JSON object with this exact structure:
{
  "title": "Module title",
  "section": "Section name",
  "description": "1-2 sentence module description",
  "tier": "%s",
  "lessons": [
    {
      "title": "Lesson 1 title",
      "content": "Full lesson content with **bold** formatting, specific AI prompts, and practical examples. At least 3 paragraphs."
    },
    {
      "title": "Lesson 2 title",
      "content": "Full lesson content..."
    },
    {
      "title": "Lesson 3 title",
      "content": "Full lesson content..."
    }
  ],
  "quiz": [
    {
      "question": "Question text?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct": 0
    }
  ]
}

Generate exactly 3 lessons and 5 quiz questions. Make content practical and real estate specific.`, c.Topic, section, tier, tier)

	case models.ActionGenerateLesson:
		user = fmt.Sprintf(`Create a single lesson for the module "%s" about: "%s"

Generate a JSON object:
{
  "title": "Lesson title",
  "content": "Full lesson content with **bold** formatting. Include specific AI prompts realtors can copy and use. At least 4 paragraphs with practical, actionable advice."
}`, c.ModuleName, c.Topic)

	case models.ActionGenerateQuiz:
		count := c.Count
		if count == 0 {
			count = 5
		}
		user = fmt.Sprintf(`Create quiz questions for the module "%s" covering: "%s"

Generate a JSON object:
{
  "questions": [
    {
      "question": "Question text?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct": 0
    }
  ]
}

Generate exactly %d questions. Make them practical — test understanding, not memorization.`, c.ModuleName, c.Topic, count)

	case models.ActionGenerateVideoScript:
		content := truncate(c.LessonContent, maxLessonContentChars)
		if content == "" {
			content = "Not provided"
		}
		user = fmt.Sprintf(`Create a video script for the lesson "%s" in module "%s".

The lesson content is:
%s

Generate a JSON object:
{
  "title": "Video title",
  "duration": "Estimated duration (e.g. '5-7 minutes')",
  "script": "Full video script with [VISUAL] cues for screen recordings or slides. Include intro, main content sections, and outro. Write in a conversational, instructor tone."
}`, c.LessonTitle, c.ModuleName, content)

	case models.ActionImproveContent:
		title := c.Title
		if title == "" {
			title = "Improved lesson"
		}
		instructions := ""
		if c.Instructions != "" {
			instructions = "Additional instructions: " + c.Instructions + "\n\n"
		}
		user = fmt.Sprintf(`Improve this existing lesson content. Make it more engaging, practical, and add more specific AI prompts that realtors can use.

Current content:
%s

%sGenerate a JSON object:
{
  "title": "%s",
  "content": "The improved full lesson content with **bold** formatting and practical AI prompts."
}`, c.Content, instructions, title)

	case models.ActionGenerateFromDocument:
		document := truncate(c.DocumentContent, maxDocumentChars)
		if document == "" {
			document = "No content provided"
		}
		title := c.ModuleName
		if title == "" {
			title = "Module title based on the document"
		}
		section := c.Section
		if section == "" {
			section = "Custom Training"
		}
		tier := c.Tier
		if tier == "" {
			tier = models.TierPremium
		}
		var extras strings.Builder
		if c.Instructions != "" {
			fmt.Fprintf(&extras, "ADDITIONAL INSTRUCTIONS: %s\n", c.Instructions)
		}
		if c.ModuleName != "" {
			fmt.Fprintf(&extras, "MODULE NAME: %s\n", c.ModuleName)
		}
		user = fmt.Sprintf(`You are creating training content for a real estate AI mastery course. A document has been provided. Your job is to transform this document into a structured training module with lessons and quizzes.

DOCUMENT CONTENT:
---
%s
---

%s
Create a complete training module based on this document. Organize the content into clear, digestible lessons that teach realtors practical skills. Add AI prompts they can copy and use.

Generate a JSON object with this exact structure:
{
  "title": "%s",
  "section": "%s",
  "description": "1-2 sentence module description",
  "tier": "%s",
  "lessons": [
    {
      "title": "Lesson 1 title",
      "content": "Full lesson content with **bold** formatting. Incorporate key information from the document. Add practical AI prompts realtors can use. At least 3 substantial paragraphs."
    },
    {
      "title": "Lesson 2 title",
      "content": "Full lesson content..."
    },
    {
      "title": "Lesson 3 title",
      "content": "Full lesson content..."
    }
  ],
  "quiz": [
    {
      "question": "Question text?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct": 0
    }
  ]
}

Generate exactly 3 lessons and 5 quiz questions. Make the content practical, engaging, and focused on real estate applications.`, document, extras.String(), title, section, tier)

	case models.ActionChat:
		system += chatPromptSuffix
		user = c.Message

	default:
		return "", "", fmt.Errorf("unknown action %q", action)
	}

	return system, user, nil
}

// ExtractJSON pulls the first JSON object out of model text: everything from
// the first "{" through the last "}". Returns nil when there is no such span
// or it does not parse; a miss is normal for prose replies.
func ExtractJSON(text string) json.RawMessage {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}

	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil
	}
	return json.RawMessage(candidate)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
