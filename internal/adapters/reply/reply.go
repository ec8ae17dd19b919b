// Package reply generates conversational responses with the Gemini API.
//
// The generator keeps no state between calls; conversation context is passed
// in explicitly. Generation failure falls back to a canned prompt so the
// conversation loop never stalls on the collaborator.
package reply

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/session"
	"github.com/okian/parley/internal/domain/topic"
	"github.com/okian/parley/pkg/logger"
	"github.com/okian/parley/pkg/metrics"
)

// Fallback is returned when reply generation fails.
const Fallback = "That's interesting! Can you tell me more about what you think influences this the most?"

// Default generation parameters.
const (
	defaultModel       = "gemini-2.0-flash"
	defaultTemperature = 0.7
	defaultMaxTokens   = 500

	personaKeywordCap  = 6
	followUpKeywordCap = 8
)

// Generator produces assistant turns for an active conversation.
type Generator struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
	logger      logger.Logger
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithModel sets the generation model name.
func WithModel(model string) Option {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithTemperature sets generation creativity in [0,2].
func WithTemperature(t float64) Option {
	return func(g *Generator) {
		if t >= 0 && t <= 2 {
			g.temperature = t
		}
	}
}

// WithMaxTokens caps generated reply length.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// NewGenerator creates a Generator authenticated with apiKey.
func NewGenerator(ctx context.Context, apiKey string, opts ...Option) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("reply generator: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("reply generator: create client: %w", err)
	}

	g := &Generator{
		client:      client,
		model:       defaultModel,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		logger:      logger.Get().Named("reply"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Respond generates an assistant reply to userInput given recent history.
// On failure it returns the canned fallback; the error is reported for
// logging but the reply is always usable.
func (g *Generator) Respond(ctx context.Context, t *topic.Topic, history []session.Message, userInput string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.RecordReplyLatency(float64(time.Since(start).Milliseconds()))
	}()

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		var role genai.Role = genai.RoleUser
		if msg.Role == model.SpeakerAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(userInput, genai.RoleUser))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.Persona(t), genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.temperature)),
		MaxOutputTokens:   int32(g.maxTokens),
	})
	if err != nil {
		metrics.RecordReplyFallback()
		metrics.RecordErrorByComponent("reply", "generate_failed")
		g.logger.Error(ctx, "reply generation failed", logger.Error(err))
		return Fallback, fmt.Errorf("generate reply: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		metrics.RecordReplyFallback()
		return Fallback, fmt.Errorf("generate reply: empty response")
	}
	return text, nil
}

// FollowUp generates a follow-up question that nudges the user toward
// uncovered keyword areas. Failure returns the canned fallback.
func (g *Generator) FollowUp(ctx context.Context, t *topic.Topic, userResponse string, currentScore float64) string {
	start := time.Now()
	defer func() {
		metrics.RecordReplyLatency(float64(time.Since(start).Milliseconds()))
	}()

	contents := []*genai.Content{
		genai.NewContentFromText(g.followUpPrompt(t, userResponse, currentScore), genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.temperature)),
		MaxOutputTokens: int32(g.maxTokens),
	})
	if err != nil {
		metrics.RecordReplyFallback()
		metrics.RecordErrorByComponent("reply", "follow_up_failed")
		g.logger.Error(ctx, "follow-up generation failed", logger.Error(err))
		return Fallback
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		metrics.RecordReplyFallback()
		return Fallback
	}
	return text
}

// TestConnectivity verifies the API is reachable with the configured key.
func (g *Generator) TestConnectivity(ctx context.Context) bool {
	contents := []*genai.Content{
		genai.NewContentFromText("Hello, this is a test. Please respond with 'Connection successful'.", genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: 10,
	})
	if err != nil {
		g.logger.Error(ctx, "connectivity test failed", logger.Error(err))
		return false
	}
	return strings.Contains(strings.ToLower(resp.Text()), "successful")
}

// Persona renders the system instruction establishing the assistant's role
// for a topic.
func (g *Generator) Persona(t *topic.Topic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an enthusiastic and knowledgeable conversation partner who loves discussing %s.\n\n", t.Name)
	b.WriteString("Your personality traits:\n")
	b.WriteString("- Curious and engaging\n")
	b.WriteString("- Knowledgeable but not condescending\n")
	b.WriteString("- Asks thoughtful follow-up questions\n")
	b.WriteString("- Shares interesting insights when appropriate\n")
	b.WriteString("- Encourages the user to share their thoughts and experiences\n\n")
	fmt.Fprintf(&b, "Topic focus: %s\n\n", t.Description)
	b.WriteString("Key areas you're interested in discussing:\n")
	for i, kw := range t.Keywords {
		if i == personaKeywordCap {
			break
		}
		fmt.Fprintf(&b, "- %s: %s\n", kw.Term, kw.Description)
	}
	b.WriteString("\nYour goal is to have a natural, engaging conversation while gently guiding the discussion to cover these key areas.\n\n")
	b.WriteString("Always:\n")
	b.WriteString("- Keep responses under 100 words\n")
	b.WriteString("- Ask one follow-up question per response\n")
	b.WriteString("- Acknowledge what the user said before asking more\n")
	b.WriteString("- Be encouraging and positive\n")
	return b.String()
}

func (g *Generator) followUpPrompt(t *topic.Topic, userResponse string, currentScore float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are having a conversation about %s. The user just said: %q\n\n", t.Name, userResponse)
	fmt.Fprintf(&b, "Current conversation score based on keyword coverage: %.1f/100\n\n", currentScore)
	b.WriteString("Key areas that should be covered in this topic:\n")
	for i, kw := range t.Keywords {
		if i == followUpKeywordCap {
			break
		}
		fmt.Fprintf(&b, "- %s: %s\n", kw.Term, kw.Description)
	}
	b.WriteString("\nGenerate a natural follow-up question that:\n")
	b.WriteString("1. Acknowledges what the user said\n")
	b.WriteString("2. Encourages them to elaborate on areas they haven't fully covered\n")
	b.WriteString("3. Sounds conversational and engaging\n")
	b.WriteString("4. Helps guide them toward the key concepts if they're missing them\n\n")
	b.WriteString("Keep it under 50 words and make it sound like a curious friend asking for more details.")
	return b.String()
}
