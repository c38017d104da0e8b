// Package google adapts the Gemini API and Vertex AI, both served by the
// google.golang.org/genai SDK, to ai.ChatProvider.
package google

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	ai "github.com/spetersoncode/convo"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config selects the backend. Vertex is chosen when Project is set and
// authenticates with Application Default Credentials.
type Config struct {
	APIKey     string
	Project    string
	Location   string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Client wraps the Google GenAI SDK to implement ai.ChatProvider.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a Gemini or Vertex AI client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.Project != "" {
		cc.APIKey = ""
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model}, nil
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)
	contents, system := convertMessages(messages)

	config := &genai.GenerateContentConfig{SystemInstruction: system}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		config.Temperature = &temp
	}
	if len(options.Tools) > 0 {
		config.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			config.ToolConfig = convertToolChoice(options.ToolChoice)
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, wrapError(err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, ai.NewUserInputError("google: request blocked", 0, &BlockedError{Reason: string(resp.PromptFeedback.BlockReason)})
	}

	out := &ai.Response{ID: resp.ResponseID, Model: resp.ModelVersion}
	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		out.FinishReason = string(cand.FinishReason)
		if cand.Content != nil {
			var text strings.Builder
			for _, part := range cand.Content.Parts {
				text.WriteString(part.Text)
			}
			out.Content = text.String()
			out.ToolCalls = extractToolCalls(out.ID, cand.Content.Parts)
		}
	}
	if md := resp.UsageMetadata; md != nil {
		out.Usage = ai.Usage{
			InputTokens:     int(md.PromptTokenCount),
			OutputTokens:    int(md.CandidatesTokenCount),
			CacheReadTokens: int(md.CachedContentTokenCount),
		}
	}
	return out, nil
}

var _ ai.ChatProvider = (*Client)(nil)
