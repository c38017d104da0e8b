// Package client builds a validated model client from connection parameters
// and keeps the session's usage metrics.
//
// The model identifier selects the backend by prefix:
//
//	openai/gpt-5-mini                 OpenAI
//	anthropic/claude-sonnet-4-5       Anthropic
//	gemini/gemini-2.5-flash           Gemini API
//	vertex_ai/gemini-2.5-pro          Vertex AI (project and location required)
//	ollama/devstral-64k               Ollama, OpenAI-compatible at BaseURL + /v1
//	litellm_proxy/claude-sonnet-4-5   LiteLLM proxy at BaseURL
//
// An identifier without a known prefix is sent to BaseURL as an
// OpenAI-compatible model.
//
// # Basic Usage
//
//	c, err := client.New(client.Config{
//	    Model:   "ollama/devstral-64k",
//	    BaseURL: "http://localhost:11434",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := c.Chat(ctx, []ai.Message{ai.NewUserMessage(ai.TextContent("Hello!"))})
//
//	snap, err := c.Metrics()
//	if errors.Is(err, client.ErrMetricsUnavailable) {
//	    // no call has completed yet
//	}
//
// # Events
//
// Pass a buffered channel in Config.Events to observe requests and retries.
// Events are sent non-blocking; a full channel drops them.
package client
