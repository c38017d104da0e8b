// Package anthropic adapts the Anthropic Messages API to ai.ChatProvider.
//
// System messages are lifted into the request's system blocks, tool results
// travel as user messages holding tool_result blocks, and empty text blocks
// are dropped because the API rejects them.
package anthropic
