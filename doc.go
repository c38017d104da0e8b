// Package convo holds the vocabulary shared by every part of the
// conversation runtime: messages and their content parts, tool definitions,
// tool calls and results, model responses with token usage, and categorized
// provider errors.
//
// Higher-level packages build on it:
//
//   - [github.com/spetersoncode/convo/client]: validated model client with session metrics
//   - [github.com/spetersoncode/convo/tool]: ordered tool registry with bash and editor built-ins
//   - [github.com/spetersoncode/convo/mcp]: tool discovery from MCP servers
//   - [github.com/spetersoncode/convo/agent]: the reasoning and tool-dispatch step
//   - [github.com/spetersoncode/convo/conversation]: turn protocol and event callbacks
//
// The rest of the tree imports this package as ai:
//
//	import ai "github.com/spetersoncode/convo"
//
//	msg := ai.NewUserMessage(ai.TextContent("What is in FACTS.txt?"))
package convo
