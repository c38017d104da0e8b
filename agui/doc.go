// Package agui renders conversation events as AG-UI protocol events.
//
// A Mapper turns each conversation event into zero or more AG-UI events:
// agent replies become text message start/content/end triples, actions
// become tool call start/args/end, observations become tool call results,
// and status changes become run lifecycle events. The SSE writer formats
// them the way an AG-UI frontend consumes a stream:
//
//	f, _ := os.Create("trace.sse")
//	defer f.Close()
//	conv, _ := conversation.New(a, conversation.WithCallbacks(agui.NewCallback(f, conv.ID(), logger)))
//
// Events are written as they happen, so the file can be tailed or replayed
// into a frontend.
package agui
