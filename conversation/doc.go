// Package conversation runs the turn protocol between a user and an agent.
//
// A Conversation owns the event history. SendMessage appends a user message;
// Run drives the agent until it stops asking for tools, blocking the caller.
// Every event, whoever produced it, is appended to the history and then
// handed to each registered callback in registration order before the agent
// continues.
//
//	messages := conversation.NewMessageLog()
//	conv, err := conversation.New(a,
//	    conversation.WithCallbacks(conversation.NewMetricsCallback(messages, logger)),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := conv.SendMessage(ai.NewUserMessage(ai.TextContent("Write FACTS.txt"))); err != nil {
//	    return err
//	}
//	if err := conv.Run(ctx); err != nil {
//	    return err
//	}
package conversation
