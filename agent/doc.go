// Package agent implements the reasoning step of a conversation.
//
// An Agent pairs a model client with a tool registry. Each call to Step
// sends the conversation so far to the model and turns the reply into
// events: a final agent message, or a batch of actions followed by the
// observation each tool call produced. The conversation package drives
// Step until the agent reports it is finished.
//
//	a := agent.New(llm, registry,
//	    agent.WithSystemPrompt("You are a careful engineer."),
//	    agent.WithHandlerTimeout(time.Minute),
//	)
//
// # Approval
//
// WithApprover installs a gate in front of tool execution. A rejected call
// is recorded as a UserReject event and the model sees the reason:
//
//	agent.New(llm, registry,
//	    agent.WithApprover(agent.DenyTools("deleting files is not allowed", "execute_bash")),
//	)
package agent
