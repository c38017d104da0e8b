package agent

import (
	"context"
	"slices"

	ai "github.com/spetersoncode/convo"
)

// DenyTools returns an approver that rejects calls to the named tools and
// approves everything else.
func DenyTools(reason string, names ...string) ApproverFunc {
	return func(ctx context.Context, call ai.ToolCall) (bool, string) {
		if slices.Contains(names, call.Name) {
			return false, reason
		}
		return true, ""
	}
}

func (a *Agent) requiresApproval(name string) bool {
	if a.opts.Approver == nil {
		return false
	}
	if len(a.opts.ApprovalRequired) == 0 {
		return true
	}
	return slices.Contains(a.opts.ApprovalRequired, name)
}
