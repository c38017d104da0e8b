package openai

import (
	"errors"

	"github.com/openai/openai-go"
	ai "github.com/spetersoncode/convo"
)

// wrapError categorizes OpenAI SDK errors by status code and Retry-After.
// Non-API errors (network failures) are returned as-is for retry heuristics.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return ai.NewStatusError(err.Error(), apiErr.StatusCode, ai.ParseRetryAfter(apiErr.Response), err)
}
