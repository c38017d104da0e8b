package agent

import "errors"

// ErrNilResponse is returned when the model client reports success without a response.
var ErrNilResponse = errors.New("agent: model returned no response")
