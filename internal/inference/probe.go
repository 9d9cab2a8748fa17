package inference

import (
	"context"
)

// Status is the outcome of a liveness probe.
type Status int

// Probe outcomes.
const (
	StatusResponding Status = iota
	StatusErroring
	StatusUnreachable
)

func (s Status) String() string {
	switch s {
	case StatusResponding:
		return "responding"
	case StatusErroring:
		return "erroring"
	default:
		return "unreachable"
	}
}

// Probe lists the server's models within the status timeout. A 2xx answer is
// responding. An error status, an undecodable body or a server that accepts
// the request but never answers is erroring. A refused or failed connection
// is unreachable.
func (c *Client) Probe(ctx context.Context) Status {
	probeCtx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	_, err := c.api.ListModels(probeCtx)
	if err == nil {
		return StatusResponding
	}

	status := StatusUnreachable
	switch classify(ctx, err) {
	case KindServerError, KindRejected, KindInvalidResponse, KindTimeout:
		status = StatusErroring
	}

	c.logger.Warn("Inference server probe failed", "status", status.String(), "error", err)
	return status
}
