package ports

import (
	"context"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
)

// Outcome of one optimization submission. Raw always carries the verbatim
// response body, even when the server returned malformed JSON, so the wire
// payload stays inspectable. Solution is the best-effort parse and is nil
// when the body did not decode.
type OptimizeOutcome struct {
	Raw      string
	Solution *domain.Solution
}

// Contract for submitting a compiled request to the optimization service.
type Optimizer interface {
	Optimize(ctx context.Context, req domain.OptimizeRequest) (OptimizeOutcome, error)
}
