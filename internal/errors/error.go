package errors

import "errors"

var (
	ErrCapabilityUnavailable = errors.New("drawing surface has no 2d context")
	ErrShapeMismatch         = errors.New("board dimensions do not match")
	ErrInvalidCell           = errors.New("invalid cell value")
	ErrInvalidCoordinates    = errors.New("coordinates are outside the board")
	ErrEvaluationUnavailable = errors.New("evaluation unavailable")
	ErrEvaluationPending     = errors.New("evaluation already in progress")
	ErrIllegalPlacement      = errors.New("placement rejected by evaluator")
)
