package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"osero_view/internal/bootstrap"
	"osero_view/internal/domain/board"
	"osero_view/internal/domain/evaluation"
	apperrors "osero_view/internal/errors"
)

const (
	cpuPath = "/cpu"
	putPath = "/put"

	maxResponseBytes = 1 << 20
)

// Evaluator is the remote service that computes moves and validates placements.
type Evaluator interface {
	RequestMove(ctx context.Context, grid board.Grid, player board.Cell) (board.Grid, error)
	RequestPlacement(ctx context.Context, grid board.Grid, col, row int, player board.Cell) (board.Grid, bool, error)
}

type EvaluatorRepository struct {
	cfg     *bootstrap.Config
	log     *zap.SugaredLogger
	baseURL string
	client  *http.Client
}

func NewEvaluatorRepository(cfg *bootstrap.Config, log *zap.SugaredLogger) *EvaluatorRepository {
	return &EvaluatorRepository{
		cfg:     cfg,
		log:     log,
		baseURL: strings.TrimRight(cfg.EvaluatorUrl, "/"),
		client:  &http.Client{},
	}
}

// RequestMove asks the evaluator to play for player and returns the board it answers with.
func (e *EvaluatorRepository) RequestMove(ctx context.Context, grid board.Grid, player board.Cell) (board.Grid, error) {
	resp, err := e.post(ctx, cpuPath, evaluation.NewRequest(grid, player))
	if err != nil {
		return nil, err
	}
	return decodeReply(resp, len(grid))
}

// RequestPlacement asks the evaluator to put a stone for player at (col,row).
// The bool is false when the evaluator refused the placement.
func (e *EvaluatorRepository) RequestPlacement(ctx context.Context, grid board.Grid, col, row int, player board.Cell) (board.Grid, bool, error) {
	resp, err := e.post(ctx, putPath, evaluation.NewPlacementRequest(grid, col, row, player))
	if err != nil {
		return nil, false, err
	}
	if !resp.Placed() {
		return nil, false, nil
	}

	next, err := decodeReply(resp, len(grid))
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}

func (e *EvaluatorRepository) post(ctx context.Context, path string, payload any) (evaluation.Response, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return evaluation.Response{}, unavailable("failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return evaluation.Response{}, unavailable("failed to create request", err)
	}

	requestID := evaluation.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	e.log.Debugw("sending evaluation request", "path", path, "request_id", requestID)

	resp, err := e.client.Do(req)
	if err != nil {
		return evaluation.Response{}, unavailable("failed to send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return evaluation.Response{}, fmt.Errorf("%w: unexpected status code: %d", apperrors.ErrEvaluationUnavailable, resp.StatusCode)
	}

	var result evaluation.Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return evaluation.Response{}, unavailable("failed to decode response", err)
	}

	return result, nil
}

func decodeReply(resp evaluation.Response, dimension int) (board.Grid, error) {
	g, err := resp.Grid()
	if err != nil {
		return nil, unavailable("malformed board", err)
	}
	if err = g.Validate(dimension); err != nil {
		return nil, unavailable("malformed board", err)
	}
	return g, nil
}

func unavailable(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", apperrors.ErrEvaluationUnavailable, msg, err)
}
