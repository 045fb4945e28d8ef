package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"osero_view/internal/domain/board"
	"osero_view/internal/domain/evaluation"
	apperrors "osero_view/internal/errors"
	"osero_view/internal/render"
)

type State int

const (
	AwaitingHumanInput State = iota
	AwaitingEvaluator
)

func (s State) String() string {
	switch s {
	case AwaitingHumanInput:
		return "awaiting_human_input"
	case AwaitingEvaluator:
		return "awaiting_evaluator"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Evaluator interface {
	RequestMove(ctx context.Context, grid board.Grid, player board.Cell) (board.Grid, error)
	RequestPlacement(ctx context.Context, grid board.Grid, col, row int, player board.Cell) (board.Grid, bool, error)
}

type Journal interface {
	Record(ctx context.Context, exchange evaluation.Exchange) error
}

type Painter interface {
	Render(surface render.Surface, b *board.Board)
}

type Settings struct {
	Dimension   int
	CPUPlayer   board.Cell
	HumanPlayer board.Cell
	Timeout     time.Duration
}

var DefaultSettings = Settings{
	Dimension:   board.DefaultDimension,
	CPUPlayer:   board.PlayerB,
	HumanPlayer: board.PlayerA,
	Timeout:     10 * time.Second,
}

// GameLoop owns the board. Every change to it is followed by a render, and
// at most one evaluator request is in flight at a time.
type GameLoop struct {
	mu        sync.Mutex
	board     *board.Board
	state     State
	settings  Settings
	evaluator Evaluator
	painter   Painter
	surface   render.Surface
	journal   Journal
	log       *zap.SugaredLogger
}

// NewGameLoop seeds a fresh board and renders it. journal may be nil.
func NewGameLoop(
	settings Settings,
	log *zap.SugaredLogger,
	evaluator Evaluator,
	painter Painter,
	surface render.Surface,
	journal Journal,
) *GameLoop {
	g := &GameLoop{
		board:     board.NewInitial(settings.Dimension),
		state:     AwaitingHumanInput,
		settings:  settings,
		evaluator: evaluator,
		painter:   painter,
		surface:   surface,
		journal:   journal,
		log:       log,
	}
	g.painter.Render(g.surface, g.board)
	return g
}

// InvokeCPU asks the evaluator to move for the CPU side and installs its board.
func (g *GameLoop) InvokeCPU(ctx context.Context) error {
	snapshot, err := g.begin()
	if err != nil {
		return err
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	requestID := uuid.New().String()
	ctx = evaluation.WithRequestID(ctx, requestID)

	started := time.Now()
	next, err := g.evaluator.RequestMove(ctx, snapshot, g.settings.CPUPlayer)
	if err != nil {
		err = asUnavailable(err)
	}
	err = g.finish(next, err)

	g.record(ctx, evaluation.Exchange{
		RequestID: requestID,
		Kind:      evaluation.KindCPU,
		Player:    evaluation.EncodeCell(g.settings.CPUPlayer),
		Before:    evaluation.EncodeGrid(snapshot),
		After:     encodeIfApplied(next, err),
		Applied:   err == nil,
		Error:     errorText(err),
		Duration:  time.Since(started),
		CreatedAt: started,
	})

	return err
}

// PlaceStone asks the evaluator to put a human stone at (col,row). Legality is
// decided remotely; a refused placement leaves the board as it was.
func (g *GameLoop) PlaceStone(ctx context.Context, col, row int) error {
	if !g.board.Contains(col, row) {
		return fmt.Errorf("%w: (%d,%d)", apperrors.ErrInvalidCoordinates, col, row)
	}

	snapshot, err := g.begin()
	if err != nil {
		return err
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	requestID := uuid.New().String()
	ctx = evaluation.WithRequestID(ctx, requestID)

	started := time.Now()
	next, placed, err := g.evaluator.RequestPlacement(ctx, snapshot, col, row, g.settings.HumanPlayer)
	switch {
	case err != nil:
		err = asUnavailable(err)
	case !placed:
		err = fmt.Errorf("%w: (%d,%d)", apperrors.ErrIllegalPlacement, col, row)
	}
	err = g.finish(next, err)

	g.record(ctx, evaluation.Exchange{
		RequestID: requestID,
		Kind:      evaluation.KindPut,
		Player:    evaluation.EncodeCell(g.settings.HumanPlayer),
		Before:    evaluation.EncodeGrid(snapshot),
		After:     encodeIfApplied(next, err),
		Applied:   err == nil,
		Error:     errorText(err),
		Duration:  time.Since(started),
		CreatedAt: started,
	})

	return err
}

// Reset puts the starting position back.
func (g *GameLoop) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == AwaitingEvaluator {
		return apperrors.ErrEvaluationPending
	}
	if err := g.board.Replace(board.NewInitial(g.settings.Dimension).Snapshot()); err != nil {
		return err
	}
	g.painter.Render(g.surface, g.board)
	g.log.Info("board reset")
	return nil
}

// RenderTo draws the current board onto an extra surface.
func (g *GameLoop) RenderTo(surface render.Surface) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.painter.Render(surface, g.board)
}

// WithSurface calls fn with the loop's own surface. No render runs while fn
// holds it.
func (g *GameLoop) WithSurface(fn func(surface render.Surface) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return fn(g.surface)
}

func (g *GameLoop) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}

func (g *GameLoop) Board() *board.Board {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.board.Clone()
}

func (g *GameLoop) Counts() board.StoneCount {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.board.Count()
}

func (g *GameLoop) begin() (board.Grid, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == AwaitingEvaluator {
		return nil, apperrors.ErrEvaluationPending
	}
	g.state = AwaitingEvaluator
	return g.board.Snapshot(), nil
}

// finish installs next when err is nil, re-renders and hands control back to
// the human side whatever happened.
func (g *GameLoop) finish(next board.Grid, err error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err == nil {
		if replaceErr := g.board.Replace(next); replaceErr != nil {
			err = fmt.Errorf("%w: %w", apperrors.ErrEvaluationUnavailable, replaceErr)
		}
	}
	g.painter.Render(g.surface, g.board)
	g.state = AwaitingHumanInput

	if err != nil {
		g.log.Warnw("evaluation not applied", "error", err)
		return err
	}
	count := g.board.Count()
	g.log.Infow("board replaced", "black", count.PlayerA, "white", count.PlayerB)
	return nil
}

func (g *GameLoop) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.settings.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.settings.Timeout)
}

func (g *GameLoop) record(ctx context.Context, exchange evaluation.Exchange) {
	if g.journal == nil {
		return
	}
	if err := g.journal.Record(context.WithoutCancel(ctx), exchange); err != nil {
		g.log.Warnw("failed to record exchange", "request_id", exchange.RequestID, "error", err)
	}
}

func asUnavailable(err error) error {
	if errors.Is(err, apperrors.ErrEvaluationUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrEvaluationUnavailable, err)
}

func encodeIfApplied(next board.Grid, err error) [][]int {
	if err != nil || next == nil {
		return nil
	}
	return evaluation.EncodeGrid(next)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
