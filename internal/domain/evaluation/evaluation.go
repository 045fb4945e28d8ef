package evaluation

import (
	"context"
	"fmt"
	"time"

	"osero_view/internal/domain/board"
	apperrors "osero_view/internal/errors"
)

// Wire values of a cell. Nothing outside this package should see them.
const (
	wireEmpty = 0
	wireBlack = 1
	wireWhite = -1
)

const (
	StatusPlaced   = "true"
	StatusRejected = "false"
)

const (
	KindCPU = "cpu"
	KindPut = "put"
)

type Request struct {
	Board  [][]int `json:"board"`
	Player int     `json:"player"`
}

type PlacementRequest struct {
	Board  [][]int `json:"board"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Player int     `json:"player"`
}

type Response struct {
	Board  [][]int `json:"board"`
	Status string  `json:"status,omitempty"`
}

// Exchange is one evaluator round trip as stored in the journal.
type Exchange struct {
	RequestID string        `json:"request_id" bson:"request_id"`
	Kind      string        `json:"kind" bson:"kind"`
	Player    int           `json:"player" bson:"player"`
	Before    [][]int       `json:"before" bson:"before"`
	After     [][]int       `json:"after,omitempty" bson:"after,omitempty"`
	Applied   bool          `json:"applied" bson:"applied"`
	Error     string        `json:"error,omitempty" bson:"error,omitempty"`
	Duration  time.Duration `json:"duration" bson:"duration"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

func EncodeCell(c board.Cell) int {
	switch c {
	case board.PlayerA:
		return wireBlack
	case board.PlayerB:
		return wireWhite
	default:
		return wireEmpty
	}
}

func DecodeCell(v int) (board.Cell, error) {
	switch v {
	case wireEmpty:
		return board.Empty, nil
	case wireBlack:
		return board.PlayerA, nil
	case wireWhite:
		return board.PlayerB, nil
	default:
		return board.Empty, fmt.Errorf("%w: %d", apperrors.ErrInvalidCell, v)
	}
}

func EncodeGrid(g board.Grid) [][]int {
	out := make([][]int, len(g))
	for row := range g {
		out[row] = make([]int, len(g[row]))
		for col, c := range g[row] {
			out[row][col] = EncodeCell(c)
		}
	}
	return out
}

func DecodeGrid(raw [][]int) (board.Grid, error) {
	out := make(board.Grid, len(raw))
	for row := range raw {
		out[row] = make([]board.Cell, len(raw[row]))
		for col, v := range raw[row] {
			c, err := DecodeCell(v)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", col, row, err)
			}
			out[row][col] = c
		}
	}
	return out, nil
}

func NewRequest(g board.Grid, player board.Cell) Request {
	return Request{
		Board:  EncodeGrid(g),
		Player: EncodeCell(player),
	}
}

func NewPlacementRequest(g board.Grid, col, row int, player board.Cell) PlacementRequest {
	return PlacementRequest{
		Board:  EncodeGrid(g),
		X:      col,
		Y:      row,
		Player: EncodeCell(player),
	}
}

// Grid decodes the board carried by the response.
func (r Response) Grid() (board.Grid, error) {
	if r.Board == nil {
		return nil, fmt.Errorf("%w: response has no board", apperrors.ErrShapeMismatch)
	}
	return DecodeGrid(r.Board)
}

func (r Response) Placed() bool {
	return r.Status == StatusPlaced
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
