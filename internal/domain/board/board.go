package board

import (
	"fmt"

	apperrors "osero_view/internal/errors"
)

const DefaultDimension = 8

type Cell int8

const (
	Empty Cell = iota
	PlayerA
	PlayerB
)

func (c Cell) Valid() bool {
	return c == Empty || c == PlayerA || c == PlayerB
}

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case PlayerA:
		return "black"
	case PlayerB:
		return "white"
	default:
		return fmt.Sprintf("cell(%d)", int8(c))
	}
}

// Grid is addressed grid[row][col].
type Grid [][]Cell

func NewGrid(dimension int) Grid {
	g := make(Grid, dimension)
	for row := range g {
		g[row] = make([]Cell, dimension)
	}
	return g
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for row := range g {
		out[row] = make([]Cell, len(g[row]))
		copy(out[row], g[row])
	}
	return out
}

func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for row := range g {
		if len(g[row]) != len(other[row]) {
			return false
		}
		for col := range g[row] {
			if g[row][col] != other[row][col] {
				return false
			}
		}
	}
	return true
}

// Validate reports whether g is a dimension x dimension grid of known cells.
func (g Grid) Validate(dimension int) error {
	if len(g) != dimension {
		return fmt.Errorf("%w: got %d rows, want %d", apperrors.ErrShapeMismatch, len(g), dimension)
	}
	for row := range g {
		if len(g[row]) != dimension {
			return fmt.Errorf("%w: row %d has %d cells, want %d", apperrors.ErrShapeMismatch, row, len(g[row]), dimension)
		}
		for col, c := range g[row] {
			if !c.Valid() {
				return fmt.Errorf("%w: %v at (%d,%d)", apperrors.ErrInvalidCell, c, col, row)
			}
		}
	}
	return nil
}

type StoneCount struct {
	PlayerA int `json:"black"`
	PlayerB int `json:"white"`
}

func (g Grid) Count() StoneCount {
	var sc StoneCount
	for _, cells := range g {
		for _, c := range cells {
			switch c {
			case PlayerA:
				sc.PlayerA++
			case PlayerB:
				sc.PlayerB++
			}
		}
	}
	return sc
}

// Board is the authoritative cell occupancy of one game. Its dimension
// never changes and its cells only change through Replace.
type Board struct {
	dimension int
	cells     Grid
}

func New(dimension int) *Board {
	return &Board{
		dimension: dimension,
		cells:     NewGrid(dimension),
	}
}

// NewInitial returns a board holding the standard starting position.
func NewInitial(dimension int) *Board {
	b := New(dimension)
	b.Seed()
	return b
}

// Seed places the four centre stones: top-left and bottom-right black,
// top-right and bottom-left white.
func (b *Board) Seed() {
	lo, hi := b.dimension/2-1, b.dimension/2
	if lo < 0 {
		return
	}
	b.cells[lo][lo] = PlayerA
	b.cells[lo][hi] = PlayerB
	b.cells[hi][lo] = PlayerB
	b.cells[hi][hi] = PlayerA
}

func (b *Board) Dimension() int {
	return b.dimension
}

func (b *Board) At(col, row int) Cell {
	return b.cells[row][col]
}

func (b *Board) Contains(col, row int) bool {
	return col >= 0 && col < b.dimension && row >= 0 && row < b.dimension
}

// Snapshot returns a copy of the cells that the caller may keep or modify.
func (b *Board) Snapshot() Grid {
	return b.cells.Clone()
}

func (b *Board) Clone() *Board {
	return &Board{
		dimension: b.dimension,
		cells:     b.cells.Clone(),
	}
}

// Replace swaps in a copy of g. On error the board is left untouched.
func (b *Board) Replace(g Grid) error {
	if err := g.Validate(b.dimension); err != nil {
		return err
	}
	b.cells = g.Clone()
	return nil
}

func (b *Board) Count() StoneCount {
	return b.cells.Count()
}
