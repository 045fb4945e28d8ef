package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "osero_view/internal/errors"
)

func TestNewInitial(t *testing.T) {
	b := NewInitial(DefaultDimension)

	require.Equal(t, 8, b.Dimension())
	cells := b.Snapshot()
	assert.Equal(t, PlayerA, cells[3][3])
	assert.Equal(t, PlayerB, cells[4][3])
	assert.Equal(t, PlayerB, cells[3][4])
	assert.Equal(t, PlayerA, cells[4][4])

	for row := range cells {
		for col := range cells[row] {
			if (row == 3 || row == 4) && (col == 3 || col == 4) {
				continue
			}
			assert.Equal(t, Empty, cells[row][col], "cell (%d,%d)", col, row)
		}
	}

	assert.Equal(t, PlayerB, b.At(4, 3), "top-right of the centre block")
	assert.Equal(t, PlayerB, b.At(3, 4), "bottom-left of the centre block")
	assert.Equal(t, StoneCount{PlayerA: 2, PlayerB: 2}, b.Count())
}

func TestNew_AllEmpty(t *testing.T) {
	b := New(4)

	assert.Equal(t, StoneCount{}, b.Count())
	assert.Len(t, b.Snapshot(), 4)
}

func TestBoard_Replace(t *testing.T) {
	t.Run("Replaces the whole grid", func(t *testing.T) {
		// Given: the starting position and a grid with one extra white stone
		b := NewInitial(DefaultDimension)
		next := b.Snapshot()
		next[2][3] = PlayerB

		// When: the grid is replaced
		err := b.Replace(next)

		// Then: the board holds the new grid
		require.NoError(t, err)
		assert.True(t, b.Snapshot().Equal(next))
		assert.Equal(t, StoneCount{PlayerA: 2, PlayerB: 3}, b.Count())
	})

	t.Run("Does not alias the caller's grid", func(t *testing.T) {
		b := New(DefaultDimension)
		next := NewGrid(DefaultDimension)

		require.NoError(t, b.Replace(next))
		next[0][0] = PlayerA

		assert.Equal(t, Empty, b.At(0, 0))
	})

	t.Run("Rejects a grid with the wrong number of rows", func(t *testing.T) {
		b := NewInitial(DefaultDimension)
		before := b.Snapshot()

		err := b.Replace(NewGrid(DefaultDimension - 1))

		require.ErrorIs(t, err, apperrors.ErrShapeMismatch)
		assert.True(t, b.Snapshot().Equal(before))
	})

	t.Run("Rejects a ragged grid", func(t *testing.T) {
		b := NewInitial(DefaultDimension)
		before := b.Snapshot()
		ragged := NewGrid(DefaultDimension)
		ragged[5] = ragged[5][:7]

		err := b.Replace(ragged)

		require.ErrorIs(t, err, apperrors.ErrShapeMismatch)
		assert.True(t, b.Snapshot().Equal(before))
	})

	t.Run("Rejects unknown cell values", func(t *testing.T) {
		b := NewInitial(DefaultDimension)
		bad := b.Snapshot()
		bad[0][0] = Cell(7)

		err := b.Replace(bad)

		require.ErrorIs(t, err, apperrors.ErrInvalidCell)
		assert.Equal(t, Empty, b.At(0, 0))
	})
}

func TestBoard_SnapshotIsIndependent(t *testing.T) {
	b := NewInitial(DefaultDimension)

	snap := b.Snapshot()
	snap[3][3] = Empty

	assert.Equal(t, PlayerA, b.At(3, 3))

	clone := b.Clone()
	require.NoError(t, clone.Replace(NewGrid(DefaultDimension)))
	assert.Equal(t, StoneCount{PlayerA: 2, PlayerB: 2}, b.Count())
}

func TestBoard_Contains(t *testing.T) {
	b := New(DefaultDimension)

	assert.True(t, b.Contains(0, 0))
	assert.True(t, b.Contains(7, 7))
	assert.False(t, b.Contains(8, 0))
	assert.False(t, b.Contains(0, -1))
}
