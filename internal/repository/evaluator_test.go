package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"osero_view/internal/bootstrap"
	"osero_view/internal/domain/board"
	"osero_view/internal/domain/evaluation"
	apperrors "osero_view/internal/errors"
)

func newTestEvaluator(url string) *EvaluatorRepository {
	return NewEvaluatorRepository(&bootstrap.Config{EvaluatorUrl: url}, zap.NewNop().Sugar())
}

func TestEvaluatorRepository_RequestMove(t *testing.T) {
	initial := board.NewInitial(board.DefaultDimension).Snapshot()

	t.Run("Posts the board and decodes the reply", func(t *testing.T) {
		// Given: an evaluator that answers with one extra white stone
		var got evaluation.Request
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/cpu", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			reply := got.Board
			reply[2][3] = -1
			_ = json.NewEncoder(w).Encode(map[string]any{"board": reply, "player": got.Player, "status": ""})
		}))
		defer server.Close()

		// When: a move is requested for white
		next, err := newTestEvaluator(server.URL+"/").RequestMove(context.Background(), initial, board.PlayerB)

		// Then: the request carried the wire board and the reply is decoded
		require.NoError(t, err)
		assert.Equal(t, -1, got.Player)
		assert.Equal(t, evaluation.EncodeGrid(initial)[3], got.Board[3])
		assert.Equal(t, board.PlayerB, next[2][3])
		assert.Equal(t, board.StoneCount{PlayerA: 2, PlayerB: 3}, next.Count())
	})

	t.Run("Uses the request id from the context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
			_, _ = io.Copy(w, r.Body)
		}))
		defer server.Close()

		ctx := evaluation.WithRequestID(context.Background(), "req-1")
		next, err := newTestEvaluator(server.URL).RequestMove(ctx, initial, board.PlayerB)

		require.NoError(t, err)
		assert.True(t, next.Equal(initial))
	})

	t.Run("Transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := newTestEvaluator(url).RequestMove(context.Background(), initial, board.PlayerB)

		require.ErrorIs(t, err, apperrors.ErrEvaluationUnavailable)
	})

	t.Run("Non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newTestEvaluator(server.URL).RequestMove(context.Background(), initial, board.PlayerB)

		require.ErrorIs(t, err, apperrors.ErrEvaluationUnavailable)
	})

	t.Run("Undecodable body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>oops</html>"))
		}))
		defer server.Close()

		_, err := newTestEvaluator(server.URL).RequestMove(context.Background(), initial, board.PlayerB)

		require.ErrorIs(t, err, apperrors.ErrEvaluationUnavailable)
	})

	t.Run("Board of the wrong shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"board":[[0,0],[0,0]]}`))
		}))
		defer server.Close()

		_, err := newTestEvaluator(server.URL).RequestMove(context.Background(), initial, board.PlayerB)

		require.ErrorIs(t, err, apperrors.ErrEvaluationUnavailable)
		require.ErrorIs(t, err, apperrors.ErrShapeMismatch)
	})

	t.Run("Unknown cell values", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req evaluation.Request
			_ = json.NewDecoder(r.Body).Decode(&req)
			req.Board[0][0] = 5
			_ = json.NewEncoder(w).Encode(req)
		}))
		defer server.Close()

		_, err := newTestEvaluator(server.URL).RequestMove(context.Background(), initial, board.PlayerB)

		require.ErrorIs(t, err, apperrors.ErrEvaluationUnavailable)
		require.ErrorIs(t, err, apperrors.ErrInvalidCell)
	})

	t.Run("Deadline exceeded", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := newTestEvaluator(server.URL).RequestMove(ctx, initial, board.PlayerB)

		require.ErrorIs(t, err, apperrors.ErrEvaluationUnavailable)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestEvaluatorRepository_RequestPlacement(t *testing.T) {
	initial := board.NewInitial(board.DefaultDimension).Snapshot()

	t.Run("Accepted placement", func(t *testing.T) {
		var got evaluation.PlacementRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/put", r.URL.Path)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			reply := got.Board
			reply[got.Y][got.X] = got.Player
			reply[3][3] = got.Player
			_ = json.NewEncoder(w).Encode(evaluation.Response{Board: reply, Status: evaluation.StatusPlaced})
		}))
		defer server.Close()

		next, placed, err := newTestEvaluator(server.URL).RequestPlacement(context.Background(), initial, 3, 2, board.PlayerA)

		require.NoError(t, err)
		require.True(t, placed)
		assert.Equal(t, 3, got.X)
		assert.Equal(t, 2, got.Y)
		assert.Equal(t, 1, got.Player)
		assert.Equal(t, board.PlayerA, next[2][3])
	})

	t.Run("Rejected placement", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req evaluation.PlacementRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(evaluation.Response{Board: req.Board, Status: evaluation.StatusRejected})
		}))
		defer server.Close()

		next, placed, err := newTestEvaluator(server.URL).RequestPlacement(context.Background(), initial, 0, 0, board.PlayerA)

		require.NoError(t, err)
		assert.False(t, placed)
		assert.Nil(t, next)
	})
}
