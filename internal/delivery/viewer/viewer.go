package viewer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"osero_view/internal/domain/board"
	"osero_view/internal/domain/evaluation"
	apperrors "osero_view/internal/errors"
	"osero_view/internal/httpresponse"
	"osero_view/internal/render"
	"osero_view/internal/usecase/game"
	"osero_view/internal/utils"
)

type GameService interface {
	InvokeCPU(ctx context.Context) error
	PlaceStone(ctx context.Context, col, row int) error
	Reset() error
	RenderTo(surface render.Surface)
	WithSurface(fn func(surface render.Surface) error) error
	State() game.State
	Board() *board.Board
}

type StateResponse struct {
	State string  `json:"state"`
	Black int     `json:"black"`
	White int     `json:"white"`
	Board [][]int `json:"board"`
}

type PlaceRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type pngEncoder interface {
	EncodePNG(w io.Writer) error
}

type ViewerHandler struct {
	log    *zap.SugaredLogger
	gameUC GameService
	layout render.Layout
	hub    *Hub
}

func NewViewerHandler(log *zap.SugaredLogger, gameUC GameService, layout render.Layout, hub *Hub) *ViewerHandler {
	return &ViewerHandler{
		log:    log,
		gameUC: gameUC,
		layout: layout,
		hub:    hub,
	}
}

func (h *ViewerHandler) Routes(r chi.Router) {
	r.Get("/board.png", h.HandleBoardPNG)
	r.Get("/board.pdf", h.HandleBoardPDF)
	r.Get("/state", h.HandleState)
	r.Post("/cpu", h.HandleCPU)
	r.Post("/put", h.HandlePut)
	r.Post("/reset", h.HandleReset)
	r.Handle("/counts", h.hub)
}

// HandleBoardPNG serves the game loop's own canvas. A loop surface that cannot
// encode PNG is replaced by a fresh render.
func (h *ViewerHandler) HandleBoardPNG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := h.gameUC.WithSurface(func(surface render.Surface) error {
		enc, ok := surface.(pngEncoder)
		if !ok {
			return apperrors.ErrCapabilityUnavailable
		}
		return enc.EncodePNG(&buf)
	})
	if errors.Is(err, apperrors.ErrCapabilityUnavailable) {
		buf.Reset()
		canvas := render.NewCanvas(h.layout.Size(), h.layout.Size())
		h.gameUC.RenderTo(canvas)
		err = canvas.EncodePNG(&buf)
	}
	if err != nil {
		h.log.Errorw("failed to encode board png", "error", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (h *ViewerHandler) HandleBoardPDF(w http.ResponseWriter, r *http.Request) {
	size := float64(h.layout.Size())
	doc := render.NewDocument(size, size)
	h.gameUC.RenderTo(doc)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		h.log.Errorw("failed to write board pdf", "error", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (h *ViewerHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, h.snapshot())
}

func (h *ViewerHandler) HandleCPU(w http.ResponseWriter, r *http.Request) {
	if err := h.gameUC.InvokeCPU(r.Context()); err != nil {
		h.writeGameError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, h.snapshot())
}

func (h *ViewerHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Debugw("bad placement request", "error", err)
		httpresponse.WriteError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.gameUC.PlaceStone(r.Context(), req.X, req.Y); err != nil {
		h.writeGameError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, h.snapshot())
}

func (h *ViewerHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.gameUC.Reset(); err != nil {
		h.writeGameError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, h.snapshot())
}

func (h *ViewerHandler) snapshot() StateResponse {
	b := h.gameUC.Board()
	count := b.Count()
	return StateResponse{
		State: h.gameUC.State().String(),
		Black: count.PlayerA,
		White: count.PlayerB,
		Board: evaluation.EncodeGrid(b.Snapshot()),
	}
}

func (h *ViewerHandler) writeGameError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrEvaluationPending):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidCoordinates):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrIllegalPlacement):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrEvaluationUnavailable):
		status = http.StatusBadGateway
	}

	h.log.Infow("game request failed", "status", status, "error", err)
	httpresponse.WriteError(w, status, err)
}
