package api

import (
	"TrueSignal/internal/domain/models"
	"TrueSignal/internal/usecase"
	xhttp "TrueSignal/pkg/http"
	xlogger "TrueSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NextActionsEchoHandler serves the per-user checklist.
type NextActionsEchoHandler struct {
	logger *xlogger.Logger
	uc     *usecase.NextActionsUseCase
}

func NewNextActionsEchoHandler(logger *xlogger.Logger, uc *usecase.NextActionsUseCase) *NextActionsEchoHandler {
	return &NextActionsEchoHandler{logger: logger, uc: uc}
}

func (h *NextActionsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/next-actions/:userId/:ticker")
	g.GET("", h.List)
	g.PUT("", h.Replace)
	g.POST("", h.Add)
	g.DELETE("/:actionId", h.Remove)
}

func (h *NextActionsEchoHandler) List(c echo.Context) error {
	req := &models.NextActionsKey{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	actions, err := h.uc.List(c.Request().Context(), *req)
	return h.respond(c, "list", actions, err)
}

func (h *NextActionsEchoHandler) Replace(c echo.Context) error {
	req := &models.PutNextActionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	actions, err := h.uc.Replace(c.Request().Context(), req.NextActionsKey, req.NextActions())
	return h.respond(c, "replace", actions, err)
}

func (h *NextActionsEchoHandler) Add(c echo.Context) error {
	req := &models.AddNextActionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	actions, err := h.uc.Add(c.Request().Context(), req.NextActionsKey, req.Label)
	if err != nil {
		return h.respond(c, "add", nil, err)
	}
	return xhttp.CreatedResponse(c, models.NextActionsResponse{Actions: actions})
}

func (h *NextActionsEchoHandler) Remove(c echo.Context) error {
	req := &models.DeleteNextActionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	actions, err := h.uc.Remove(c.Request().Context(), req.NextActionsKey, req.ActionID)
	return h.respond(c, "remove", actions, err)
}

func (h *NextActionsEchoHandler) respond(c echo.Context, op string, actions []models.NextAction, err error) error {
	if err != nil {
		h.logger.Error("next actions usecase error", xlogger.String("op", op), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, models.NextActionsResponse{Actions: actions})
}
