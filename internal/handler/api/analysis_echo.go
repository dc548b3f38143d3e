package api

import (
	"TrueSignal/internal/domain/models"
	"TrueSignal/internal/usecase"
	xhttp "TrueSignal/pkg/http"
	xlogger "TrueSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler serves the analysis, derived facts and news digest routes.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	analysis *usecase.AnalysisUseCase
	facts    *usecase.FactsUseCase
	news     *usecase.NewsUseCase
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, analysis *usecase.AnalysisUseCase, facts *usecase.FactsUseCase, news *usecase.NewsUseCase) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{logger: logger, analysis: analysis, facts: facts, news: news}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/ai-analysis/:ticker", h.Analyze)
	g.GET("/derived/:ticker", h.Derived)
	g.GET("/news-digest/:symbol", h.NewsDigest)
}

func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analysis.Analyze(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("analysis usecase error", xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Derived(c echo.Context) error {
	req := &models.DerivedFactsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.facts.Derived(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("derived usecase error", xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) NewsDigest(c echo.Context) error {
	req := &models.NewsDigestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.news.Digest(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("news digest usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, res)
}
