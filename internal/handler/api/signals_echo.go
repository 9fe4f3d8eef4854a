package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	models "RWAPulse/internal/domain/models"
	"RWAPulse/internal/render"
	"RWAPulse/internal/service/metrics"
	"RWAPulse/internal/service/ratelimit"
	"RWAPulse/internal/services/analytics"
	"RWAPulse/internal/usecase"
	xhttp "RWAPulse/pkg/http"
	xlogger "RWAPulse/pkg/logger"
)

// Settings is the read-only view served by GET /api/config.
type Settings struct {
	Provider   string                    `json:"provider"`
	OnChain    []string                  `json:"on_chain_venues"`
	OffChain   []string                  `json:"off_chain_venues"`
	Thresholds analytics.ThresholdConfig `json:"thresholds"`
	Interval   string                    `json:"interval"`
}

type AnalyzeResponse struct {
	Analysis models.AnalysisResult `json:"analysis"`
	Signal   models.Signal         `json:"signal"`
	Post     render.Post           `json:"post"`
}

// SignalsEchoHandler serves the signal API.
type SignalsEchoHandler struct {
	logger   *xlogger.Logger
	scanner  *usecase.SignalScanner
	monitor  *usecase.SignalMonitor
	persona  *render.Persona
	limiter  *ratelimit.Limiter
	settings Settings
}

func NewSignalsEchoHandler(
	logger *xlogger.Logger,
	scanner *usecase.SignalScanner,
	monitor *usecase.SignalMonitor,
	persona *render.Persona,
	limiter *ratelimit.Limiter,
	settings Settings,
) *SignalsEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &SignalsEchoHandler{
		logger:   logger,
		scanner:  scanner,
		monitor:  monitor,
		persona:  persona,
		limiter:  limiter,
		settings: settings,
	}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	if h.limiter != nil {
		g.Use(ratelimit.Middleware(h.limiter))
	}
	g.POST("/analyze", h.Analyze)
	g.GET("/signals/latest", h.Latest)
	g.POST("/scan", h.Scan)
	g.GET("/config", h.Config)
}

// Analyze evaluates one snapshot record posted as JSON.
func (h *SignalsEchoHandler) Analyze(c echo.Context) error {
	const endpoint = "analyze"
	start := time.Now()

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.Observe(endpoint, start, "ERR_VALIDATION")
		return xhttp.BadRequestResponse(c, verr)
	}

	res, sig, err := h.scanner.Evaluate(req.ToRecord())
	if err != nil {
		var re *analytics.RecordError
		if errors.As(err, &re) {
			return h.fail(c, endpoint, start, xhttp.InvalidRecordError(re.Field, re.Error()))
		}
		h.logger.Error("analyze usecase error", xlogger.Error(err))
		return h.fail(c, endpoint, start, xhttp.InternalError("analysis failed").WithError(err))
	}

	post, err := h.persona.Render(sig)
	if err != nil {
		h.logger.Error("analyze render error", xlogger.Error(err))
		return h.fail(c, endpoint, start, xhttp.InternalError("render failed").WithError(err))
	}

	metrics.Observe(endpoint, start, "")
	return xhttp.SuccessResponse(c, AnalyzeResponse{Analysis: res, Signal: sig, Post: post})
}

// Latest returns the report of the last completed cycle.
func (h *SignalsEchoHandler) Latest(c echo.Context) error {
	const endpoint = "latest"
	start := time.Now()

	rep, ok, err := h.monitor.Latest(c.Request().Context())
	if err != nil {
		h.logger.Error("latest report read error", xlogger.Error(err))
		return h.fail(c, endpoint, start, xhttp.UnavailableError("report cache unavailable").WithError(err))
	}
	if !ok {
		return h.fail(c, endpoint, start, xhttp.NotFoundError("no scan cycle has completed yet"))
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	metrics.Observe(endpoint, start, "")
	return xhttp.SuccessResponse(c, rep)
}

// Scan runs one cycle now, optionally over a random sample.
func (h *SignalsEchoHandler) Scan(c echo.Context) error {
	const endpoint = "scan"
	start := time.Now()

	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateQuery(c, req); verr != nil {
		metrics.Observe(endpoint, start, "ERR_VALIDATION")
		return xhttp.BadRequestResponse(c, verr)
	}

	rep, err := h.monitor.RunSample(c.Request().Context(), req.Sample)
	if err != nil {
		if errors.Is(err, usecase.ErrSamplingUnsupported) {
			return h.fail(c, endpoint, start, xhttp.BadRequestError(err.Error()))
		}
		h.logger.Error("scan usecase error", xlogger.Error(err))
		return h.fail(c, endpoint, start, xhttp.UnavailableError("snapshot source unavailable").WithError(err))
	}

	metrics.Observe(endpoint, start, "")
	return xhttp.SuccessResponse(c, rep)
}

func (h *SignalsEchoHandler) Config(c echo.Context) error {
	return xhttp.DataResponse(c, http.StatusOK, h.settings)
}

func (h *SignalsEchoHandler) fail(c echo.Context, endpoint string, start time.Time, appErr *xhttp.AppError) error {
	metrics.Observe(endpoint, start, appErr.Code)
	return xhttp.AppErrorResponse(c, appErr)
}

var _ xhttp.Handler = (*SignalsEchoHandler)(nil)
