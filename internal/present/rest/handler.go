package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/internal/present/rest/middleware"
	"github.com/totegamma/nextgen-portal/internal/present/rest/presenter"
	"github.com/totegamma/nextgen-portal/internal/service"
	"github.com/totegamma/nextgen-portal/internal/usecase"
)

type Handler struct {
	search  *usecase.SearchUsecase
	dataset *usecase.DatasetUsecase
	file    *usecase.FileUsecase
	session *usecase.SessionUsecase
	status  *usecase.StatusUsecase
	signal  *service.SignalService
	metrics prometheus.Gatherer
}

func NewHandler(
	search *usecase.SearchUsecase,
	dataset *usecase.DatasetUsecase,
	file *usecase.FileUsecase,
	session *usecase.SessionUsecase,
	status *usecase.StatusUsecase,
	signal *service.SignalService,
	metrics prometheus.Gatherer,
) *Handler {
	return &Handler{
		search:  search,
		dataset: dataset,
		file:    file,
		session: session,
		status:  status,
		signal:  signal,
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, identify echo.MiddlewareFunc) {
	if h.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.metrics, promhttp.HandlerOpts{})))
	}
	e.GET("/realtime", h.handleRealtime, identify)

	api := e.Group("/api", identify)
	api.GET("/status", h.handleStatus)
	api.GET("/metrics/search", h.handleSearchMetrics)
	api.GET("/filters", h.handleFilters)
	api.POST("/marketplace/search", h.handleMarketplaceSearch)
	api.POST("/catalog/search", h.handleCatalogSearch)
	api.POST("/catalog/local-search", h.handleLocalSearch)
	api.GET("/datasets/:id", h.handleGetDataset)
	api.POST("/datasets/:id", h.handleSaveDataset)
	api.DELETE("/datasets/:id", h.handleDeleteDataset)
	api.POST("/datasets/:id/share", h.handleShareDataset)
	api.POST("/datasets/:id/unshare", h.handleUnshareDataset)
	api.POST("/mmio", h.handleUpload)
	api.GET("/mmio/:filename", h.handleDownload)
	api.DELETE("/mmio/:filename", h.handleDeleteFile)
	api.GET("/session", h.handleSession)
	api.PUT("/session/page", h.handleSetPage)
	api.PUT("/session/form", h.handleSetForm)
	api.PUT("/session/token", h.handleSetToken)
	api.DELETE("/session/token", h.handleClearToken)
	api.POST("/session/reset", h.handleResetSession)
	api.GET("/ids/:value", h.handleConvertID)
}

// fail maps usecase errors onto responses.
func fail(c echo.Context, err error) error {
	var idErr *nextgen.IDError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrTokenExpired):
		return presenter.Unauthorized(c, err.Error())
	case errors.Is(err, usecase.ErrUpstream):
		return presenter.BadGateway(c, err)
	case errors.As(err, &idErr):
		return presenter.BadRequest(c, err)
	}
	return presenter.InternalError(c, err)
}

func (h *Handler) handleStatus(c echo.Context) error {
	report, err := h.status.Check(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, report)
}

func (h *Handler) handleSearchMetrics(c echo.Context) error {
	metrics, err := h.status.SearchMetrics(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, metrics)
}

func (h *Handler) handleFilters(c echo.Context) error {
	return presenter.OK(c, domain.DefaultFilterGroups())
}

func (h *Handler) bindQuery(c echo.Context) (usecase.SearchQuery, error) {
	var q usecase.SearchQuery
	if err := c.Bind(&q); err != nil {
		return q, err
	}
	if q.Language == "" {
		q.Language = c.QueryParam("lang")
	}
	return q, nil
}

func (h *Handler) handleMarketplaceSearch(c echo.Context) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	result, err := h.search.Marketplace(c.Request().Context(), q)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleCatalogSearch(c echo.Context) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	result, err := h.search.LocalCatalog(c.Request().Context(), q)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleLocalSearch(c echo.Context) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	result, err := h.search.LocalSearch(c.Request().Context(), q)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, result)
}

// datasetID accepts either an encoded ID hash or a plain identifier.
func datasetID(c echo.Context) (string, error) {
	raw, err := url.PathUnescape(c.Param("id"))
	if err != nil || raw == "" {
		return "", fmt.Errorf("invalid dataset id")
	}
	if decoded, err := nextgen.DecodeID(raw); err == nil {
		return decoded, nil
	}
	return raw, nil
}

func (h *Handler) handleGetDataset(c echo.Context) error {
	id, err := datasetID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	view, err := h.dataset.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, view)
}

func (h *Handler) handleSaveDataset(c echo.Context) error {
	id, err := datasetID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	// body only, the path parameter must not leak into the document
	var document map[string]any
	if err := (&echo.DefaultBinder{}).BindBody(c, &document); err != nil {
		return presenter.BadRequest(c, err)
	}
	saved, err := h.dataset.Save(c.Request().Context(), id, document)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, saved)
}

type toggleResponse struct {
	OK bool `json:"ok"`
}

func (h *Handler) toggle(c echo.Context, op func(echo.Context, string) (bool, error)) error {
	id, err := datasetID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	ok, err := op(c, id)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, toggleResponse{OK: ok})
}

func (h *Handler) handleDeleteDataset(c echo.Context) error {
	return h.toggle(c, func(c echo.Context, id string) (bool, error) {
		return h.dataset.Delete(c.Request().Context(), id)
	})
}

func (h *Handler) handleShareDataset(c echo.Context) error {
	return h.toggle(c, func(c echo.Context, id string) (bool, error) {
		return h.dataset.Share(c.Request().Context(), id)
	})
}

func (h *Handler) handleUnshareDataset(c echo.Context) error {
	return h.toggle(c, func(c echo.Context, id string) (bool, error) {
		return h.dataset.Unshare(c.Request().Context(), id)
	})
}

func (h *Handler) handleUpload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return presenter.BadRequestMessage(c, "missing file")
	}
	file, err := header.Open()
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	defer file.Close()

	location, err := h.file.Upload(c.Request().Context(), header.Filename, file)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"location": location})
}

func (h *Handler) handleDownload(c echo.Context) error {
	filename, err := url.PathUnescape(c.Param("filename"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid filename")
	}
	content, err := h.file.Download(c.Request().Context(), filename)
	if err != nil {
		return fail(c, err)
	}
	return c.Blob(http.StatusOK, http.DetectContentType(content), content)
}

func (h *Handler) handleDeleteFile(c echo.Context) error {
	filename, err := url.PathUnescape(c.Param("filename"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid filename")
	}
	ok, err := h.file.Delete(c.Request().Context(), filename)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, toggleResponse{OK: ok})
}

func (h *Handler) handleSession(c echo.Context) error {
	session, err := h.session.Get(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, session)
}

func (h *Handler) handleSetPage(c echo.Context) error {
	var page domain.Page
	if err := c.Bind(&page); err != nil {
		return presenter.BadRequest(c, err)
	}
	session, err := h.session.SetPage(c.Request().Context(), middleware.SessionID(c), page)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, session)
}

func (h *Handler) handleSetForm(c echo.Context) error {
	var form domain.AppForm
	if err := c.Bind(&form); err != nil {
		return presenter.BadRequest(c, err)
	}
	session, err := h.session.SetAppForm(c.Request().Context(), middleware.SessionID(c), form)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, session)
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (h *Handler) handleSetToken(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.Token == "" {
		return presenter.BadRequestMessage(c, "token is required")
	}
	session, err := h.session.SetToken(c.Request().Context(), middleware.SessionID(c), req.Token)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, session)
}

func (h *Handler) handleClearToken(c echo.Context) error {
	session, err := h.session.ClearToken(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, session)
}

func (h *Handler) handleResetSession(c echo.Context) error {
	session, err := h.session.Reset(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, session)
}

type idResponse struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

func (h *Handler) handleConvertID(c echo.Context) error {
	input, err := url.PathUnescape(c.Param("value"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid value")
	}
	output, err := nextgen.ConvertID(input)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, idResponse{Input: input, Output: output})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type string `json:"type"`
}

// handleRealtime streams the session's notifications over a websocket.
func (h *Handler) handleRealtime(c echo.Context) error {
	sessionID := middleware.SessionID(c)

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx := c.Request().Context()

	notifications, unsubscribe := h.signal.Subscribe(sessionID)
	defer unsubscribe()

	quit := make(chan struct{}, 1)

	go func() {
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {
				var wsErr *websocket.CloseError
				if errors.As(err, &wsErr) {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.DebugContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				quit <- struct{}{}
				return
			}

			switch req.Type {
			case "h": // heartbeat
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case notification, ok := <-notifications:
			if !ok {
				return nil
			}
			err := ws.WriteJSON(notification)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
