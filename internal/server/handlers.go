package server

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/itsjustRohitch/ResourceScout/config"
	"github.com/itsjustRohitch/ResourceScout/internal/extract"
	"github.com/itsjustRohitch/ResourceScout/internal/scout"
	"github.com/itsjustRohitch/ResourceScout/internal/session"
	"github.com/itsjustRohitch/ResourceScout/models"
	"github.com/itsjustRohitch/ResourceScout/provider"
)

type Handler struct {
	Config    *config.Config
	Engine    *scout.Engine
	Store     session.Store
	Extractor *extract.Extractor
	Secret    []byte
	Logger    *log.Logger
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/session", h.createSession)
	g.GET("/session", h.getSession)
	g.DELETE("/session", h.clearSession)
	g.POST("/documents", h.uploadDocument)
	g.POST("/chat", h.chat)
}

type sessionResponse struct {
	SessionID    string   `json:"session_id"`
	Files        []string `json:"files"`
	MessageCount int      `json:"message_count"`
}

// createSession creates (or refreshes) a session and sets the signed cookie.
func (h *Handler) createSession(c echo.Context) error {
	id := sessionIDFromCookie(c, h.Secret)
	sess, err := h.Store.EnsureSession(id, h.Config.Server.SessionTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := setSessionCookie(c, sess.ID(), h.Secret, h.Config.Server.SessionTTL); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, sessionResponse{
		SessionID:    sess.ID(),
		Files:        sess.Files(),
		MessageCount: len(sess.Messages()),
	})
}

func (h *Handler) getSession(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{
		SessionID:    sess.ID(),
		Files:        sess.Files(),
		MessageCount: len(sess.Messages()),
	})
}

// clearSession wipes session memory but keeps the session (and cookie)
// alive, so the client can start over without a new handshake.
func (h *Handler) clearSession(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	if err := sess.Clear(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type uploadResponse struct {
	Name  string `json:"name"`
	Chars int    `json:"chars"`
}

// uploadDocument ingests one course material file into the session context.
// Re-uploads of an already indexed file are acknowledged without work.
func (h *Handler) uploadDocument(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size > h.Config.Server.MaxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}
	if sess.HasFile(fh.Filename) {
		return c.JSON(http.StatusOK, uploadResponse{Name: fh.Filename})
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	extractor := h.Extractor
	if key := c.Request().Header.Get("X-Api-Key"); key != "" {
		llm, err := h.overrideLLM(key)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		extractor = extract.New(llm, h.Config.Server.MaxUploadSize, nil, h.Logger)
	}

	content, err := extractor.Extract(c.Request().Context(), models.Document{
		Name: fh.Filename,
		MIME: fh.Header.Get("Content-Type"),
		Data: data,
	})
	if err != nil {
		if errors.Is(err, models.ErrUnsupportedType) {
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err := sess.AddContext(content); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, uploadResponse{Name: content.Name, Chars: len(content.Text)})
}

type chatRequest struct {
	Message string `json:"message"`
}

// chat runs one full pipeline turn and returns the ResourceResult.
func (h *Handler) chat(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}

	engine := h.Engine
	if key := c.Request().Header.Get("X-Api-Key"); key != "" {
		llm, err := h.overrideLLM(key)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		engine = engine.WithLLM(llm)
	}

	sess.AddMessage("user", req.Message)
	result, err := engine.Handle(c.Request().Context(), sess, req.Message)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	sess.AddMessage("assistant", result.Explanation)

	return c.JSON(http.StatusOK, result)
}

// session loads the caller's session from the signed cookie.
func (h *Handler) session(c echo.Context) (*session.Session, error) {
	id := sessionIDFromCookie(c, h.Secret)
	if id == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}
	sess, ok := h.Store.GetSession(id)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	}
	sess.Expire(h.Config.Server.SessionTTL)
	return sess, nil
}

// overrideLLM builds a provider bound to a user-supplied key. The key lives
// only for the request; it is never stored or logged.
func (h *Handler) overrideLLM(key string) (provider.Provider, error) {
	name := h.Config.LLM.Default
	if name == "" {
		for k := range h.Config.LLM.Providers {
			name = k
			break
		}
	}
	pc, ok := h.Config.LLM.Providers[name]
	if !ok {
		return nil, provider.ErrNoProvider
	}
	return provider.NewFromProviderConfig(pc, key)
}
