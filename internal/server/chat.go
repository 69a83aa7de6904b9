package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/heihei0314/TLIPHelper/internal/guide"
	"github.com/heihei0314/TLIPHelper/session"
)

// sessionCookie carries the session id across chat turns.
const sessionCookie = "tlip_session"

// ChatHandler serves the conversation endpoint. Engine failures still
// produce a 200 with a structured error reply; only malformed request
// bodies are 400s.
type ChatHandler struct {
	Store  session.Store
	Engine session.Handler
	TTL    time.Duration
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.chat)
}

type chatRequest struct {
	UserInput string `json:"userInput"`
	Purpose   string `json:"purpose"`
}

type chatResponse struct {
	guide.Reply
	FullSummaryState guide.State `json:"full_summary_state"`
}

func (h *ChatHandler) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var id string
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		id = cookie.Value
	}
	sess, err := h.Store.EnsureSession(id, h.TTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if sess.ID() != id {
		c.SetCookie(&http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	reply := sess.Converse(c.Request().Context(), h.Engine, guide.Stage(req.Purpose), req.UserInput)
	return c.JSON(http.StatusOK, chatResponse{
		Reply:            reply,
		FullSummaryState: sess.State(),
	})
}
