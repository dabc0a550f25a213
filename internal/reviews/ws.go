package reviews

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"nyaya-backend/internal/bench"
	"nyaya-backend/internal/procurement"
	"nyaya-backend/internal/shared/telemetry"
)

const writeWait = 10 * time.Second

// streamAnalysis reads one case from the socket and writes the bench events for it.
// This goroutine is the only writer; a second goroutine only reads, to notice the
// client going away and cancel the analysis.
func (h *Handler) streamAnalysis(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxCaseBytes)

	_, data, err := conn.ReadMessage()
	if err != nil {
		return
	}
	var kase procurement.Case
	if err := json.Unmarshal(data, &kase); err != nil {
		writeEvent(conn, bench.Event{Status: bench.StatusError, Message: "invalid case: " + err.Error()})
		closeNormal(conn)
		return
	}
	c.Set("caseId", kase.TenderID)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	open := true
	for ev := range h.Bench.Stream(ctx, kase) {
		if !open {
			continue
		}
		if ev.Status == bench.StatusComplete {
			if result, ok := ev.Result.(bench.AnalysisResult); ok {
				c.Set("verdict", result.VerdictTag())
			}
		}
		if err := writeEvent(conn, ev); err != nil {
			telemetry.Warn("ws_write_failed", map[string]any{
				"case_id": kase.TenderID,
				"error":   err,
			})
			open = false
			cancel()
		}
	}
	if open {
		closeNormal(conn)
	}
}

func writeEvent(conn *websocket.Conn, ev bench.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

func closeNormal(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// originChecker mirrors the CORS allow list. Requests without an Origin header
// are not from a browser and pass.
func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := false
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAll = true
		}
		set[strings.ToLower(o)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		if set[strings.ToLower(strings.TrimRight(origin, "/"))] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
