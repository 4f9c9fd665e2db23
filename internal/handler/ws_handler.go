/*
This file contains the HandleWebSocket function, which is responsible for rate
limiting, upgrading the HTTP connection to WebSocket, and starting the client
lifecycle against the game hub.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"chessarena/internal/app/game"
	"chessarena/internal/pkg/errs"
	"chessarena/internal/pkg/limiter"
	"chessarena/internal/pkg/logx"
	"chessarena/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection
// requests. Identity is established in-band afterwards via register_user, so
// the upgrade itself carries no parameters.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := game.NewClient(deps.Hub, conn, ip)

		go client.WritePump()

		logx.Info("WebSocket connection established", "ip", ip)

		client.ReadPump()
	}
}
