/*
This file defines the Client struct, representing an active WebSocket
connection. It manages the connection lifecycle, the message communication
loops (ReadPump and WritePump), and translates inbound frames into Hub calls.
*/
package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chessarena/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192
)

// Client struct represents an active WebSocket connection.
type Client struct {
	// the hub this connection reports into.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel used to queue messages waiting to be sent to the client.
	send chan []byte

	// closed when the connection is torn down; gates Send so a stale handle
	// held elsewhere (a room mid grace period) degrades to a dropped message.
	done chan struct{}

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance.
func NewClient(hub *Hub, wsConn *websocket.Conn, remoteAddr string) *Client {
	clientLogger := logx.Logger().With().
		Str("remote_addr", remoteAddr).
		Logger()

	return &Client{
		hub:    hub,
		conn:   wsConn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		logger: clientLogger,
	}
}

// Send marshals the event into the wire envelope and queues it for delivery.
// It never blocks: a full queue drops the message and reports an error, which
// callers treat as a best-effort delivery failure.
func (c *Client) Send(event string, payload any) error {
	env := Envelope{Event: event}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			c.logger.Error().Err(err).Str("event", event).Msg("Error marshaling payload for client")
			return err
		}
		env.Data = data
	}

	frame, err := json.Marshal(env)
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Error marshaling envelope for client")
		return err
	}

	select {
	case <-c.done:
		return fmt.Errorf("client connection closed")
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Str("event", event).
			Msg("Client send channel full, dropping message")
		return fmt.Errorf("client send queue full")
	}
}

// ReadPump handles reading messages from the WebSocket connection.
// It handles heartbeats (Pong), event dispatch, and performs cleanup upon
// connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInboundMessage(messageBytes)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the client's
// ReadPump terminates: the hub sweeps this connection out of presence and the
// queue and, when mid-game, starts the reconnection grace period.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Disconnect(c)

	close(c.done)

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundMessage parses one raw frame and dispatches it to the hub.
func (c *Client) processInboundMessage(messageBytes []byte) {
	var env Envelope
	if err := json.Unmarshal(messageBytes, &env); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch env.Event {
	case EventRegisterUser:
		// register_user carries a bare JSON string, not an object.
		var userID string
		if !c.bind(env, &userID) {
			return
		}
		c.hub.RegisterUser(userID, c)

	case EventCheckOnlineStatus:
		var userIDs []string
		if !c.bind(env, &userIDs) {
			return
		}
		c.hub.OnlineStatuses(userIDs, c)

	case EventFindMatch:
		var p FindMatchPayload
		if !c.bind(env, &p) {
			return
		}
		c.hub.FindMatch(p, c)

	case EventCancelSearch:
		var p CancelSearchPayload
		if !c.bind(env, &p) {
			return
		}
		c.hub.CancelSearch(p, c)

	case EventJoinRoom:
		var p JoinRoomPayload
		if !c.bind(env, &p) {
			return
		}
		c.hub.JoinRoom(p, c)

	case EventMakeMove:
		var p MovePayload
		if !c.bind(env, &p) {
			return
		}
		c.hub.MakeMove(p, c)

	case EventGameOver:
		var p GameOverPayload
		if !c.bind(env, &p) {
			return
		}
		c.hub.GameOver(p)

	case EventSendChallenge:
		var p ChallengePayload
		if !c.bind(env, &p) {
			return
		}
		c.hub.SendChallenge(p)

	case EventRejectChallenge:
		var p RejectChallengePayload
		if !c.bind(env, &p) {
			return
		}
		c.hub.RejectChallenge(p)

	case EventLeaveMatch:
		var p LeaveMatchPayload
		if !c.bind(env, &p) {
			return
		}
		c.hub.LeaveMatch(p, c)

	case EventRejoinGame:
		var p RejoinPayload
		if !c.bind(env, &p) {
			return
		}
		c.hub.RejoinGame(p, c)

	case EventSendFriendRequest:
		var p FriendRequestPayload
		if !c.bind(env, &p) {
			return
		}
		c.hub.SendFriendRequest(p)

	case EventAcceptFriendRequest:
		var p FriendRequestPayload
		if !c.bind(env, &p) {
			return
		}
		c.hub.AcceptFriendRequest(p)

	default:
		c.logger.Warn().Str("event", env.Event).Msg("Client sent unsupported event")
	}
}

// bind unmarshals the envelope data into dst, logging and rejecting bad payloads.
func (c *Client) bind(env Envelope, dst any) bool {
	if err := json.Unmarshal(env.Data, dst); err != nil {
		c.logger.Warn().Err(err).Str("event", env.Event).Msg("Client sent invalid payload")
		return false
	}
	return true
}

// WritePump handles writing messages from the Client.send channel to the
// WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case <-c.done:
			if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing close message")
			}
			return

		case message := <-c.send:
			if !c.writeQueuedMessage(message) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage handles messages pulled from the send channel, writing them to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedMessage(message []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
