package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rigworks-backend/internal/logger"
	"rigworks-backend/internal/models"
	"rigworks-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	store  services.Store
	market *services.MarketService
	hub    *WebSocketHub
}

type WebSocketHub struct {
	clients    map[int64]*websocket.Conn
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	UserID int64
	Conn   *websocket.Conn
}

type Message struct {
	Type   string      `json:"type"`
	UserID int64       `json:"user_id,omitempty"`
	Data   interface{} `json:"data"`
}

func NewWebSocketHandler(store services.Store, market *services.MarketService) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[int64]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
	}

	go hub.run()

	return &WebSocketHandler{
		store:  store,
		market: market,
		hub:    hub,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetInt64("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("failed to upgrade to websocket", zap.Error(err))
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	h.sendSnapshot(client)

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			break
		}

		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case "PING":
		h.sendPong(client)
	case "REFRESH":
		h.sendSnapshot(client)
	}
}

// sendSnapshot pushes the player's balances and the current market
// trends in one message.
func (h *WebSocketHandler) sendSnapshot(client *Client) {
	ctx, cancel := contextWithTimeout()
	defer cancel()

	account, err := h.store.GetAccount(ctx, client.UserID)
	if err != nil {
		logger.Warn("failed to load account for ws snapshot", zap.Int64("user_id", client.UserID), zap.Error(err))
		return
	}

	data := gin.H{
		"balance":    account.Balance,
		"materials":  account.Materials,
		"energy":     account.Energy,
		"expedition": account.ActiveExpedition,
	}
	if state, err := h.market.Current(ctx); err == nil {
		data["market"] = marketSummary(state)
	}

	client.Conn.WriteJSON(Message{Type: "SNAPSHOT", Data: data})
}

func (h *WebSocketHandler) sendPong(client *Client) {
	client.Conn.WriteJSON(Message{
		Type: "PONG",
		Data: gin.H{"timestamp": time.Now().Unix()},
	})
}

// BroadcastMarketUpdate pushes the latest market trends to every
// connected client.
func (h *WebSocketHandler) BroadcastMarketUpdate(state *models.MarketState) {
	h.hub.broadcast <- &Message{
		Type: "MARKET_UPDATE",
		Data: marketSummary(state),
	}
}

// NotifyUser pushes a typed event to one connected client, if online.
func (h *WebSocketHandler) NotifyUser(userID int64, msgType string, data interface{}) {
	h.hub.broadcast <- &Message{Type: msgType, UserID: userID, Data: data}
}

func marketSummary(state *models.MarketState) gin.H {
	trends := make(map[int]gin.H, len(state.Trends))
	for tier, t := range state.Trends {
		trends[tier] = gin.H{
			"price":      t.CurrentPrice,
			"multiplier": t.Multiplier,
			"trend":      t.Trend,
		}
	}
	return gin.H{
		"trends":      trends,
		"next_update": state.NextUpdate,
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.UserID] = client.Conn
			logger.Debug("websocket client registered", zap.Int64("user_id", client.UserID))

		case client := <-hub.unregister:
			if _, ok := hub.clients[client.UserID]; ok {
				delete(hub.clients, client.UserID)
				logger.Debug("websocket client unregistered", zap.Int64("user_id", client.UserID))
			}

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)
		}
	}
}

func (hub *WebSocketHub) broadcastMessage(message *Message) {
	if message.UserID != 0 {
		if conn, ok := hub.clients[message.UserID]; ok {
			conn.WriteJSON(message)
		}
	} else {
		for _, conn := range hub.clients {
			conn.WriteJSON(message)
		}
	}
}
