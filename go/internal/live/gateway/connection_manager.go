package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ConnectionManager keeps the websocket observers of every auction floor
type ConnectionManager struct {
	auctionConnections map[uuid.UUID]map[*Connection]bool
	mu                 sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan BroadcastMessage
}

// Connection is one observer socket
type Connection struct {
	ID          string
	OperatorID  string
	AuctionID   uuid.UUID
	Conn        *websocket.Conn
	Send        chan []byte
	Manager     *ConnectionManager
	ConnectedAt time.Time
}

type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

type BroadcastMessage struct {
	AuctionID uuid.UUID
	Event     *FloorEvent
}

// ConnectionStats is served on /ws/stats
type ConnectionStats struct {
	TotalConnections   int            `json:"total_connections"`
	ActiveAuctions     int            `json:"active_auctions"`
	AuctionConnections map[string]int `json:"auction_connections"`
}

func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second, // must stay below ReadTimeout
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	if config.SendBuffer <= 0 {
		config.SendBuffer = 256
	}
	return &ConnectionManager{
		auctionConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// Start drains the broadcast channel until ctx is cancelled
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			cm.closeAll()
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades the request and registers the socket under auctionID
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, operatorID string, auctionID uuid.UUID) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		OperatorID:  operatorID,
		AuctionID:   auctionID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBuffer),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}
	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("operator_id", operatorID).
		Str("auction_id", auctionID.String()).
		Msg("WebSocket connection established")
	return connection, nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.auctionConnections[conn.AuctionID] == nil {
		cm.auctionConnections[conn.AuctionID] = make(map[*Connection]bool)
	}
	cm.auctionConnections[conn.AuctionID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("auction_id", conn.AuctionID.String()).
		Int("total_connections", len(cm.auctionConnections[conn.AuctionID])).
		Msg("connection registered")
}

// unregisterConnection is safe to call from both pumps; Send is closed once.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	connections, exists := cm.auctionConnections[conn.AuctionID]
	if !exists || !connections[conn] {
		return
	}
	delete(connections, conn)
	close(conn.Send)
	if len(connections) == 0 {
		delete(cm.auctionConnections, conn.AuctionID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("operator_id", conn.OperatorID).
		Str("auction_id", conn.AuctionID.String()).
		Msg("connection unregistered")
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	var all []*Connection
	for _, connections := range cm.auctionConnections {
		for conn := range connections {
			all = append(all, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range all {
		cm.unregisterConnection(conn)
	}
}

// BroadcastToAuction queues event for every observer of auctionID. It never
// blocks; when the queue is full the event is dropped.
func (cm *ConnectionManager) BroadcastToAuction(auctionID uuid.UUID, event *FloorEvent) {
	select {
	case cm.broadcastCh <- BroadcastMessage{AuctionID: auctionID, Event: event}:
	default:
		log.Warn().Str("auction_id", auctionID.String()).Msg("broadcast channel full, dropping message")
	}
}

// SendTo queues event for a single connection, e.g. the snapshot sent on connect
func (cm *ConnectionManager) SendTo(conn *Connection, event *FloorEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if !cm.auctionConnections[conn.AuctionID][conn] {
		return fmt.Errorf("connection %s is closed", conn.ID)
	}
	select {
	case conn.Send <- data:
		return nil
	default:
		return fmt.Errorf("connection %s send buffer full", conn.ID)
	}
}

func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	cm.mu.RLock()
	connections, exists := cm.auctionConnections[message.AuctionID]
	if !exists {
		cm.mu.RUnlock()
		return
	}
	targets := make([]*Connection, 0, len(connections))
	for conn := range connections {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	data, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targets {
		if !cm.offer(conn, data) {
			log.Warn().
				Str("connection_id", conn.ID).
				Str("operator_id", conn.OperatorID).
				Msg("connection send buffer full, closing connection")
			cm.unregisterConnection(conn)
			conn.Conn.Close()
		}
	}

	log.Debug().
		Str("event_type", string(message.Event.Type)).
		Str("auction_id", message.AuctionID.String()).
		Int("connections", len(targets)).
		Msg("event broadcasted")
}

// offer reports false only for a full buffer. A connection unregistered since
// the snapshot was taken is skipped.
func (cm *ConnectionManager) offer(conn *Connection, data []byte) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if !cm.auctionConnections[conn.AuctionID][conn] {
		return true
	}
	select {
	case conn.Send <- data:
		return true
	default:
		return false
	}
}

func (cm *ConnectionManager) Stats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{
		ActiveAuctions:     len(cm.auctionConnections),
		AuctionConnections: make(map[string]int, len(cm.auctionConnections)),
	}
	for auctionID, connections := range cm.auctionConnections {
		stats.TotalConnections += len(connections)
		stats.AuctionConnections[auctionID.String()] = len(connections)
	}
	return stats
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump only keeps the read deadline alive; observers send nothing the
// gateway acts on.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("unexpected WebSocket close error")
			}
			return
		}
		log.Debug().
			Str("connection_id", c.ID).
			Int("bytes", len(message)).
			Msg("ignoring client message")
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
