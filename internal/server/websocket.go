package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type wsMeta struct {
	role     string
	playerID string
}

type wsEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]wsMeta
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*websocket.Conn]wsMeta),
	}
}

func (h *wsHub) Add(code string, conn *websocket.Conn, meta wsMeta) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		group = make(map[*websocket.Conn]wsMeta)
		h.groups[code] = group
	}
	group[conn] = meta
}

func (h *wsHub) Remove(code string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, code)
	}
}

func (h *wsHub) Send(conn *websocket.Conn, event serverEvent) {
	data, err := json.Marshal(wsEnvelope{Type: event.eventType(), Data: event})
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *wsHub) Broadcast(code string, event serverEvent) {
	h.broadcast(code, event, "")
}

// BroadcastRole delivers only to connections holding the given role.
func (h *wsHub) BroadcastRole(code, role string, event serverEvent) {
	h.broadcast(code, event, role)
}

func (h *wsHub) broadcast(code string, event serverEvent, role string) {
	h.mu.Lock()
	group := h.groups[code]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn, meta := range group {
		if role != "" && meta.role != role {
			continue
		}
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(wsEnvelope{Type: event.eventType(), Data: event})
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(code, conn)
		}
	}
}

// CloseRoom drops every connection in a room's group. Used when a room
// is torn down.
func (h *wsHub) CloseRoom(code string) {
	h.mu.Lock()
	group := h.groups[code]
	delete(h.groups, code)
	h.mu.Unlock()
	for conn := range group {
		_ = conn.Close()
	}
}

// HasPlayerConn reports whether another live connection claims the same
// player, so a re-established transport doesn't count as a disconnect.
func (h *wsHub) HasPlayerConn(code, playerID string, except *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, meta := range h.groups[code] {
		if conn == except {
			continue
		}
		if meta.role == wsRolePlayer && meta.playerID == playerID {
			return true
		}
	}
	return false
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	code := normalizeCode(chi.URLParam(r, "code"))
	room, ok := s.store.GetRoom(code)
	if !ok {
		http.NotFound(w, r)
		return
	}
	role := r.URL.Query().Get("role")
	switch role {
	case wsRoleViewer, wsRoleDisplay:
	default:
		role = wsRolePlayer
	}
	playerID := r.URL.Query().Get("player_id")
	if role == wsRolePlayer && room.FindPlayer(playerID) == nil {
		http.NotFound(w, r)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Info().Str("room_code", code).Str("role", role).Str("remote", r.RemoteAddr).Msg("ws connected")
	s.ws.Add(code, conn, wsMeta{role: role, playerID: playerID})
	s.attachConnection(code, role, playerID)
	if room, ok := s.store.GetRoom(code); ok {
		s.ws.Send(conn, RoomUpdated{Room: snapshot(room)})
	}
	go s.readWS(code, conn, wsMeta{role: role, playerID: playerID})
}

func (s *Server) readWS(code string, conn *websocket.Conn, meta wsMeta) {
	defer func() {
		s.ws.Remove(code, conn)
		s.detachConnection(code, conn, meta)
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Debug().Str("room_code", code).Str("role", meta.role).Err(err).Msg("ws disconnected")
			return
		}
	}
}

// attachConnection records a new live connection on the room aggregate.
// When the attaching player is the one the reconnection coordinator is
// waiting on, the attach runs the full reconnect path so the pause does
// not outlive the player's return.
func (s *Server) attachConnection(code, role, playerID string) {
	if role == wsRolePlayer {
		if room, ok := s.store.GetRoom(code); ok && room.Reconnect != nil && room.Reconnect.PlayerID == playerID {
			if _, err := s.Reconnect(code, playerID); err == nil {
				return
			}
		}
	}
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		switch role {
		case wsRoleDisplay:
			room.MainScreens++
		case wsRolePlayer:
			if player := room.FindPlayer(playerID); player != nil {
				player.Connected = true
			}
		}
		return nil
	})
	if err != nil {
		return
	}
	s.broadcastRoomUpdate(room)
}

// detachConnection handles the transport dropping: displays decrement the
// main-screen count, players hand the event to the reconnection
// coordinator.
func (s *Server) detachConnection(code string, conn *websocket.Conn, meta wsMeta) {
	switch meta.role {
	case wsRoleDisplay:
		room, err := s.store.UpdateRoom(code, func(room *Room) error {
			if room.MainScreens > 0 {
				room.MainScreens--
			}
			return nil
		})
		if err != nil {
			return
		}
		s.broadcastRoomUpdate(room)
	case wsRolePlayer:
		if meta.playerID == "" {
			return
		}
		if s.ws.HasPlayerConn(code, meta.playerID, conn) {
			return
		}
		s.handlePlayerDropped(code, meta.playerID)
	}
}

func (s *Server) broadcastRoomUpdate(room *Room) {
	if s.ws == nil {
		return
	}
	s.ws.Broadcast(room.Code, RoomUpdated{Room: snapshot(room)})
}
