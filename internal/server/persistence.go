package server

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"sound-clash/internal/db"
)

type eventFields map[string]any

// persistRoom records a newly created room. The server runs fine without
// a database; persistence is journal-only and never read back into live
// room state.
func (s *Server) persistRoom(room *Room) {
	if s.db == nil {
		return
	}
	record := db.Room{
		Code:      room.Code,
		MaxRounds: room.MaxRounds,
		MaxScore:  room.MaxScore,
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Warn().Err(err).Str("room", room.Code).Msg("failed to persist room")
		return
	}
	room.DBID = record.ID
}

// persistEvent appends one entry to the room's event journal. The write
// is dispatched on a goroutine to keep slow databases off the game's
// critical path.
func (s *Server) persistEvent(room *Room, eventType, playerID string, fields eventFields) {
	if s.db == nil || room.DBID == 0 {
		return
	}
	var payload datatypes.JSON
	if len(fields) > 0 {
		raw, err := json.Marshal(fields)
		if err != nil {
			log.Warn().Err(err).Str("event", eventType).Msg("failed to encode event payload")
		} else {
			payload = datatypes.JSON(raw)
		}
	}
	record := db.Event{
		RoomID:   room.DBID,
		Type:     eventType,
		PlayerID: playerID,
		Round:    room.CurrentRound,
		Payload:  payload,
	}
	conn := s.db
	go func() {
		if err := conn.Create(&record).Error; err != nil {
			log.Warn().Err(err).Str("room", room.Code).Str("event", eventType).Msg("failed to persist event")
		}
	}()
}
