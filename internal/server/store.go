package server

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store owns the set of active rooms. All mutating calls for a room go
// through UpdateRoom, which serializes them under the store lock; a
// closure either fully applies or returns an error leaving state intact.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
	}
}

func (s *Store) CreateRoom(maxRounds, maxScore int, name, color, emoji string) (*Room, *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := newRoomCode()
	for s.rooms[code] != nil {
		code = newRoomCode()
	}
	room := &Room{
		Code:           code,
		Phase:          phaseLobby,
		PhaseStartedAt: timeNowUTC(),
		MaxRounds:      maxRounds,
		MaxScore:       maxScore,
		UsedPromptIDs:  make(map[string]struct{}),
		LastActivity:   timeNowUTC(),
	}
	player := newPlayer(name, color, emoji, 0)
	player.IsVIP = true
	room.Players = append(room.Players, player)
	s.rooms[code] = room
	return room, &room.Players[0]
}

func newPlayer(name, color, emoji string, index int) Player {
	if color == "" {
		color = pickPlayerColor(index)
	}
	if emoji == "" {
		emoji = pickPlayerEmoji(index)
	}
	return Player{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		Emoji:     emoji,
		Connected: true,
	}
}

func (s *Store) GetRoom(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[normalizeCode(code)]
	return room, ok
}

func (s *Store) UpdateRoom(code string, update func(room *Room) error) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[normalizeCode(code)]
	if !ok {
		return nil, errRoomNotFound
	}
	if err := update(room); err != nil {
		return nil, err
	}
	room.LastActivity = timeNowUTC()
	return room, nil
}

func (s *Store) AddPlayer(code, name, color, emoji string) (*Room, *Player, error) {
	return s.addPlayer(code, name, color, emoji, false)
}

func (s *Store) AddBot(code, name string) (*Room, *Player, error) {
	return s.addPlayer(code, name, "", "", true)
}

func (s *Store) addPlayer(code, name, color, emoji string, isBot bool) (*Room, *Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[normalizeCode(code)]
	if !ok {
		return nil, nil, errRoomNotFound
	}
	if room.Phase != phaseLobby {
		return nil, nil, rejectInvalidState("game already started")
	}
	if existing := room.FindPlayerByName(name); existing != nil {
		return nil, nil, rejectDuplicate("name already taken")
	}
	player := newPlayer(name, color, emoji, len(room.Players))
	player.IsBot = isBot
	room.Players = append(room.Players, player)
	room.LastActivity = timeNowUTC()
	return room, &room.Players[len(room.Players)-1], nil
}

func (s *Store) RemoveRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, normalizeCode(code))
}

func (s *Store) ListSummaries() []RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]RoomSummary, 0, len(s.rooms))
	for _, room := range s.rooms {
		list = append(list, RoomSummary{
			Code:    room.Code,
			Phase:   room.Phase,
			Players: len(room.Players),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Code < list[j].Code
	})
	return list
}

// StaleRooms returns the codes of rooms with no recent activity, or with
// every roster member disconnected. Used by the cleanup sweep.
func (s *Store) StaleRooms(isStale func(room *Room) bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]string, 0)
	for code, room := range s.rooms {
		if isStale(room) {
			codes = append(codes, code)
		}
	}
	return codes
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
