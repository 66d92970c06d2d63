package server

import "crypto/rand"

func newRoomCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "AAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}

func pickPlayerColor(index int) string {
	palette := []string{
		"#ff6b6b",
		"#4dabf7",
		"#51cf66",
		"#ffa94d",
		"#ffd43b",
		"#845ef7",
		"#20c997",
		"#e64980",
	}
	if index < 0 {
		index = 0
	}
	return palette[index%len(palette)]
}

func pickPlayerEmoji(index int) string {
	emojis := []string{"🦊", "🐸", "🐙", "🦄", "🐢", "🦜", "🐼", "🦁", "🐌", "🦖", "🐳", "🐝"}
	if index < 0 {
		index = 0
	}
	return emojis[index%len(emojis)]
}
