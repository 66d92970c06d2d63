package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	MinPlayers               int
	DefaultMaxRounds         int
	DefaultMaxScore          int
	SoundSetSize             int
	PromptChoices            int
	PromptSelectSeconds      int
	SoundSelectSeconds       int
	SoundGraceSeconds        int
	ReconnectWaitSeconds     int
	VoteWindowSeconds        int
	ResultsSettleSeconds     int
	BotActionDelaySeconds    int
	RoomIdleTimeoutSeconds   int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
}

func Default() Config {
	return Config{
		MinPlayers:               3,
		DefaultMaxRounds:         5,
		DefaultMaxScore:          3,
		SoundSetSize:             6,
		PromptChoices:            3,
		PromptSelectSeconds:      30,
		SoundSelectSeconds:       60,
		SoundGraceSeconds:        20,
		ReconnectWaitSeconds:     30,
		VoteWindowSeconds:        20,
		ResultsSettleSeconds:     8,
		BotActionDelaySeconds:    2,
		RoomIdleTimeoutSeconds:   1800,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
	}
}

func Load() Config {
	cfg := Default()
	loadInt(&cfg.MinPlayers, "MIN_PLAYERS")
	loadInt(&cfg.DefaultMaxRounds, "MAX_ROUNDS")
	loadInt(&cfg.DefaultMaxScore, "MAX_SCORE")
	loadInt(&cfg.SoundSetSize, "SOUND_SET_SIZE")
	loadInt(&cfg.PromptChoices, "PROMPT_CHOICES")
	loadInt(&cfg.PromptSelectSeconds, "PROMPT_SELECT_SECONDS")
	loadInt(&cfg.SoundSelectSeconds, "SOUND_SELECT_SECONDS")
	loadInt(&cfg.SoundGraceSeconds, "SOUND_GRACE_SECONDS")
	loadInt(&cfg.ReconnectWaitSeconds, "RECONNECT_WAIT_SECONDS")
	loadInt(&cfg.VoteWindowSeconds, "VOTE_WINDOW_SECONDS")
	loadInt(&cfg.ResultsSettleSeconds, "RESULTS_SETTLE_SECONDS")
	loadInt(&cfg.BotActionDelaySeconds, "BOT_ACTION_DELAY_SECONDS")
	loadInt(&cfg.RoomIdleTimeoutSeconds, "ROOM_IDLE_TIMEOUT_SECONDS")
	loadInt(&cfg.DBMaxOpenConns, "DB_MAX_OPEN_CONNS")
	loadInt(&cfg.DBMaxIdleConns, "DB_MAX_IDLE_CONNS")
	loadInt(&cfg.DBConnMaxLifetimeSeconds, "DB_CONN_MAX_LIFETIME_SECONDS")
	return cfg
}

func loadInt(dest *int, key string) {
	if raw := os.Getenv(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			*dest = value
		}
	}
}
