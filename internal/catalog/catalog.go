package catalog

import (
	"math/rand"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sound-clash/internal/db"
)

// Prompt is a judge-facing prompt offered during prompt selection.
type Prompt struct {
	ID   string
	Text string
}

// Catalog serves prompts and sound ids. When a database connection is
// present the library tables are used; otherwise the built-in sets apply.
type Catalog struct {
	conn *gorm.DB
}

func New(conn *gorm.DB) *Catalog {
	return &Catalog{conn: conn}
}

// Prompts returns up to n random prompts, preferring ones outside exclude.
// If exclusion leaves fewer than n candidates the excluded ones are reused.
func (c *Catalog) Prompts(n int, exclude map[string]struct{}) []Prompt {
	all := c.allPrompts()
	if n <= 0 || len(all) == 0 {
		return nil
	}
	fresh := make([]Prompt, 0, len(all))
	stale := make([]Prompt, 0)
	for _, prompt := range all {
		if _, used := exclude[prompt.ID]; used {
			stale = append(stale, prompt)
			continue
		}
		fresh = append(fresh, prompt)
	}
	rand.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })
	rand.Shuffle(len(stale), func(i, j int) { stale[i], stale[j] = stale[j], stale[i] })
	picked := append(fresh, stale...)
	if len(picked) > n {
		picked = picked[:n]
	}
	return picked
}

// SoundSet draws n random sound ids.
func (c *Catalog) SoundSet(n int) []string {
	all := c.allSounds()
	if n <= 0 || len(all) == 0 {
		return nil
	}
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// HasSound reports whether the catalog knows the given sound id.
func (c *Catalog) HasSound(soundID string) bool {
	for _, id := range c.allSounds() {
		if id == soundID {
			return true
		}
	}
	return false
}

func (c *Catalog) allPrompts() []Prompt {
	if c.conn != nil {
		var records []db.PromptLibrary
		if err := c.conn.Order("id asc").Find(&records).Error; err == nil && len(records) > 0 {
			prompts := make([]Prompt, 0, len(records))
			for _, record := range records {
				prompts = append(prompts, Prompt{ID: promptID(record.ID), Text: record.Text})
			}
			return prompts
		}
	}
	prompts := make([]Prompt, 0, len(builtinPrompts))
	for i, text := range builtinPrompts {
		prompts = append(prompts, Prompt{ID: promptID(uint(i + 1)), Text: text})
	}
	return prompts
}

func (c *Catalog) allSounds() []string {
	if c.conn != nil {
		var records []db.SoundAsset
		if err := c.conn.Order("id asc").Find(&records).Error; err == nil && len(records) > 0 {
			ids := make([]string, 0, len(records))
			for _, record := range records {
				ids = append(ids, record.SoundID)
			}
			return ids
		}
	}
	ids := make([]string, len(builtinSounds))
	copy(ids, builtinSounds)
	return ids
}

// Seed inserts the built-in prompts and sounds into the library tables,
// skipping rows that already exist.
func Seed(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	for _, text := range builtinPrompts {
		record := db.PromptLibrary{Text: text}
		if err := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
			return err
		}
	}
	for _, id := range builtinSounds {
		record := db.SoundAsset{SoundID: id, Label: id}
		if err := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}
