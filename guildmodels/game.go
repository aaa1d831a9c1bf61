package guildmodels

import "time"

//Game is a game community tracked within a guild.
type Game struct {
	ID      uint   `gorm:"primaryKey"`
	GuildID uint   `gorm:"index;not null"`
	Name    string `gorm:"size:100;not null"`
	//No default tag so a disabled game is storable; creators set this.
	Enabled bool

	Characters []Character `gorm:"constraint:OnDelete:CASCADE"`
}

//Character is a member's profile for one game.
type Character struct {
	ID          uint   `gorm:"primaryKey"`
	MemberID    uint   `gorm:"index;not null"`
	GameID      uint   `gorm:"index;not null"`
	Name        string `gorm:"size:100;not null"`
	Race        string `gorm:"size:50"`
	Roles       string
	Professions string
	Notes       string
	CreatedAt   time.Time
}
