package guildmodels

import "time"

//Announcement is a message scheduled to be posted to a guild channel at a
//future time. PostedAt stays nil until the announcer loop delivers it.
type Announcement struct {
	ID           uint   `gorm:"primaryKey"`
	GuildID      uint   `gorm:"index;not null"`
	AuthorID     string `gorm:"size:32;not null"`
	ChannelID    string `gorm:"size:32;not null"`
	Content      string `gorm:"not null"`
	ScheduledFor *time.Time
	PostedAt     *time.Time
	CreatedAt    time.Time
}
