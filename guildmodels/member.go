package guildmodels

import "time"

//Member represents one discord user tracked through the vetting lifecycle in
//one guild. At most one row exists per (guild, user).
type Member struct {
	ID              uint   `gorm:"primaryKey"`
	GuildID         uint   `gorm:"not null;uniqueIndex:idx_members_guild_user"`
	UserID          string `gorm:"size:32;not null;uniqueIndex:idx_members_guild_user"`
	Username        string `gorm:"size:100"`
	Status          Status `gorm:"size:50;default:in_progress"`
	Blacklisted     bool   `gorm:"default:false"`
	BlacklistReason string
	JoinedAt        time.Time
	ApprovedAt      *time.Time

	Submissions []Submission `gorm:"constraint:OnDelete:CASCADE"`
	Characters  []Character  `gorm:"constraint:OnDelete:CASCADE"`
}
