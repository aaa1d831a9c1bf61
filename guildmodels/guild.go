package guildmodels

import "time"

//Guild is the root record for a discord server managed by this bot. Every
//other row in the schema hangs off a guild and is removed when it is.
type Guild struct {
	ID        uint   `gorm:"primaryKey"`
	DiscordID string `gorm:"uniqueIndex;size:32;not null"`
	Name      string `gorm:"size:100"`
	CreatedAt time.Time

	Channels      []ChannelRegistry `gorm:"constraint:OnDelete:CASCADE"`
	Roles         []RoleRegistry    `gorm:"constraint:OnDelete:CASCADE"`
	Members       []Member          `gorm:"constraint:OnDelete:CASCADE"`
	Questions     []Question        `gorm:"constraint:OnDelete:CASCADE"`
	Games         []Game            `gorm:"constraint:OnDelete:CASCADE"`
	Announcements []Announcement    `gorm:"constraint:OnDelete:CASCADE"`
	Config        *Configuration    `gorm:"constraint:OnDelete:CASCADE"`
}

//DefaultGuild returns an otherwise-empty guild struct for a given discord ID
func DefaultGuild(discordID, name string) Guild {
	return Guild{
		DiscordID: discordID,
		Name:      name,
	}
}

//ChannelRegistry maps a purpose label ("moderator_queue", "welcome", ...) to
//a discord channel for one guild.
type ChannelRegistry struct {
	ID          uint   `gorm:"primaryKey"`
	GuildID     uint   `gorm:"index;not null"`
	ChannelType string `gorm:"size:50;not null"`
	ChannelID   string `gorm:"size:32;not null"`
}

//RoleRegistry maps a permission tier to a discord role for one guild.
type RoleRegistry struct {
	ID             uint     `gorm:"primaryKey"`
	GuildID        uint     `gorm:"index;not null"`
	RoleTier       RoleTier `gorm:"size:50;not null"`
	RoleID         string   `gorm:"size:32;not null"`
	HierarchyLevel int      `gorm:"default:0"`
}
