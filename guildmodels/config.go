package guildmodels

//Configuration holds per-guild behaviour settings. Exactly one row exists
//per guild. The fields carry no gorm default tags (gorm drops zero-valued
//fields with a default on insert, so false could never be stored);
//DefaultConfiguration supplies the starting values instead.
type Configuration struct {
	ID                  uint   `gorm:"primaryKey"`
	GuildID             uint   `gorm:"uniqueIndex;not null"`
	WelcomeTemplate     string
	DMFallbackEnabled   bool
	AutoBanOnFlag       bool
	AnnouncementEnabled bool
}

//DefaultConfiguration returns the settings a freshly registered guild
//starts with.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		WelcomeTemplate:     "Welcome {mention} to the server!",
		DMFallbackEnabled:   true,
		AutoBanOnFlag:       false,
		AnnouncementEnabled: true,
	}
}
