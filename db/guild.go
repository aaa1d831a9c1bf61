package db

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

//GetOrCreateGuild fetches the guild with a given discord ID from the
//database, creating a new one (with its default configuration row) if it
//does not exist.
func (db *DBConnection) GetOrCreateGuild(discordID, name string) (*guildmodels.Guild, error) {
	var guildObj guildmodels.Guild
	err := db.orm.Where("discord_id = ?", discordID).First(&guildObj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.Infof("Inserting new guild id %v into database.", discordID)
		guildObj = guildmodels.DefaultGuild(discordID, name)
		guildObj.Config = guildmodels.DefaultConfiguration()
		if err := db.orm.Create(&guildObj).Error; err != nil {
			logrus.Errorf("Failed to insert new guild with id %v because: %v.", discordID, err)
			return nil, fmt.Errorf("failed to insert new guild with id %v because: %v", discordID, err)
		}
		return &guildObj, nil
	} else if err != nil {
		logrus.Errorf("Failed to query database for guild %v because: %v.", discordID, err)
		return nil, fmt.Errorf("failed to query database for guild %v because: %v", discordID, err)
	}
	return &guildObj, nil
}

//GetGuild fetches a guild row by its internal id.
func (db *DBConnection) GetGuild(id uint) (*guildmodels.Guild, error) {
	var guildObj guildmodels.Guild
	err := db.orm.First(&guildObj, id).Error
	if err != nil {
		return nil, err
	}
	return &guildObj, nil
}

//DeleteGuild removes a guild and, through foreign key cascades, everything
//it owns.
func (db *DBConnection) DeleteGuild(id uint) error {
	err := db.orm.Delete(&guildmodels.Guild{}, id).Error
	if err != nil {
		logrus.Warnf("Failed to delete guild %v due to error %v", id, err)
		return err
	}
	return nil
}

//GetConfiguration fetches the configuration row for a guild.
func (db *DBConnection) GetConfiguration(guildID uint) (*guildmodels.Configuration, error) {
	var conf guildmodels.Configuration
	err := db.orm.Where("guild_id = ?", guildID).First(&conf).Error
	if err != nil {
		return nil, err
	}
	return &conf, nil
}

//SaveConfiguration persists changes to a guild configuration.
func (db *DBConnection) SaveConfiguration(conf *guildmodels.Configuration) error {
	err := db.orm.Save(conf).Error
	if err != nil {
		logrus.Warnf("Failed to save configuration for guild %v due to error %v", conf.GuildID, err)
		return err
	}
	return nil
}

//RegisterChannel records (or replaces) the channel used for a given purpose
//in a guild.
func (db *DBConnection) RegisterChannel(guildID uint, channelType, channelID string) error {
	err := db.orm.Where("guild_id = ? AND channel_type = ?", guildID, channelType).
		Delete(&guildmodels.ChannelRegistry{}).Error
	if err != nil {
		logrus.Warnf("Failed to clear existing %v channel for guild %v due to error %v", channelType, guildID, err)
		return err
	}
	entry := guildmodels.ChannelRegistry{
		GuildID:     guildID,
		ChannelType: channelType,
		ChannelID:   channelID,
	}
	return db.orm.Create(&entry).Error
}

//LookupChannel returns the discord channel ID registered for a purpose in a
//guild, or "" if none is registered.
func (db *DBConnection) LookupChannel(guildID uint, channelType string) (string, error) {
	var entry guildmodels.ChannelRegistry
	err := db.orm.Where("guild_id = ? AND channel_type = ?", guildID, channelType).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	} else if err != nil {
		logrus.Warnf("Failed to look up %v channel for guild %v due to error %v", channelType, guildID, err)
		return "", err
	}
	return entry.ChannelID, nil
}

//RegisterRole records a role tier mapping for a guild.
func (db *DBConnection) RegisterRole(guildID uint, tier guildmodels.RoleTier, roleID string, level int) error {
	entry := guildmodels.RoleRegistry{
		GuildID:        guildID,
		RoleTier:       tier,
		RoleID:         roleID,
		HierarchyLevel: level,
	}
	err := db.orm.Create(&entry).Error
	if err != nil {
		logrus.Warnf("Failed to register %v role for guild %v due to error %v", tier, guildID, err)
		return err
	}
	return nil
}

//RolesForTier returns the discord role IDs registered at a given tier for a
//guild.
func (db *DBConnection) RolesForTier(guildID uint, tier guildmodels.RoleTier) ([]string, error) {
	var entries []guildmodels.RoleRegistry
	err := db.orm.Where("guild_id = ? AND role_tier = ?", guildID, tier).Find(&entries).Error
	if err != nil {
		logrus.Warnf("Failed to look up %v roles for guild %v due to error %v", tier, guildID, err)
		return nil, err
	}
	roleIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		roleIDs = append(roleIDs, entry.RoleID)
	}
	return roleIDs, nil
}
