package db

import (
	"github.com/sirupsen/logrus"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

//CreateGame registers a new game community within a guild.
func (db *DBConnection) CreateGame(game *guildmodels.Game) error {
	err := db.orm.Create(game).Error
	if err != nil {
		logrus.Warnf("Failed to insert game for guild %v due to error %v", game.GuildID, err)
		return err
	}
	return nil
}

//ListGames returns the enabled games for a guild by name.
func (db *DBConnection) ListGames(guildID uint) ([]guildmodels.Game, error) {
	var games []guildmodels.Game
	err := db.orm.
		Where("guild_id = ? AND enabled = ?", guildID, true).
		Order("name").
		Find(&games).Error
	if err != nil {
		logrus.Warnf("Failed to list games for guild %v due to error %v", guildID, err)
		return nil, err
	}
	return games, nil
}

//GetGame fetches a game row by its internal id.
func (db *DBConnection) GetGame(id uint) (*guildmodels.Game, error) {
	var game guildmodels.Game
	err := db.orm.First(&game, id).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

//CreateCharacter records a member's character profile for a game.
func (db *DBConnection) CreateCharacter(character *guildmodels.Character) error {
	err := db.orm.Create(character).Error
	if err != nil {
		logrus.Warnf("Failed to insert character for member %v due to error %v", character.MemberID, err)
		return err
	}
	return nil
}

//CharactersForMember returns all character profiles a member has registered.
func (db *DBConnection) CharactersForMember(memberID uint) ([]guildmodels.Character, error) {
	var characters []guildmodels.Character
	err := db.orm.
		Where("member_id = ?", memberID).
		Order("id").
		Find(&characters).Error
	if err != nil {
		logrus.Warnf("Failed to list characters for member %v due to error %v", memberID, err)
		return nil, err
	}
	return characters, nil
}
