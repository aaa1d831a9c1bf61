package db

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

//GetOrCreateMember fetches the member row for a user in a guild, creating it
//with in_progress status if it does not exist. The unique index on
//(guild_id, user_id) keeps this to one row per user even under races.
func (db *DBConnection) GetOrCreateMember(guildID uint, userID, username string) (*guildmodels.Member, error) {
	var member guildmodels.Member
	err := db.orm.Where("guild_id = ? AND user_id = ?", guildID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		member = guildmodels.Member{
			GuildID:  guildID,
			UserID:   userID,
			Username: username,
			Status:   guildmodels.StatusInProgress,
		}
		if err := db.orm.Create(&member).Error; err != nil {
			logrus.Warnf("Failed to insert member %v:%v due to error %v", guildID, userID, err)
			return nil, err
		}
		return &member, nil
	} else if err != nil {
		logrus.Warnf("Failed to query member %v:%v due to error %v", guildID, userID, err)
		return nil, err
	}
	return &member, nil
}

//GetMember fetches a member row by its internal id.
func (db *DBConnection) GetMember(id uint) (*guildmodels.Member, error) {
	var member guildmodels.Member
	err := db.orm.First(&member, id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

//FindMember looks a member up by guild and discord user id. Returns
//gorm.ErrRecordNotFound if the user has no row in the guild.
func (db *DBConnection) FindMember(guildID uint, userID string) (*guildmodels.Member, error) {
	var member guildmodels.Member
	err := db.orm.Where("guild_id = ? AND user_id = ?", guildID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

//SaveMember persists changes to a member row.
func (db *DBConnection) SaveMember(member *guildmodels.Member) error {
	err := db.orm.Save(member).Error
	if err != nil {
		logrus.Warnf("Failed to save member %v due to error %v", member.ID, err)
		return err
	}
	return nil
}

//UpdateMemberFields applies a partial update to a member row.
func (db *DBConnection) UpdateMemberFields(id uint, fields map[string]interface{}) error {
	err := db.orm.Model(&guildmodels.Member{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		logrus.Warnf("Failed to update member %v due to error %v", id, err)
		return err
	}
	return nil
}
