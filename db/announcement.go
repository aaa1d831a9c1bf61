package db

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

//CreateAnnouncement schedules a new announcement.
func (db *DBConnection) CreateAnnouncement(announcement *guildmodels.Announcement) error {
	err := db.orm.Create(announcement).Error
	if err != nil {
		logrus.Warnf("Failed to insert announcement for guild %v due to error %v", announcement.GuildID, err)
		return err
	}
	return nil
}

//DueAnnouncements returns announcements whose scheduled time has passed and
//which have not yet been posted.
func (db *DBConnection) DueAnnouncements(now time.Time) ([]guildmodels.Announcement, error) {
	var announcements []guildmodels.Announcement
	err := db.orm.
		Where("posted_at IS NULL AND scheduled_for IS NOT NULL AND scheduled_for <= ?", now).
		Order("scheduled_for").
		Find(&announcements).Error
	if err != nil {
		logrus.Warnf("Failed to list due announcements due to error %v", err)
		return nil, err
	}
	return announcements, nil
}

//MarkAnnouncementPosted stamps an announcement as delivered. The conditional
//on posted_at keeps two announcer ticks from double-posting.
func (db *DBConnection) MarkAnnouncementPosted(id uint, at time.Time) (bool, error) {
	res := db.orm.Model(&guildmodels.Announcement{}).
		Where("id = ? AND posted_at IS NULL", id).
		Update("posted_at", at)
	if res.Error != nil {
		logrus.Warnf("Failed to mark announcement %v posted due to error %v", id, res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
