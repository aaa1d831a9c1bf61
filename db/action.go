package db

import (
	"github.com/sirupsen/logrus"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

//CreateModeratorAction appends an audit record. Action rows are insert-only;
//nothing in this package updates or deletes them.
func (db *DBConnection) CreateModeratorAction(action *guildmodels.ModeratorAction) error {
	err := db.orm.Create(action).Error
	if err != nil {
		logrus.Warnf("Failed to insert moderator action for submission %v due to error %v", action.SubmissionID, err)
		return err
	}
	return nil
}

//ActionsForSubmission returns the audit trail for a submission in
//chronological order.
func (db *DBConnection) ActionsForSubmission(submissionID uint) ([]guildmodels.ModeratorAction, error) {
	var actions []guildmodels.ModeratorAction
	err := db.orm.
		Where("submission_id = ?", submissionID).
		Order("timestamp, id").
		Find(&actions).Error
	if err != nil {
		logrus.Warnf("Failed to list actions for submission %v due to error %v", submissionID, err)
		return nil, err
	}
	return actions, nil
}
