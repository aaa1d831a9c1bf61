package db

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

//CreateSubmission inserts a new submission row.
func (db *DBConnection) CreateSubmission(submission *guildmodels.Submission) error {
	err := db.orm.Create(submission).Error
	if err != nil {
		logrus.Warnf("Failed to insert submission for member %v due to error %v", submission.MemberID, err)
		return err
	}
	return nil
}

//GetSubmission fetches a submission with its member and its answers
//(including selected options) preloaded.
func (db *DBConnection) GetSubmission(id uint) (*guildmodels.Submission, error) {
	var submission guildmodels.Submission
	err := db.orm.
		Preload("Member").
		Preload("Answers").
		Preload("Answers.SelectedOptions").
		First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

//OutstandingSubmission returns the member's submission currently in the
//in_progress or pending state, or nil if there is none. At most one such
//submission exists per member.
func (db *DBConnection) OutstandingSubmission(memberID uint) (*guildmodels.Submission, error) {
	var submission guildmodels.Submission
	err := db.orm.
		Where("member_id = ? AND status IN ?", memberID,
			[]guildmodels.Status{guildmodels.StatusInProgress, guildmodels.StatusPending}).
		Order("id DESC").
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		logrus.Warnf("Failed to query outstanding submission for member %v due to error %v", memberID, err)
		return nil, err
	}
	return &submission, nil
}

//PendingSubmissions returns all pending submissions for a guild in
//submission order, members preloaded, for the moderator queue.
func (db *DBConnection) PendingSubmissions(guildID uint) ([]guildmodels.Submission, error) {
	var submissions []guildmodels.Submission
	err := db.orm.
		Preload("Member").
		Joins("JOIN members ON members.id = submissions.member_id").
		Where("members.guild_id = ? AND submissions.status = ?", guildID, guildmodels.StatusPending).
		Order("submissions.submitted_at").
		Find(&submissions).Error
	if err != nil {
		logrus.Warnf("Failed to list pending submissions for guild %v due to error %v", guildID, err)
		return nil, err
	}
	return submissions, nil
}

//UpdateSubmissionStatusIf applies fields to a submission only if its current
//status is one of from, as a single conditional UPDATE. It reports whether
//the row was actually updated; a false return with nil error means another
//writer got there first (or the submission was already past from), which
//callers surface as a conflict. This is the only way submission status
//changes.
func (db *DBConnection) UpdateSubmissionStatusIf(id uint, from []guildmodels.Status, fields map[string]interface{}) (bool, error) {
	fields["updated_at"] = time.Now().UTC()
	res := db.orm.Model(&guildmodels.Submission{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	if res.Error != nil {
		logrus.Warnf("Failed to update submission %v due to error %v", id, res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

//UpdateSubmissionFields applies a partial update to a submission without a
//status precondition. Used for flag bookkeeping, never for status changes.
func (db *DBConnection) UpdateSubmissionFields(id uint, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().UTC()
	err := db.orm.Model(&guildmodels.Submission{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		logrus.Warnf("Failed to update submission %v due to error %v", id, err)
		return err
	}
	return nil
}

//UpsertAnswer records an answer for (submission, question), overwriting any
//existing answer row and replacing its selected options in place. The stale
//row keeps its identity so historical submissions stay readable.
func (db *DBConnection) UpsertAnswer(submissionID, questionID uint, text string, numeric *int64, options []guildmodels.QuestionOption) (*guildmodels.Answer, error) {
	var answer guildmodels.Answer
	err := db.orm.
		Where("submission_id = ? AND question_id = ?", submissionID, questionID).
		First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		answer = guildmodels.Answer{
			SubmissionID:  submissionID,
			QuestionID:    questionID,
			TextAnswer:    text,
			NumericAnswer: numeric,
		}
		if err := db.orm.Create(&answer).Error; err != nil {
			logrus.Warnf("Failed to insert answer for submission %v question %v due to error %v", submissionID, questionID, err)
			return nil, err
		}
	} else if err != nil {
		logrus.Warnf("Failed to query answer for submission %v question %v due to error %v", submissionID, questionID, err)
		return nil, err
	} else {
		answer.TextAnswer = text
		answer.NumericAnswer = numeric
		if err := db.orm.Save(&answer).Error; err != nil {
			logrus.Warnf("Failed to overwrite answer %v due to error %v", answer.ID, err)
			return nil, err
		}
	}
	if err := db.orm.Model(&answer).Association("SelectedOptions").Replace(options); err != nil {
		logrus.Warnf("Failed to replace selected options on answer %v due to error %v", answer.ID, err)
		return nil, err
	}
	answer.SelectedOptions = options
	return &answer, nil
}

//AnswersForSubmission returns all answer rows recorded on a submission,
//selected options included. Stale answers to questions that are no longer
//applicable are returned too; applicability is the engine's concern.
func (db *DBConnection) AnswersForSubmission(submissionID uint) ([]guildmodels.Answer, error) {
	var answers []guildmodels.Answer
	err := db.orm.
		Preload("SelectedOptions").
		Where("submission_id = ?", submissionID).
		Find(&answers).Error
	if err != nil {
		logrus.Warnf("Failed to list answers for submission %v due to error %v", submissionID, err)
		return nil, err
	}
	return answers, nil
}
