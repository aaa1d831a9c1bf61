package vetting

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lsmythe/gatekeeper/db"
	"github.com/lsmythe/gatekeeper/guildmodels"
)

//nonTerminal are the submission states a moderator transition may start
//from. approved and rejected are terminal; nothing moves out of them.
var nonTerminal = []guildmodels.Status{
	guildmodels.StatusInProgress,
	guildmodels.StatusPending,
	guildmodels.StatusFlagged,
}

//ReviewEngine records moderator decisions on submissions and applies their
//side effects to member state. Every decision lands in the moderator_actions
//audit trail; transition legality lives here and nowhere else.
type ReviewEngine struct {
	DB *db.DBConnection
}

//NewReviewEngine returns a ReviewEngine backed by the given database
//connection.
func NewReviewEngine(conn *db.DBConnection) *ReviewEngine {
	return &ReviewEngine{DB: conn}
}

//RecordAction appends an immutable moderator action and applies its side
//effects in one transaction. Terminal submissions conflict (the check and
//the transition are a single conditional write, so a race between two
//moderators resolves to exactly one winner). The ban flag upgrades a
//reject to also blacklist the member; other action types ignore it. Unban
//is the exception to the terminal guard: it only clears the member's
//blacklist and is legal whatever state the submission reached.
func (e *ReviewEngine) RecordAction(submissionID uint, moderatorID string, actionType guildmodels.ActionType, reason string, ban bool) (*guildmodels.ModeratorAction, error) {
	if !actionType.Valid() {
		return nil, &ValidationError{Entity: "action", Reason: "unknown action type " + string(actionType)}
	}
	var recorded *guildmodels.ModeratorAction
	err := e.DB.Transaction(func(tx *db.DBConnection) error {
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		//Only reject can carry an optional ban; approve and unban never do,
		//whatever the caller passed. The audit row records what actually
		//happened.
		banned := actionType == guildmodels.ActionBan ||
			(actionType == guildmodels.ActionReject && ban)

		switch actionType {
		case guildmodels.ActionApprove:
			ok, err := tx.UpdateSubmissionStatusIf(submissionID, nonTerminal, map[string]interface{}{
				"status":      guildmodels.StatusApproved,
				"reviewed_at": now,
				"reviewer_id": moderatorID,
			})
			if err != nil {
				return err
			}
			if !ok {
				return terminalConflict(submission)
			}
			if err := tx.UpdateMemberFields(submission.MemberID, map[string]interface{}{
				"status":      guildmodels.StatusApproved,
				"approved_at": now,
			}); err != nil {
				return err
			}
		case guildmodels.ActionReject:
			ok, err := tx.UpdateSubmissionStatusIf(submissionID, nonTerminal, map[string]interface{}{
				"status":           guildmodels.StatusRejected,
				"reviewed_at":      now,
				"reviewer_id":      moderatorID,
				"rejection_reason": reason,
			})
			if err != nil {
				return err
			}
			if !ok {
				return terminalConflict(submission)
			}
			memberFields := map[string]interface{}{
				"status": guildmodels.StatusRejected,
			}
			if banned {
				memberFields["blacklisted"] = true
				memberFields["blacklist_reason"] = blacklistReason(reason)
			}
			if err := tx.UpdateMemberFields(submission.MemberID, memberFields); err != nil {
				return err
			}
		case guildmodels.ActionBan:
			ok, err := tx.UpdateSubmissionStatusIf(submissionID, nonTerminal, map[string]interface{}{
				"status":           guildmodels.StatusRejected,
				"reviewed_at":      now,
				"reviewer_id":      moderatorID,
				"rejection_reason": reason,
			})
			if err != nil {
				return err
			}
			if !ok {
				return terminalConflict(submission)
			}
			if err := tx.UpdateMemberFields(submission.MemberID, map[string]interface{}{
				"status":           guildmodels.StatusRejected,
				"blacklisted":      true,
				"blacklist_reason": blacklistReason(reason),
			}); err != nil {
				return err
			}
		case guildmodels.ActionUnban:
			if err := tx.UpdateMemberFields(submission.MemberID, map[string]interface{}{
				"blacklisted":      false,
				"blacklist_reason": "",
			}); err != nil {
				return err
			}
		}

		action := guildmodels.ModeratorAction{
			SubmissionID: &submissionID,
			TargetUserID: submission.Member.UserID,
			ModeratorID:  moderatorID,
			ActionType:   actionType,
			Reason:       reason,
			Banned:       banned,
			Timestamp:    now,
		}
		if err := tx.CreateModeratorAction(&action); err != nil {
			return err
		}
		recorded = &action
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.Infof("Moderator %v recorded %v on submission %v", moderatorID, actionType, submissionID)
	return recorded, nil
}

//Flag marks a submission for closer review without changing its status,
//unless the guild is configured to auto-ban on flag, in which case the ban
//side effects (and a ban audit record) are applied in the same transaction.
func (e *ReviewEngine) Flag(submissionID uint, moderatorID, reason string) error {
	err := e.DB.Transaction(func(tx *db.DBConnection) error {
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		ok, err := tx.UpdateSubmissionStatusIf(submissionID, nonTerminal, map[string]interface{}{
			"flagged":     true,
			"flag_reason": reason,
		})
		if err != nil {
			return err
		}
		if !ok {
			return terminalConflict(submission)
		}

		conf, err := tx.GetConfiguration(submission.Member.GuildID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if conf == nil || !conf.AutoBanOnFlag {
			return nil
		}

		now := time.Now().UTC()
		ok, err = tx.UpdateSubmissionStatusIf(submissionID, nonTerminal, map[string]interface{}{
			"status":           guildmodels.StatusRejected,
			"reviewed_at":      now,
			"reviewer_id":      moderatorID,
			"rejection_reason": reason,
		})
		if err != nil {
			return err
		}
		if !ok {
			return terminalConflict(submission)
		}
		if err := tx.UpdateMemberFields(submission.MemberID, map[string]interface{}{
			"status":           guildmodels.StatusRejected,
			"blacklisted":      true,
			"blacklist_reason": blacklistReason(reason),
		}); err != nil {
			return err
		}
		action := guildmodels.ModeratorAction{
			SubmissionID: &submissionID,
			TargetUserID: submission.Member.UserID,
			ModeratorID:  moderatorID,
			ActionType:   guildmodels.ActionBan,
			Reason:       reason,
			Banned:       true,
			Timestamp:    now,
		}
		return tx.CreateModeratorAction(&action)
	})
	if err != nil {
		return err
	}
	logrus.Infof("Submission %v flagged by %v", submissionID, moderatorID)
	return nil
}

//ListActions returns the audit trail for a submission in chronological
//order.
func (e *ReviewEngine) ListActions(submissionID uint) ([]guildmodels.ModeratorAction, error) {
	if _, err := loadSubmission(e.DB, submissionID); err != nil {
		return nil, err
	}
	return e.DB.ActionsForSubmission(submissionID)
}

//terminalConflict builds the conflict returned when a conditional
//transition touched no rows: either the submission was already terminal or
//a concurrent action won the race.
func terminalConflict(submission *guildmodels.Submission) error {
	return &ConflictError{
		Entity: "submission",
		ID:     submission.ID,
		State:  string(submission.Status),
		Reason: "submission is already resolved",
	}
}

func blacklistReason(reason string) string {
	if reason == "" {
		return "Application rejected with ban"
	}
	return reason
}
