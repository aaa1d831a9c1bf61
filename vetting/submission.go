package vetting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lsmythe/gatekeeper/db"
	"github.com/lsmythe/gatekeeper/guildmodels"
)

//SubmissionEngine drives a member through a guild's questionnaire: starting
//an application, handing out the next applicable question, recording
//answers, and closing the submission into the review queue.
type SubmissionEngine struct {
	DB *db.DBConnection
}

//NewSubmissionEngine returns a SubmissionEngine backed by the given
//database connection.
func NewSubmissionEngine(conn *db.DBConnection) *SubmissionEngine {
	return &SubmissionEngine{DB: conn}
}

//AnswerValue carries one candidate answer. Exactly one representation
//should be populated for the target question's type.
type AnswerValue struct {
	Text      *string
	Number    *int64
	OptionIDs []uint
}

//RecordedAnswer reports the outcome of RecordAnswer. Rejected is set when
//the answer selected an immediate-reject option and the submission was
//closed as part of the same write.
type RecordedAnswer struct {
	Answer          *guildmodels.Answer
	Rejected        bool
	RejectionReason string
}

//StartSubmission opens a new in_progress submission for a member. It
//conflicts if the member is blacklisted or already has an in_progress or
//pending submission outstanding.
func (e *SubmissionEngine) StartSubmission(memberID uint) (*guildmodels.Submission, error) {
	var created *guildmodels.Submission
	err := e.DB.Transaction(func(tx *db.DBConnection) error {
		member, err := tx.GetMember(memberID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "member", ID: memberID}
		} else if err != nil {
			return err
		}
		if member.Blacklisted {
			return &ConflictError{
				Entity: "member",
				ID:     memberID,
				State:  "blacklisted",
				Reason: "blacklisted members may not apply",
			}
		}
		outstanding, err := tx.OutstandingSubmission(memberID)
		if err != nil {
			return err
		}
		if outstanding != nil {
			return &ConflictError{
				Entity: "submission",
				ID:     outstanding.ID,
				State:  string(outstanding.Status),
				Reason: "an application is already outstanding",
			}
		}
		submission := guildmodels.Submission{
			MemberID: memberID,
			Status:   guildmodels.StatusInProgress,
		}
		if err := tx.CreateSubmission(&submission); err != nil {
			return err
		}
		if err := tx.UpdateMemberFields(memberID, map[string]interface{}{
			"status": guildmodels.StatusInProgress,
		}); err != nil {
			return err
		}
		created = &submission
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.Infof("Member %v started submission %v", memberID, created.ID)
	return created, nil
}

//NextQuestion returns the next applicable unanswered question for a
//submission, or nil when the questionnaire is complete. The traversal is
//lazy and restartable: it is a pure function of the stored answers, so
//repeated calls without intervening writes return the same question.
//Submissions past the in_progress state have nothing further to ask.
func (e *SubmissionEngine) NextQuestion(submissionID uint) (*guildmodels.Question, error) {
	var next *guildmodels.Question
	err := e.DB.Transaction(func(tx *db.DBConnection) error {
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.Status != guildmodels.StatusInProgress {
			return nil
		}
		next, err = nextQuestion(tx, submission)
		return err
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

//RecordAnswer validates value against the question's type and upserts the
//answer. Re-answering an answered question overwrites it; descendants of a
//changed answer that no longer satisfy their condition simply drop out of
//the applicable set (their stale rows stay in storage). If the answer
//selects an immediate-reject option the submission is closed as rejected in
//the same transaction as the answer write.
func (e *SubmissionEngine) RecordAnswer(submissionID, questionID uint, value AnswerValue) (*RecordedAnswer, error) {
	var result RecordedAnswer
	err := e.DB.Transaction(func(tx *db.DBConnection) error {
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.Status != guildmodels.StatusInProgress {
			return &ConflictError{
				Entity: "submission",
				ID:     submissionID,
				State:  string(submission.Status),
				Reason: "submission is no longer accepting answers",
			}
		}
		questions, err := tx.ListActiveQuestions(submission.Member.GuildID)
		if err != nil {
			return err
		}
		var question *guildmodels.Question
		for i := range questions {
			if questions[i].ID == questionID {
				question = &questions[i]
				break
			}
		}
		if question == nil {
			if _, err := tx.GetQuestion(questionID); errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "question", ID: questionID}
			} else if err != nil {
				return err
			}
			return &ValidationError{Entity: "question", ID: questionID, Reason: "question is not part of this guild's active questionnaire"}
		}
		applicable := applicableSet(questions, answersByQuestion(submission.Answers))
		if !applicable[questionID] {
			return &ValidationError{Entity: "question", ID: questionID, Reason: "question is not applicable to this submission"}
		}

		text, numeric, options, err := validateAnswer(question, value)
		if err != nil {
			return err
		}
		answer, err := tx.UpsertAnswer(submissionID, questionID, text, numeric, options)
		if err != nil {
			return err
		}
		result.Answer = answer

		for _, opt := range options {
			if !opt.ImmediateReject {
				continue
			}
			reason := fmt.Sprintf("Automatically rejected: selected %q on question %v", opt.OptionText, question.ID)
			ok, err := tx.UpdateSubmissionStatusIf(submissionID,
				[]guildmodels.Status{guildmodels.StatusInProgress},
				map[string]interface{}{
					"status":           guildmodels.StatusRejected,
					"rejection_reason": reason,
				})
			if err != nil {
				return err
			}
			if !ok {
				return &ConflictError{Entity: "submission", ID: submissionID, Reason: "lost transition race"}
			}
			if err := tx.UpdateMemberFields(submission.MemberID, map[string]interface{}{
				"status": guildmodels.StatusRejected,
			}); err != nil {
				return err
			}
			result.Rejected = true
			result.RejectionReason = reason
			break
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Rejected {
		logrus.Infof("Submission %v auto-rejected while recording answer to question %v", submissionID, questionID)
	}
	return &result, nil
}

//Submit closes an in_progress submission into the pending review queue. It
//conflicts if any applicable question remains unanswered; NextQuestion
//returning nil and Submit succeeding are the same check.
func (e *SubmissionEngine) Submit(submissionID uint) (*guildmodels.Submission, error) {
	err := e.DB.Transaction(func(tx *db.DBConnection) error {
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.Status != guildmodels.StatusInProgress {
			return &ConflictError{
				Entity: "submission",
				ID:     submissionID,
				State:  string(submission.Status),
				Reason: "only in_progress submissions can be submitted",
			}
		}
		next, err := nextQuestion(tx, submission)
		if err != nil {
			return err
		}
		if next != nil {
			return &ConflictError{
				Entity: "submission",
				ID:     submissionID,
				State:  string(submission.Status),
				Reason: fmt.Sprintf("question %v is still unanswered", next.ID),
			}
		}
		now := time.Now().UTC()
		ok, err := tx.UpdateSubmissionStatusIf(submissionID,
			[]guildmodels.Status{guildmodels.StatusInProgress},
			map[string]interface{}{
				"status":       guildmodels.StatusPending,
				"submitted_at": now,
			})
		if err != nil {
			return err
		}
		if !ok {
			return &ConflictError{Entity: "submission", ID: submissionID, Reason: "lost transition race"}
		}
		return tx.UpdateMemberFields(submission.MemberID, map[string]interface{}{
			"status": guildmodels.StatusPending,
		})
	})
	if err != nil {
		return nil, err
	}
	logrus.Infof("Submission %v moved to pending review", submissionID)
	return e.DB.GetSubmission(submissionID)
}

//GetSubmission exposes a submission (with member and answers) to the
//presentation layer.
func (e *SubmissionEngine) GetSubmission(submissionID uint) (*guildmodels.Submission, error) {
	return loadSubmission(e.DB, submissionID)
}

func loadSubmission(tx *db.DBConnection, submissionID uint) (*guildmodels.Submission, error) {
	submission, err := tx.GetSubmission(submissionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "submission", ID: submissionID}
	} else if err != nil {
		return nil, err
	}
	return submission, nil
}

//nextQuestion returns the lowest-(order, id) active question that is
//applicable and has no answer recorded, or nil when none remain. Questions
//arrive pre-sorted from the store.
func nextQuestion(tx *db.DBConnection, submission *guildmodels.Submission) (*guildmodels.Question, error) {
	questions, err := tx.ListActiveQuestions(submission.Member.GuildID)
	if err != nil {
		return nil, err
	}
	answers := answersByQuestion(submission.Answers)
	applicable := applicableSet(questions, answers)
	for i := range questions {
		q := &questions[i]
		if !applicable[q.ID] {
			continue
		}
		if _, answered := answers[q.ID]; !answered {
			return q, nil
		}
	}
	return nil, nil
}

func answersByQuestion(answers []guildmodels.Answer) map[uint]*guildmodels.Answer {
	byQuestion := make(map[uint]*guildmodels.Answer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}
	return byQuestion
}

//applicableSet computes which of a guild's active questions currently apply
//to a submission. An unconditional question always applies; a conditional
//one applies only while its parent applies, is answered, and that answer
//selected the required option. Stale answers to questions that have fallen
//out of the applicable set never satisfy a condition, so overwriting a
//parent answer closes (or re-opens) whole branches at once.
func applicableSet(questions []guildmodels.Question, answers map[uint]*guildmodels.Answer) map[uint]bool {
	byID := make(map[uint]*guildmodels.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	memo := make(map[uint]bool, len(questions))
	visiting := map[uint]bool{}

	var applies func(id uint) bool
	applies = func(id uint) bool {
		if known, ok := memo[id]; ok {
			return known
		}
		//A cycle should be impossible (the builder rejects them at write
		//time) but a corrupt chain must not hang the traversal.
		if visiting[id] {
			memo[id] = false
			return false
		}
		visiting[id] = true
		defer delete(visiting, id)

		q, ok := byID[id]
		res := ok
		if res && q.Conditional() {
			parentAnswer := answers[*q.ParentQuestionID]
			res = applies(*q.ParentQuestionID) &&
				parentAnswer != nil &&
				parentAnswer.Selected(*q.ParentOptionID)
		}
		memo[id] = res
		return res
	}
	for i := range questions {
		applies(questions[i].ID)
	}
	return memo
}

//validateAnswer checks value against the question's type and resolves
//selected option ids to option rows.
func validateAnswer(question *guildmodels.Question, value AnswerValue) (string, *int64, []guildmodels.QuestionOption, error) {
	switch question.QuestionType {
	case guildmodels.QuestionSingleChoice, guildmodels.QuestionMultiChoice:
		if len(value.OptionIDs) == 0 {
			return "", nil, nil, &ValidationError{Entity: "question", ID: question.ID, Reason: "a choice question needs at least one selected option"}
		}
		if question.QuestionType == guildmodels.QuestionSingleChoice && len(value.OptionIDs) != 1 {
			return "", nil, nil, &ValidationError{Entity: "question", ID: question.ID, Reason: "a single choice question takes exactly one option"}
		}
		seen := make(map[uint]bool, len(value.OptionIDs))
		options := make([]guildmodels.QuestionOption, 0, len(value.OptionIDs))
		for _, optionID := range value.OptionIDs {
			if seen[optionID] {
				continue
			}
			seen[optionID] = true
			opt := question.Option(optionID)
			if opt == nil {
				return "", nil, nil, &ValidationError{Entity: "option", ID: optionID, Reason: "option does not belong to this question"}
			}
			options = append(options, *opt)
		}
		return "", nil, options, nil
	case guildmodels.QuestionNumeric:
		if value.Number == nil {
			return "", nil, nil, &ValidationError{Entity: "question", ID: question.ID, Reason: "a numeric question takes an integer answer"}
		}
		return "", value.Number, nil, nil
	case guildmodels.QuestionShortText, guildmodels.QuestionLongText:
		if value.Text == nil {
			return "", nil, nil, &ValidationError{Entity: "question", ID: question.ID, Reason: "a text question takes a text answer"}
		}
		if question.Required && strings.TrimSpace(*value.Text) == "" {
			return "", nil, nil, &ValidationError{Entity: "question", ID: question.ID, Reason: "a required text question needs a non-empty answer"}
		}
		return *value.Text, nil, nil, nil
	default:
		return "", nil, nil, &ValidationError{Entity: "question", ID: question.ID, Reason: "unknown question type " + string(question.QuestionType)}
	}
}
