package guildmodels

import "time"

//Submission is one application attempt by a member. A member may accumulate
//submissions over time but holds at most one in the in_progress or pending
//state at once.
type Submission struct {
	ID              uint   `gorm:"primaryKey"`
	MemberID        uint   `gorm:"index;not null"`
	Status          Status `gorm:"size:50;default:in_progress"`
	SubmittedAt     *time.Time
	ReviewedAt      *time.Time
	ReviewerID      string `gorm:"size:32"`
	RejectionReason string
	Flagged         bool `gorm:"default:false"`
	FlagReason      string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Member  *Member           `gorm:"constraint:OnDelete:CASCADE"`
	Answers []Answer          `gorm:"constraint:OnDelete:CASCADE"`
	Actions []ModeratorAction `gorm:"constraint:OnDelete:CASCADE"`
}

//Answer holds one member response to one question within one submission.
//Exactly one representation is populated for the question's type: free text,
//a numeric value, or a set of selected options. One answer exists per
//(submission, question); re-answering overwrites in place.
type Answer struct {
	ID            uint `gorm:"primaryKey"`
	SubmissionID  uint `gorm:"not null;uniqueIndex:idx_answers_submission_question"`
	QuestionID    uint `gorm:"not null;uniqueIndex:idx_answers_submission_question"`
	TextAnswer    string
	NumericAnswer *int64

	SelectedOptions []QuestionOption `gorm:"many2many:answer_options;constraint:OnDelete:CASCADE"`
}

//Selected returns true if the answer's selected options include the given
//option id.
func (a *Answer) Selected(optionID uint) bool {
	for _, opt := range a.SelectedOptions {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

//ModeratorAction is an immutable audit record of one moderator decision on a
//submission. Rows are only ever inserted, never updated.
type ModeratorAction struct {
	ID           uint       `gorm:"primaryKey"`
	SubmissionID *uint      `gorm:"index"`
	TargetUserID string     `gorm:"size:32;not null"`
	ModeratorID  string     `gorm:"size:32;not null"`
	ActionType   ActionType `gorm:"size:50;not null"`
	Reason       string
	Banned       bool `gorm:"default:false"`
	Timestamp    time.Time
}
