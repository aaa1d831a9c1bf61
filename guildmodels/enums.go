package guildmodels

//Status tracks a member or submission through the vetting lifecycle.
//Stored as its string value so rows stay readable in the database.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusFlagged    Status = "flagged"
	StatusInProgress Status = "in_progress"
)

//IsTerminal returns true if no further answers or transitions are accepted
//for a submission in this status.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

//Valid returns true iff s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusFlagged, StatusInProgress:
		return true
	default:
		return false
	}
}

//QuestionType determines which answer representation a question accepts.
type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionMultiChoice  QuestionType = "multi_choice"
	QuestionShortText    QuestionType = "short_text"
	QuestionLongText     QuestionType = "long_text"
	QuestionNumeric      QuestionType = "numeric"
)

//IsChoice returns true for question types answered by selecting options.
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultiChoice
}

//Valid returns true iff t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingleChoice, QuestionMultiChoice, QuestionShortText, QuestionLongText, QuestionNumeric:
		return true
	default:
		return false
	}
}

//ActionType is the kind of decision a moderator recorded on a submission.
type ActionType string

const (
	ActionApprove ActionType = "approve"
	ActionReject  ActionType = "reject"
	ActionBan     ActionType = "ban"
	ActionUnban   ActionType = "unban"
)

//Valid returns true iff a is one of the known action types.
func (a ActionType) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionBan, ActionUnban:
		return true
	default:
		return false
	}
}

//RoleTier is a permission level registered against a discord role.
type RoleTier string

const (
	TierAdmin     RoleTier = "admin"
	TierModerator RoleTier = "moderator"
	TierMember    RoleTier = "member"
	TierApplicant RoleTier = "applicant"
)
