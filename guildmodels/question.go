package guildmodels

//Question is one ordered questionnaire item for a guild. A question may be
//conditional: when ParentQuestionID and ParentOptionID are set it is only
//presented if the parent question's answer selected that option. Parent
//references are plain id fields; the builder validates the chain stays
//acyclic when they are written.
type Question struct {
	ID           uint         `gorm:"primaryKey"`
	GuildID      uint         `gorm:"index;not null"`
	QuestionText string       `gorm:"not null"`
	QuestionType QuestionType `gorm:"size:50;not null"`
	Order        int          `gorm:"not null"`
	//No gorm default tags on the flag fields: gorm drops zero-valued fields
	//carrying a default on insert, which would make false unstorable. The
	//builder sets these explicitly.
	Required bool
	Active   bool

	ParentQuestionID *uint `gorm:"index"`
	ParentOptionID   *uint

	Options []QuestionOption `gorm:"constraint:OnDelete:CASCADE"`
}

//Conditional returns true if the question is only shown when a specific
//option was selected on its parent.
func (q *Question) Conditional() bool {
	return q.ParentQuestionID != nil && q.ParentOptionID != nil
}

//Option returns the option with the given id, or nil if the question has no
//such option.
func (q *Question) Option(id uint) *QuestionOption {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

//QuestionOption is one selectable choice on a choice-type question.
//Selecting an option with ImmediateReject set fails the application outright.
type QuestionOption struct {
	ID              uint   `gorm:"primaryKey"`
	QuestionID      uint   `gorm:"index;not null"`
	OptionText      string `gorm:"size:255;not null"`
	Order           int    `gorm:"not null"`
	ImmediateReject bool   `gorm:"default:false"`
}
