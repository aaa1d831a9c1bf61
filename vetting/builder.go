package vetting

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lsmythe/gatekeeper/db"
	"github.com/lsmythe/gatekeeper/guildmodels"
)

//Builder manages a guild's questionnaire: ordered questions, their options,
//and the conditional parent links between them.
type Builder struct {
	DB *db.DBConnection
}

//NewBuilder returns a Builder backed by the given database connection.
func NewBuilder(conn *db.DBConnection) *Builder {
	return &Builder{DB: conn}
}

//OptionParams describes one option to attach to a new choice question.
type OptionParams struct {
	Text            string
	ImmediateReject bool
}

//QuestionParams describes a question to be added to a guild questionnaire.
//Order <= 0 appends after the guild's current last question. Parent ids are
//either both set (a conditional question) or both nil.
type QuestionParams struct {
	Text             string
	Type             guildmodels.QuestionType
	Order            int
	Required         bool
	ParentQuestionID *uint
	ParentOptionID   *uint
	Options          []OptionParams
}

//AddQuestion appends a new active question to a guild's questionnaire. For
//conditional questions the parent must belong to the same guild, be a
//choice question, and own the referenced option; the parent chain is walked
//to reject cycles before anything is written.
func (b *Builder) AddQuestion(guildID uint, params QuestionParams) (*guildmodels.Question, error) {
	if strings.TrimSpace(params.Text) == "" {
		return nil, &ValidationError{Entity: "question", Reason: "question text must not be empty"}
	}
	if !params.Type.Valid() {
		return nil, &ValidationError{Entity: "question", Reason: "unknown question type " + string(params.Type)}
	}
	if (params.ParentQuestionID == nil) != (params.ParentOptionID == nil) {
		return nil, &ValidationError{Entity: "question", Reason: "conditional questions need both a parent question and a parent option"}
	}
	if !params.Type.IsChoice() && len(params.Options) > 0 {
		return nil, &ValidationError{Entity: "question", Reason: "only choice questions may carry options"}
	}

	var created *guildmodels.Question
	err := b.DB.Transaction(func(tx *db.DBConnection) error {
		if _, err := tx.GetGuild(guildID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "guild", ID: guildID}
			}
			return err
		}
		if params.ParentQuestionID != nil {
			if err := validateParent(tx, guildID, 0, *params.ParentQuestionID, *params.ParentOptionID); err != nil {
				return err
			}
		}
		order := params.Order
		if order <= 0 {
			max, err := tx.MaxQuestionOrder(guildID)
			if err != nil {
				return err
			}
			order = max + 1
		}
		question := guildmodels.Question{
			GuildID:          guildID,
			QuestionText:     params.Text,
			QuestionType:     params.Type,
			Order:            order,
			Required:         params.Required,
			Active:           true,
			ParentQuestionID: params.ParentQuestionID,
			ParentOptionID:   params.ParentOptionID,
		}
		for i, opt := range params.Options {
			question.Options = append(question.Options, guildmodels.QuestionOption{
				OptionText:      opt.Text,
				Order:           i + 1,
				ImmediateReject: opt.ImmediateReject,
			})
		}
		if err := tx.CreateQuestion(&question); err != nil {
			return err
		}
		created = &question
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.Infof("Added question %v to guild %v questionnaire", created.ID, guildID)
	return created, nil
}

//AddOption appends a new option to an existing choice question.
func (b *Builder) AddOption(questionID uint, text string, immediateReject bool) (*guildmodels.QuestionOption, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Entity: "option", Reason: "option text must not be empty"}
	}
	var created *guildmodels.QuestionOption
	err := b.DB.Transaction(func(tx *db.DBConnection) error {
		question, err := tx.GetQuestion(questionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "question", ID: questionID}
		} else if err != nil {
			return err
		}
		if !question.QuestionType.IsChoice() {
			return &ValidationError{Entity: "question", ID: questionID, Reason: "only choice questions may carry options"}
		}
		option := guildmodels.QuestionOption{
			QuestionID:      questionID,
			OptionText:      text,
			Order:           len(question.Options) + 1,
			ImmediateReject: immediateReject,
		}
		if err := tx.CreateQuestionOption(&option); err != nil {
			return err
		}
		created = &option
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

//DeactivateQuestion soft-deletes a question from future submissions.
//Answers already recorded against it are untouched, so historical
//submissions remain readable.
func (b *Builder) DeactivateQuestion(questionID uint) error {
	return b.DB.Transaction(func(tx *db.DBConnection) error {
		question, err := tx.GetQuestion(questionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "question", ID: questionID}
		} else if err != nil {
			return err
		}
		question.Active = false
		return tx.SaveQuestion(question)
	})
}

//ReparentQuestion changes (or clears, with two nils) a question's
//conditional parent. Re-parenting re-runs the cycle check: the question may
//not appear in its own new ancestor chain.
func (b *Builder) ReparentQuestion(questionID uint, parentQuestionID, parentOptionID *uint) error {
	if (parentQuestionID == nil) != (parentOptionID == nil) {
		return &ValidationError{Entity: "question", ID: questionID, Reason: "conditional questions need both a parent question and a parent option"}
	}
	return b.DB.Transaction(func(tx *db.DBConnection) error {
		question, err := tx.GetQuestion(questionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "question", ID: questionID}
		} else if err != nil {
			return err
		}
		if parentQuestionID != nil {
			if err := validateParent(tx, question.GuildID, questionID, *parentQuestionID, *parentOptionID); err != nil {
				return err
			}
		}
		question.ParentQuestionID = parentQuestionID
		question.ParentOptionID = parentOptionID
		return tx.SaveQuestion(question)
	})
}

//ReorderQuestion moves a question to a new position in its guild's
//presentation sequence and renumbers the rest densely. Readers tolerate
//gaps regardless, sorting by order then id.
func (b *Builder) ReorderQuestion(questionID uint, position int) error {
	if position < 1 {
		position = 1
	}
	return b.DB.Transaction(func(tx *db.DBConnection) error {
		question, err := tx.GetQuestion(questionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "question", ID: questionID}
		} else if err != nil {
			return err
		}
		questions, err := tx.ListQuestions(question.GuildID)
		if err != nil {
			return err
		}
		reordered := make([]guildmodels.Question, 0, len(questions))
		for _, q := range questions {
			if q.ID != questionID {
				reordered = append(reordered, q)
			}
		}
		if position > len(reordered)+1 {
			position = len(reordered) + 1
		}
		reordered = append(reordered[:position-1], append([]guildmodels.Question{*question}, reordered[position-1:]...)...)
		for i := range reordered {
			reordered[i].Order = i + 1
			if err := tx.SaveQuestion(&reordered[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

//ListQuestions returns a guild's full questionnaire, options included, in
//presentation order.
func (b *Builder) ListQuestions(guildID uint) ([]guildmodels.Question, error) {
	return b.DB.ListQuestions(guildID)
}

//validateParent checks a prospective parent link for questionID (0 for a
//question not yet created): same guild, choice-typed parent owning the
//option, and no cycle in the resulting ancestor chain.
func validateParent(tx *db.DBConnection, guildID, questionID, parentQuestionID, parentOptionID uint) error {
	parent, err := tx.GetQuestion(parentQuestionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: "question", ID: parentQuestionID}
	} else if err != nil {
		return err
	}
	if parent.GuildID != guildID {
		return &ValidationError{Entity: "question", ID: parentQuestionID, Reason: "parent question belongs to a different guild"}
	}
	if !parent.QuestionType.IsChoice() {
		return &ValidationError{Entity: "question", ID: parentQuestionID, Reason: "parent question is not a choice question"}
	}
	if parent.Option(parentOptionID) == nil {
		return &ValidationError{Entity: "option", ID: parentOptionID, Reason: "option does not belong to the parent question"}
	}
	//Walk the ancestor chain from the prospective parent. Seeing questionID
	//means the new link would close a cycle.
	questions, err := tx.ListQuestions(guildID)
	if err != nil {
		return err
	}
	byID := make(map[uint]*guildmodels.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	seen := map[uint]bool{}
	for cursor := &parentQuestionID; cursor != nil; {
		id := *cursor
		if id == questionID {
			return &ValidationError{Entity: "question", ID: questionID, Reason: "parent chain would form a cycle"}
		}
		if seen[id] {
			return &ValidationError{Entity: "question", ID: id, Reason: "existing parent chain contains a cycle"}
		}
		seen[id] = true
		ancestor, ok := byID[id]
		if !ok {
			return &NotFoundError{Entity: "question", ID: id}
		}
		cursor = ancestor.ParentQuestionID
	}
	return nil
}
