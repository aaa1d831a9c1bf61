package db

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

//orderedOptions keeps preloaded options in presentation order so callers
//can address them by position.
func orderedOptions(tx *gorm.DB) *gorm.DB {
	return tx.Order("\"order\", id")
}

//CreateQuestion inserts a new question row.
func (db *DBConnection) CreateQuestion(question *guildmodels.Question) error {
	err := db.orm.Create(question).Error
	if err != nil {
		logrus.Warnf("Failed to insert question for guild %v due to error %v", question.GuildID, err)
		return err
	}
	return nil
}

//GetQuestion fetches a question with its options preloaded.
func (db *DBConnection) GetQuestion(id uint) (*guildmodels.Question, error) {
	var question guildmodels.Question
	err := db.orm.Preload("Options", orderedOptions).First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

//SaveQuestion persists changes to a question row.
func (db *DBConnection) SaveQuestion(question *guildmodels.Question) error {
	err := db.orm.Save(question).Error
	if err != nil {
		logrus.Warnf("Failed to save question %v due to error %v", question.ID, err)
		return err
	}
	return nil
}

//ListQuestions returns all questions for a guild with options preloaded,
//sorted by presentation order with id as the tie break. Gaps in the order
//sequence are tolerated.
func (db *DBConnection) ListQuestions(guildID uint) ([]guildmodels.Question, error) {
	var questions []guildmodels.Question
	err := db.orm.Preload("Options", orderedOptions).
		Where("guild_id = ?", guildID).
		Order("\"order\", id").
		Find(&questions).Error
	if err != nil {
		logrus.Warnf("Failed to list questions for guild %v due to error %v", guildID, err)
		return nil, err
	}
	return questions, nil
}

//ListActiveQuestions returns the active questions for a guild with options
//preloaded, in presentation order.
func (db *DBConnection) ListActiveQuestions(guildID uint) ([]guildmodels.Question, error) {
	var questions []guildmodels.Question
	err := db.orm.Preload("Options", orderedOptions).
		Where("guild_id = ? AND active = ?", guildID, true).
		Order("\"order\", id").
		Find(&questions).Error
	if err != nil {
		logrus.Warnf("Failed to list active questions for guild %v due to error %v", guildID, err)
		return nil, err
	}
	return questions, nil
}

//MaxQuestionOrder returns the highest order value among a guild's questions,
//or 0 if it has none.
func (db *DBConnection) MaxQuestionOrder(guildID uint) (int, error) {
	var max *int
	err := db.orm.Model(&guildmodels.Question{}).
		Where("guild_id = ?", guildID).
		Select("MAX(\"order\")").
		Scan(&max).Error
	if err != nil {
		logrus.Warnf("Failed to find max question order for guild %v due to error %v", guildID, err)
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

//CreateQuestionOption inserts a new option row for a question.
func (db *DBConnection) CreateQuestionOption(option *guildmodels.QuestionOption) error {
	err := db.orm.Create(option).Error
	if err != nil {
		logrus.Warnf("Failed to insert option for question %v due to error %v", option.QuestionID, err)
		return err
	}
	return nil
}

//GetQuestionOption fetches a single option row.
func (db *DBConnection) GetQuestionOption(id uint) (*guildmodels.QuestionOption, error) {
	var option guildmodels.QuestionOption
	err := db.orm.First(&option, id).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}
