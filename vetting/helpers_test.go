package vetting_test

import (
	"testing"

	"github.com/lsmythe/gatekeeper/db"
	"github.com/lsmythe/gatekeeper/guildmodels"
	"github.com/lsmythe/gatekeeper/vetting"
)

func strPtr(s string) *string { return &s }
func i64Ptr(n int64) *int64   { return &n }
func uintPtr(n uint) *uint    { return &n }

//questionnaire is the fixture most submission tests run against: an age
//gate whose "No" option rejects immediately, a follow-up that only applies
//after "Yes", and an unconditional numeric question.
type questionnaire struct {
	AgeGate   *guildmodels.Question
	YesOption uint
	NoOption  uint
	FollowUp  *guildmodels.Question
	HoursPer  *guildmodels.Question
}

func buildQuestionnaire(t *testing.T, conn *db.DBConnection, guildID uint) questionnaire {
	t.Helper()
	builder := vetting.NewBuilder(conn)

	ageGate, err := builder.AddQuestion(guildID, vetting.QuestionParams{
		Text:     "Are you over 18?",
		Type:     guildmodels.QuestionSingleChoice,
		Required: true,
		Options: []vetting.OptionParams{
			{Text: "Yes"},
			{Text: "No", ImmediateReject: true},
		},
	})
	if err != nil {
		t.Fatalf("Failed to add age gate question: %v", err)
	}

	followUp, err := builder.AddQuestion(guildID, vetting.QuestionParams{
		Text:             "Tell us about your previous communities",
		Type:             guildmodels.QuestionLongText,
		Required:         true,
		ParentQuestionID: &ageGate.ID,
		ParentOptionID:   &ageGate.Options[0].ID,
	})
	if err != nil {
		t.Fatalf("Failed to add conditional question: %v", err)
	}

	hours, err := builder.AddQuestion(guildID, vetting.QuestionParams{
		Text: "How many hours a week are you active?",
		Type: guildmodels.QuestionNumeric,
	})
	if err != nil {
		t.Fatalf("Failed to add numeric question: %v", err)
	}

	return questionnaire{
		AgeGate:   ageGate,
		YesOption: ageGate.Options[0].ID,
		NoOption:  ageGate.Options[1].ID,
		FollowUp:  followUp,
		HoursPer:  hours,
	}
}
