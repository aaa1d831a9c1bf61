package vetting_test

import (
	"errors"
	"testing"

	"github.com/lsmythe/gatekeeper/guildmodels"
	"github.com/lsmythe/gatekeeper/testutil"
	"github.com/lsmythe/gatekeeper/vetting"
)

func TestAddQuestionAppendsToOrder(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	builder := vetting.NewBuilder(conn)

	first, err := builder.AddQuestion(guild.ID, vetting.QuestionParams{
		Text: "First question",
		Type: guildmodels.QuestionShortText,
	})
	if err != nil {
		t.Fatalf("Failed to add question: %v", err)
	}
	second, err := builder.AddQuestion(guild.ID, vetting.QuestionParams{
		Text: "Second question",
		Type: guildmodels.QuestionShortText,
	})
	if err != nil {
		t.Fatalf("Failed to add question: %v", err)
	}
	if first.Order != 1 || second.Order != 2 {
		t.Errorf("Appended questions got orders %v, %v; want 1, 2", first.Order, second.Order)
	}
}

func TestOptionalQuestionStaysOptional(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	member := testutil.CreateMember(t, conn, guild.ID)
	builder := vetting.NewBuilder(conn)

	question, err := builder.AddQuestion(guild.ID, vetting.QuestionParams{
		Text:     "Anything else you want to add?",
		Type:     guildmodels.QuestionLongText,
		Required: false,
	})
	if err != nil {
		t.Fatalf("Failed to add question: %v", err)
	}
	stored, err := conn.GetQuestion(question.ID)
	if err != nil {
		t.Fatalf("Failed to reload question: %v", err)
	}
	if stored.Required {
		t.Fatal("Optional question was stored as required")
	}
	if !stored.Active {
		t.Fatal("New question was stored as inactive")
	}

	//An optional text question accepts an empty answer.
	engine := vetting.NewSubmissionEngine(conn)
	submission, err := engine.StartSubmission(member.ID)
	if err != nil {
		t.Fatalf("Failed to start submission: %v", err)
	}
	if _, err := engine.RecordAnswer(submission.ID, question.ID, vetting.AnswerValue{Text: strPtr("")}); err != nil {
		t.Errorf("Empty answer to an optional question was rejected: %v", err)
	}
	if _, err := engine.Submit(submission.ID); err != nil {
		t.Errorf("Failed to submit with the optional question blank: %v", err)
	}
}

func TestAddQuestionValidation(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	builder := vetting.NewBuilder(conn)

	cases := []struct {
		name   string
		params vetting.QuestionParams
	}{
		{"empty text", vetting.QuestionParams{Text: "   ", Type: guildmodels.QuestionShortText}},
		{"unknown type", vetting.QuestionParams{Text: "q", Type: guildmodels.QuestionType("essay")}},
		{"options on text question", vetting.QuestionParams{
			Text:    "q",
			Type:    guildmodels.QuestionShortText,
			Options: []vetting.OptionParams{{Text: "a"}},
		}},
		{"parent question without option", vetting.QuestionParams{
			Text:             "q",
			Type:             guildmodels.QuestionShortText,
			ParentQuestionID: uintPtr(1),
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := builder.AddQuestion(guild.ID, c.params); !errors.Is(err, vetting.ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestAddQuestionUnknownGuild(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	builder := vetting.NewBuilder(conn)

	_, err := builder.AddQuestion(9999, vetting.QuestionParams{
		Text: "q",
		Type: guildmodels.QuestionShortText,
	})
	if !errors.Is(err, vetting.ErrNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestAddQuestionParentMustBeChoice(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	builder := vetting.NewBuilder(conn)

	parent, err := builder.AddQuestion(guild.ID, vetting.QuestionParams{
		Text: "Free form",
		Type: guildmodels.QuestionLongText,
	})
	if err != nil {
		t.Fatalf("Failed to add question: %v", err)
	}
	_, err = builder.AddQuestion(guild.ID, vetting.QuestionParams{
		Text:             "child",
		Type:             guildmodels.QuestionShortText,
		ParentQuestionID: &parent.ID,
		ParentOptionID:   uintPtr(1),
	})
	if !errors.Is(err, vetting.ErrValidation) {
		t.Errorf("Expected validation error for non-choice parent, got %v", err)
	}
}

func TestAddQuestionParentOptionMustBelong(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	q := buildQuestionnaire(t, conn, guild.ID)
	builder := vetting.NewBuilder(conn)

	_, err := builder.AddQuestion(guild.ID, vetting.QuestionParams{
		Text:             "child",
		Type:             guildmodels.QuestionShortText,
		ParentQuestionID: &q.AgeGate.ID,
		ParentOptionID:   uintPtr(99999),
	})
	if !errors.Is(err, vetting.ErrValidation) {
		t.Errorf("Expected validation error for foreign option, got %v", err)
	}
}

func TestAddQuestionParentFromOtherGuild(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guildA := testutil.CreateGuild(t, conn)
	guildB := testutil.CreateGuild(t, conn)
	q := buildQuestionnaire(t, conn, guildA.ID)
	builder := vetting.NewBuilder(conn)

	_, err := builder.AddQuestion(guildB.ID, vetting.QuestionParams{
		Text:             "child",
		Type:             guildmodels.QuestionShortText,
		ParentQuestionID: &q.AgeGate.ID,
		ParentOptionID:   &q.YesOption,
	})
	if !errors.Is(err, vetting.ErrValidation) {
		t.Errorf("Expected validation error for cross-guild parent, got %v", err)
	}
}

func TestReparentQuestionRejectsCycle(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	builder := vetting.NewBuilder(conn)

	root, err := builder.AddQuestion(guild.ID, vetting.QuestionParams{
		Text: "Pick one",
		Type: guildmodels.QuestionSingleChoice,
		Options: []vetting.OptionParams{
			{Text: "a"},
			{Text: "b"},
		},
	})
	if err != nil {
		t.Fatalf("Failed to add question: %v", err)
	}
	child, err := builder.AddQuestion(guild.ID, vetting.QuestionParams{
		Text:             "Pick another",
		Type:             guildmodels.QuestionSingleChoice,
		ParentQuestionID: &root.ID,
		ParentOptionID:   &root.Options[0].ID,
		Options: []vetting.OptionParams{
			{Text: "c"},
		},
	})
	if err != nil {
		t.Fatalf("Failed to add conditional question: %v", err)
	}

	//root -> child already holds, so child -> root would close a loop.
	err = builder.ReparentQuestion(root.ID, &child.ID, &child.Options[0].ID)
	if !errors.Is(err, vetting.ErrValidation) {
		t.Errorf("Expected validation error for cyclic parent chain, got %v", err)
	}

	//Clearing the link with two nils is always legal.
	if err := builder.ReparentQuestion(child.ID, nil, nil); err != nil {
		t.Errorf("Failed to clear parent link: %v", err)
	}
}

func TestReorderQuestionRenumbersDensely(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	builder := vetting.NewBuilder(conn)

	var ids []uint
	for _, text := range []string{"one", "two", "three"} {
		q, err := builder.AddQuestion(guild.ID, vetting.QuestionParams{
			Text: text,
			Type: guildmodels.QuestionShortText,
		})
		if err != nil {
			t.Fatalf("Failed to add question: %v", err)
		}
		ids = append(ids, q.ID)
	}

	if err := builder.ReorderQuestion(ids[2], 1); err != nil {
		t.Fatalf("Failed to reorder question: %v", err)
	}

	questions, err := builder.ListQuestions(guild.ID)
	if err != nil {
		t.Fatalf("Failed to list questions: %v", err)
	}
	wantIDs := []uint{ids[2], ids[0], ids[1]}
	for i, q := range questions {
		if q.ID != wantIDs[i] {
			t.Errorf("Position %v holds question %v, want %v", i+1, q.ID, wantIDs[i])
		}
		if q.Order != i+1 {
			t.Errorf("Question %v has order %v, want %v", q.ID, q.Order, i+1)
		}
	}
}

func TestDeactivateQuestionLeavesHistory(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	builder := vetting.NewBuilder(conn)

	q, err := builder.AddQuestion(guild.ID, vetting.QuestionParams{
		Text: "soon gone",
		Type: guildmodels.QuestionShortText,
	})
	if err != nil {
		t.Fatalf("Failed to add question: %v", err)
	}
	if err := builder.DeactivateQuestion(q.ID); err != nil {
		t.Fatalf("Failed to deactivate question: %v", err)
	}

	active, err := conn.ListActiveQuestions(guild.ID)
	if err != nil {
		t.Fatalf("Failed to list active questions: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Deactivated question still listed as active")
	}
	all, err := builder.ListQuestions(guild.ID)
	if err != nil {
		t.Fatalf("Failed to list questions: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Deactivated question vanished from the full listing")
	}
}

func TestAddOption(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	q := buildQuestionnaire(t, conn, guild.ID)
	builder := vetting.NewBuilder(conn)

	opt, err := builder.AddOption(q.AgeGate.ID, "Prefer not to say", false)
	if err != nil {
		t.Fatalf("Failed to add option: %v", err)
	}
	if opt.Order != 3 {
		t.Errorf("New option got order %v, want 3", opt.Order)
	}

	if _, err := builder.AddOption(q.FollowUp.ID, "nope", false); !errors.Is(err, vetting.ErrValidation) {
		t.Errorf("Expected validation error adding an option to a text question, got %v", err)
	}
	if _, err := builder.AddOption(q.AgeGate.ID, "  ", false); !errors.Is(err, vetting.ErrValidation) {
		t.Errorf("Expected validation error for empty option text, got %v", err)
	}
}
