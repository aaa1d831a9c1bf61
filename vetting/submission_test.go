package vetting_test

import (
	"errors"
	"testing"

	"github.com/lsmythe/gatekeeper/guildmodels"
	"github.com/lsmythe/gatekeeper/testutil"
	"github.com/lsmythe/gatekeeper/vetting"
)

func TestStartSubmissionBlacklistedMember(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	member := testutil.CreateMember(t, conn, guild.ID)
	engine := vetting.NewSubmissionEngine(conn)

	if err := conn.UpdateMemberFields(member.ID, map[string]interface{}{
		"blacklisted":      true,
		"blacklist_reason": "previous ban",
	}); err != nil {
		t.Fatalf("Failed to blacklist member: %v", err)
	}

	_, err := engine.StartSubmission(member.ID)
	if !errors.Is(err, vetting.ErrConflict) {
		t.Fatalf("Expected conflict starting a submission for a blacklisted member, got %v", err)
	}
	var conflict *vetting.ConflictError
	if !errors.As(err, &conflict) || conflict.State != "blacklisted" {
		t.Errorf("Conflict did not carry the blacklisted state: %v", err)
	}
}

func TestStartSubmissionAlreadyOutstanding(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	member := testutil.CreateMember(t, conn, guild.ID)
	engine := vetting.NewSubmissionEngine(conn)

	first, err := engine.StartSubmission(member.ID)
	if err != nil {
		t.Fatalf("Failed to start submission: %v", err)
	}

	_, err = engine.StartSubmission(member.ID)
	var conflict *vetting.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected conflict starting a second submission, got %v", err)
	}
	if conflict.Entity != "submission" || conflict.ID != first.ID {
		t.Errorf("Conflict should name the outstanding submission %v, got %+v", first.ID, conflict)
	}
}

func TestStartSubmissionUnknownMember(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	engine := vetting.NewSubmissionEngine(conn)

	if _, err := engine.StartSubmission(424242); !errors.Is(err, vetting.ErrNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestQuestionnaireWalkthrough(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	member := testutil.CreateMember(t, conn, guild.ID)
	q := buildQuestionnaire(t, conn, guild.ID)
	engine := vetting.NewSubmissionEngine(conn)

	submission, err := engine.StartSubmission(member.ID)
	if err != nil {
		t.Fatalf("Failed to start submission: %v", err)
	}

	//Repeated calls without intervening writes must hand out the same
	//question.
	for i := 0; i < 2; i++ {
		next, err := engine.NextQuestion(submission.ID)
		if err != nil {
			t.Fatalf("Failed to fetch next question: %v", err)
		}
		if next == nil || next.ID != q.AgeGate.ID {
			t.Fatalf("Next question = %+v, want age gate %v", next, q.AgeGate.ID)
		}
	}

	//Submitting with the questionnaire unfinished conflicts.
	if _, err := engine.Submit(submission.ID); !errors.Is(err, vetting.ErrConflict) {
		t.Fatalf("Expected conflict submitting an incomplete questionnaire, got %v", err)
	}

	recorded, err := engine.RecordAnswer(submission.ID, q.AgeGate.ID, vetting.AnswerValue{OptionIDs: []uint{q.YesOption}})
	if err != nil {
		t.Fatalf("Failed to answer age gate: %v", err)
	}
	if recorded.Rejected {
		t.Fatal("Answering Yes must not reject the submission")
	}

	next, err := engine.NextQuestion(submission.ID)
	if err != nil {
		t.Fatalf("Failed to fetch next question: %v", err)
	}
	if next == nil || next.ID != q.FollowUp.ID {
		t.Fatalf("After Yes, next question = %+v, want follow-up %v", next, q.FollowUp.ID)
	}

	if _, err := engine.RecordAnswer(submission.ID, q.FollowUp.ID, vetting.AnswerValue{Text: strPtr("Ran a small guild for two years")}); err != nil {
		t.Fatalf("Failed to answer follow-up: %v", err)
	}
	if _, err := engine.RecordAnswer(submission.ID, q.HoursPer.ID, vetting.AnswerValue{Number: i64Ptr(12)}); err != nil {
		t.Fatalf("Failed to answer numeric question: %v", err)
	}

	next, err = engine.NextQuestion(submission.ID)
	if err != nil {
		t.Fatalf("Failed to fetch next question: %v", err)
	}
	if next != nil {
		t.Fatalf("Questionnaire complete but next question = %v", next.ID)
	}

	submitted, err := engine.Submit(submission.ID)
	if err != nil {
		t.Fatalf("Failed to submit: %v", err)
	}
	if submitted.Status != guildmodels.StatusPending {
		t.Errorf("Submitted submission status = %v, want pending", submitted.Status)
	}
	if submitted.SubmittedAt == nil {
		t.Error("Submitted submission has no submitted_at timestamp")
	}
	got, err := conn.GetMember(member.ID)
	if err != nil {
		t.Fatalf("Failed to reload member: %v", err)
	}
	if got.Status != guildmodels.StatusPending {
		t.Errorf("Member status = %v, want pending", got.Status)
	}
}

func TestImmediateRejectOptionClosesSubmission(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	member := testutil.CreateMember(t, conn, guild.ID)
	q := buildQuestionnaire(t, conn, guild.ID)
	engine := vetting.NewSubmissionEngine(conn)

	submission, err := engine.StartSubmission(member.ID)
	if err != nil {
		t.Fatalf("Failed to start submission: %v", err)
	}

	recorded, err := engine.RecordAnswer(submission.ID, q.AgeGate.ID, vetting.AnswerValue{OptionIDs: []uint{q.NoOption}})
	if err != nil {
		t.Fatalf("Failed to record rejecting answer: %v", err)
	}
	if !recorded.Rejected || recorded.RejectionReason == "" {
		t.Fatalf("Selecting an immediate-reject option should close the submission, got %+v", recorded)
	}

	got, err := engine.GetSubmission(submission.ID)
	if err != nil {
		t.Fatalf("Failed to reload submission: %v", err)
	}
	if got.Status != guildmodels.StatusRejected {
		t.Errorf("Submission status = %v, want rejected", got.Status)
	}
	if got.RejectionReason == "" {
		t.Error("Rejected submission carries no rejection reason")
	}
	gotMember, err := conn.GetMember(member.ID)
	if err != nil {
		t.Fatalf("Failed to reload member: %v", err)
	}
	if gotMember.Status != guildmodels.StatusRejected {
		t.Errorf("Member status = %v, want rejected", gotMember.Status)
	}

	//The closed submission accepts nothing further.
	next, err := engine.NextQuestion(submission.ID)
	if err != nil {
		t.Fatalf("NextQuestion on a closed submission errored: %v", err)
	}
	if next != nil {
		t.Errorf("Closed submission still hands out question %v", next.ID)
	}
	if _, err := engine.Submit(submission.ID); !errors.Is(err, vetting.ErrConflict) {
		t.Errorf("Expected conflict submitting a rejected submission, got %v", err)
	}
	if _, err := engine.RecordAnswer(submission.ID, q.HoursPer.ID, vetting.AnswerValue{Number: i64Ptr(1)}); !errors.Is(err, vetting.ErrConflict) {
		t.Errorf("Expected conflict answering on a rejected submission, got %v", err)
	}
}

func TestReansweringParentDropsBranch(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	member := testutil.CreateMember(t, conn, guild.ID)
	q := buildQuestionnaire(t, conn, guild.ID)
	builder := vetting.NewBuilder(conn)
	engine := vetting.NewSubmissionEngine(conn)

	//A third, non-rejecting option to move the answer onto.
	neither, err := builder.AddOption(q.AgeGate.ID, "Prefer not to say", false)
	if err != nil {
		t.Fatalf("Failed to add option: %v", err)
	}

	submission, err := engine.StartSubmission(member.ID)
	if err != nil {
		t.Fatalf("Failed to start submission: %v", err)
	}
	if _, err := engine.RecordAnswer(submission.ID, q.AgeGate.ID, vetting.AnswerValue{OptionIDs: []uint{q.YesOption}}); err != nil {
		t.Fatalf("Failed to answer age gate: %v", err)
	}
	if _, err := engine.RecordAnswer(submission.ID, q.FollowUp.ID, vetting.AnswerValue{Text: strPtr("some history")}); err != nil {
		t.Fatalf("Failed to answer follow-up: %v", err)
	}

	//Overwriting the parent answer closes the branch under the Yes option.
	if _, err := engine.RecordAnswer(submission.ID, q.AgeGate.ID, vetting.AnswerValue{OptionIDs: []uint{neither.ID}}); err != nil {
		t.Fatalf("Failed to re-answer age gate: %v", err)
	}

	next, err := engine.NextQuestion(submission.ID)
	if err != nil {
		t.Fatalf("Failed to fetch next question: %v", err)
	}
	if next == nil || next.ID != q.HoursPer.ID {
		t.Fatalf("After re-answer, next question = %+v, want numeric question %v", next, q.HoursPer.ID)
	}

	//The follow-up is out of the applicable set now.
	if _, err := engine.RecordAnswer(submission.ID, q.FollowUp.ID, vetting.AnswerValue{Text: strPtr("more")}); !errors.Is(err, vetting.ErrValidation) {
		t.Errorf("Expected validation error answering an inapplicable question, got %v", err)
	}

	//The stale follow-up answer stays in storage.
	answers, err := conn.AnswersForSubmission(submission.ID)
	if err != nil {
		t.Fatalf("Failed to list answers: %v", err)
	}
	if len(answers) != 2 {
		t.Errorf("Expected 2 stored answers (including the stale one), got %d", len(answers))
	}

	//The stale answer does not count toward completion.
	if _, err := engine.RecordAnswer(submission.ID, q.HoursPer.ID, vetting.AnswerValue{Number: i64Ptr(3)}); err != nil {
		t.Fatalf("Failed to answer numeric question: %v", err)
	}
	if _, err := engine.Submit(submission.ID); err != nil {
		t.Errorf("Submit failed with the branch closed: %v", err)
	}
}

func TestRecordAnswerValidation(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	member := testutil.CreateMember(t, conn, guild.ID)
	q := buildQuestionnaire(t, conn, guild.ID)
	engine := vetting.NewSubmissionEngine(conn)

	submission, err := engine.StartSubmission(member.ID)
	if err != nil {
		t.Fatalf("Failed to start submission: %v", err)
	}

	cases := []struct {
		name       string
		questionID uint
		value      vetting.AnswerValue
	}{
		{"no options on choice", q.AgeGate.ID, vetting.AnswerValue{Text: strPtr("yes")}},
		{"two options on single choice", q.AgeGate.ID, vetting.AnswerValue{OptionIDs: []uint{q.YesOption, q.NoOption}}},
		{"foreign option id", q.AgeGate.ID, vetting.AnswerValue{OptionIDs: []uint{99999}}},
		{"text on numeric", q.HoursPer.ID, vetting.AnswerValue{Text: strPtr("ten")}},
		{"inapplicable conditional", q.FollowUp.ID, vetting.AnswerValue{Text: strPtr("history")}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := engine.RecordAnswer(submission.ID, c.questionID, c.value); !errors.Is(err, vetting.ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}

	//A question that does not exist at all is a missing reference, not bad
	//input.
	if _, err := engine.RecordAnswer(submission.ID, 99999, vetting.AnswerValue{Text: strPtr("x")}); !errors.Is(err, vetting.ErrNotFound) {
		t.Errorf("Expected not found error for a nonexistent question, got %v", err)
	}

	//Required text questions reject whitespace-only answers once applicable.
	if _, err := engine.RecordAnswer(submission.ID, q.AgeGate.ID, vetting.AnswerValue{OptionIDs: []uint{q.YesOption}}); err != nil {
		t.Fatalf("Failed to answer age gate: %v", err)
	}
	if _, err := engine.RecordAnswer(submission.ID, q.FollowUp.ID, vetting.AnswerValue{Text: strPtr("   ")}); !errors.Is(err, vetting.ErrValidation) {
		t.Errorf("Expected validation error for an empty required answer, got %v", err)
	}

	//A question that exists but is out of the active questionnaire still
	//reports bad input.
	if err := vetting.NewBuilder(conn).DeactivateQuestion(q.HoursPer.ID); err != nil {
		t.Fatalf("Failed to deactivate question: %v", err)
	}
	if _, err := engine.RecordAnswer(submission.ID, q.HoursPer.ID, vetting.AnswerValue{Number: i64Ptr(2)}); !errors.Is(err, vetting.ErrValidation) {
		t.Errorf("Expected validation error for a deactivated question, got %v", err)
	}
}

func TestNextQuestionUnknownSubmission(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	engine := vetting.NewSubmissionEngine(conn)

	if _, err := engine.NextQuestion(424242); !errors.Is(err, vetting.ErrNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestEmptyQuestionnaireSubmitsImmediately(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	guild := testutil.CreateGuild(t, conn)
	member := testutil.CreateMember(t, conn, guild.ID)
	engine := vetting.NewSubmissionEngine(conn)

	submission, err := engine.StartSubmission(member.ID)
	if err != nil {
		t.Fatalf("Failed to start submission: %v", err)
	}
	next, err := engine.NextQuestion(submission.ID)
	if err != nil {
		t.Fatalf("Failed to fetch next question: %v", err)
	}
	if next != nil {
		t.Fatalf("Guild %v has no questions but NextQuestion returned %v", guild.ID, next.ID)
	}
	if _, err := engine.Submit(submission.ID); err != nil {
		t.Errorf("Failed to submit against an empty questionnaire: %v", err)
	}
}
