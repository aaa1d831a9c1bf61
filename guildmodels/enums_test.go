package guildmodels

import "testing"

func TestStatusIsTerminal(t *testing.T) {
	cases := []struct {
		status   Status
		terminal bool
	}{
		{StatusPending, false},
		{StatusInProgress, false},
		{StatusFlagged, false},
		{StatusApproved, true},
		{StatusRejected, true},
	}
	for _, c := range cases {
		if got := c.status.IsTerminal(); got != c.terminal {
			t.Errorf("IsTerminal(%v) = %v, want %v", c.status, got, c.terminal)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusApproved, StatusRejected, StatusFlagged, StatusInProgress} {
		if !status.Valid() {
			t.Errorf("Valid(%v) = false, want true", status)
		}
	}
	if Status("banned").Valid() {
		t.Error("Valid(banned) = true, want false")
	}
	if Status("").Valid() {
		t.Error("Valid(\"\") = true, want false")
	}
}

func TestQuestionTypeIsChoice(t *testing.T) {
	cases := []struct {
		qt     QuestionType
		choice bool
	}{
		{QuestionSingleChoice, true},
		{QuestionMultiChoice, true},
		{QuestionShortText, false},
		{QuestionLongText, false},
		{QuestionNumeric, false},
	}
	for _, c := range cases {
		if got := c.qt.IsChoice(); got != c.choice {
			t.Errorf("IsChoice(%v) = %v, want %v", c.qt, got, c.choice)
		}
	}
}

func TestActionTypeValid(t *testing.T) {
	for _, at := range []ActionType{ActionApprove, ActionReject, ActionBan, ActionUnban} {
		if !at.Valid() {
			t.Errorf("Valid(%v) = false, want true", at)
		}
	}
	if ActionType("kick").Valid() {
		t.Error("Valid(kick) = true, want false")
	}
}
