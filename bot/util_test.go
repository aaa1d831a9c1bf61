package bot

import (
	"testing"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

func TestCommandArgs(t *testing.T) {
	cases := []struct {
		content string
		command string
		want    string
	}{
		{"!answer 1 2 3", "answer", "1 2 3"},
		{"!answer", "answer", ""},
		{"!flagapp 12   looks off", "flagapp", "12   looks off"},
	}
	for _, c := range cases {
		if got := commandArgs(c.content, c.command); got != c.want {
			t.Errorf("commandArgs(%q, %q) = %q, want %q", c.content, c.command, got, c.want)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, ok := parseID(" 42 "); !ok || id != 42 {
		t.Errorf("parseID returned %v, %v; want 42, true", id, ok)
	}
	for _, bad := range []string{"", "abc", "-1", "12.5"} {
		if _, ok := parseID(bad); ok {
			t.Errorf("parseID(%q) accepted bad input", bad)
		}
	}
}

func TestSplitIDAndRest(t *testing.T) {
	id, rest, ok := splitIDAndRest("7 too many red flags")
	if !ok || id != 7 || rest != "too many red flags" {
		t.Errorf("splitIDAndRest = %v, %q, %v", id, rest, ok)
	}
	id, rest, ok = splitIDAndRest("7")
	if !ok || id != 7 || rest != "" {
		t.Errorf("splitIDAndRest without rest = %v, %q, %v", id, rest, ok)
	}
	if _, _, ok := splitIDAndRest("seven reasons"); ok {
		t.Error("splitIDAndRest accepted a non-numeric id")
	}
}

func choiceQuestion() *guildmodels.Question {
	return &guildmodels.Question{
		QuestionType: guildmodels.QuestionMultiChoice,
		Options: []guildmodels.QuestionOption{
			{ID: 10, OptionText: "a"},
			{ID: 20, OptionText: "b"},
			{ID: 30, OptionText: "c"},
		},
	}
}

func TestParseSelections(t *testing.T) {
	question := choiceQuestion()

	ids, ok := parseSelections("1 3", question)
	if !ok || len(ids) != 2 || ids[0] != 10 || ids[1] != 30 {
		t.Errorf("parseSelections(\"1 3\") = %v, %v", ids, ok)
	}
	for _, bad := range []string{"", "0", "4", "one"} {
		if _, ok := parseSelections(bad, question); ok {
			t.Errorf("parseSelections(%q) accepted an out-of-range selection", bad)
		}
	}
}

func TestInterpretAnswer(t *testing.T) {
	choice := choiceQuestion()
	value, ok := interpretAnswer(choice, "2")
	if !ok || len(value.OptionIDs) != 1 || value.OptionIDs[0] != 20 {
		t.Errorf("interpretAnswer on a choice question = %+v, %v", value, ok)
	}

	numeric := &guildmodels.Question{QuestionType: guildmodels.QuestionNumeric}
	value, ok = interpretAnswer(numeric, "15")
	if !ok || value.Number == nil || *value.Number != 15 {
		t.Errorf("interpretAnswer on a numeric question = %+v, %v", value, ok)
	}
	if _, ok := interpretAnswer(numeric, "fifteen"); ok {
		t.Error("interpretAnswer accepted a non-numeric answer to a numeric question")
	}

	text := &guildmodels.Question{QuestionType: guildmodels.QuestionLongText}
	value, ok = interpretAnswer(text, "a longer story")
	if !ok || value.Text == nil || *value.Text != "a longer story" {
		t.Errorf("interpretAnswer on a text question = %+v, %v", value, ok)
	}
}

func TestAnswerHintMentionsAnswerCommand(t *testing.T) {
	for _, qt := range []guildmodels.QuestionType{
		guildmodels.QuestionSingleChoice,
		guildmodels.QuestionMultiChoice,
		guildmodels.QuestionNumeric,
		guildmodels.QuestionShortText,
	} {
		hint := answerHint(&guildmodels.Question{QuestionType: qt})
		if hint == "" {
			t.Errorf("answerHint for %v is empty", qt)
		}
	}
}
