package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/lsmythe/gatekeeper/guildmodels"
	"github.com/lsmythe/gatekeeper/vetting"
)

const handleAddQuestionSyntax = "`!addquestion <type> <required|optional> [parent=<questionID>:<optionNo>] <text> [| <option> [| <option>*] ...]`\n" +
	"Types: single_choice, multi_choice, short_text, long_text, numeric. A trailing `*` on an option marks it as immediately disqualifying."

var regexHandleAddQuestion = regexp.MustCompile(`^(single_choice|multi_choice|short_text|long_text|numeric)\s+(required|optional)\s+(?:parent=(\d+):(\d+)\s+)?(.+)$`)

//HandleAddQuestionMessage handles a message containing an add question command
//command format: !addquestion <type> <required|optional> [parent=<questionID>:<optionNo>] <text> [| options]
func (b *GatekeeperBot) HandleAddQuestionMessage(msg *discordgo.MessageCreate) {
	var result BotResponse
	isFromAdmin, err := b.isFromAdmin(msg)
	if err != nil {
		result = ResponseInternalError{command: "!addquestion", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else if !isFromAdmin {
		result = ResponseNotAllowed{
			command:     "!addquestion",
			commandMsg:  msg.Content,
			description: "only admins may edit the questionnaire",
			timestamp:   time.Now(),
		}
	} else {
		result = b.addQuestion(msg)
	}
	b.respond(msg, result)
}

func (b *GatekeeperBot) addQuestion(msg *discordgo.MessageCreate) BotResponse {
	args := commandArgs(msg.Content, "addquestion")
	matches := regexHandleAddQuestion.FindStringSubmatch(args)
	if matches == nil {
		return ResponseSyntaxError{
			command:    "!addquestion",
			commandMsg: msg.Content,
			syntax:     handleAddQuestionSyntax,
			timestamp:  time.Now(),
		}
	}
	guild, _, err := b.memberForMessage(msg)
	if err != nil {
		return ResponseInternalError{command: "!addquestion", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	}

	params := vetting.QuestionParams{
		Type:     guildmodels.QuestionType(matches[1]),
		Required: matches[2] == "required",
	}
	if matches[3] != "" {
		parentID, _ := strconv.ParseUint(matches[3], 10, 32)
		optionNo, _ := strconv.Atoi(matches[4])
		parent, err := b.DBConnection.GetQuestion(uint(parentID))
		if err != nil {
			return responseFromEngineError("!addquestion", msg.Content, &vetting.NotFoundError{Entity: "question", ID: uint(parentID)})
		}
		if optionNo < 1 || optionNo > len(parent.Options) {
			return ResponseSyntaxError{
				command:     "!addquestion",
				commandMsg:  msg.Content,
				description: fmt.Sprintf("question %v has no option %v", parentID, optionNo),
				syntax:      handleAddQuestionSyntax,
				timestamp:   time.Now(),
			}
		}
		pq := uint(parentID)
		po := parent.Options[optionNo-1].ID
		params.ParentQuestionID = &pq
		params.ParentOptionID = &po
	}

	segments := strings.Split(matches[5], "|")
	params.Text = strings.TrimSpace(segments[0])
	for _, segment := range segments[1:] {
		optionText := strings.TrimSpace(segment)
		immediateReject := strings.HasSuffix(optionText, "*")
		params.Options = append(params.Options, vetting.OptionParams{
			Text:            strings.TrimSpace(strings.TrimSuffix(optionText, "*")),
			ImmediateReject: immediateReject,
		})
	}

	question, err := b.Builder.AddQuestion(guild.ID, params)
	if err != nil {
		return responseFromEngineError("!addquestion", msg.Content, err)
	}
	return ResponseSuccess{
		command:    "!addquestion",
		commandMsg: msg.Content,
		data: map[string]string{
			"Question ID": fmt.Sprintf("%d", question.ID),
			"Position":    fmt.Sprintf("%d", question.Order),
		},
		timestamp: time.Now(),
	}
}

const handleAddOptionSyntax = "`!addoption <questionID> <text>`\nA trailing `*` marks the option as immediately disqualifying."

//HandleAddOptionMessage handles a message containing an add option command
//command format: !addoption <questionID> <text>[*]
func (b *GatekeeperBot) HandleAddOptionMessage(msg *discordgo.MessageCreate) {
	var result BotResponse
	isFromAdmin, err := b.isFromAdmin(msg)
	if err != nil {
		result = ResponseInternalError{command: "!addoption", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else if !isFromAdmin {
		result = ResponseNotAllowed{
			command:     "!addoption",
			commandMsg:  msg.Content,
			description: "only admins may edit the questionnaire",
			timestamp:   time.Now(),
		}
	} else if questionID, text, ok := splitIDAndRest(commandArgs(msg.Content, "addoption")); !ok || text == "" {
		result = ResponseSyntaxError{
			command:    "!addoption",
			commandMsg: msg.Content,
			syntax:     handleAddOptionSyntax,
			timestamp:  time.Now(),
		}
	} else {
		immediateReject := strings.HasSuffix(text, "*")
		option, err := b.Builder.AddOption(questionID, strings.TrimSpace(strings.TrimSuffix(text, "*")), immediateReject)
		if err != nil {
			result = responseFromEngineError("!addoption", msg.Content, err)
		} else {
			result = ResponseSuccess{
				command:    "!addoption",
				commandMsg: msg.Content,
				data: map[string]string{
					"Option ID": fmt.Sprintf("%d", option.ID),
				},
				timestamp: time.Now(),
			}
		}
	}
	b.respond(msg, result)
}

//HandleDeactivateQuestionMessage handles a message containing a deactivate
//question command. Deactivated questions vanish from future submissions but
//recorded answers stay readable.
//command format: !deactivatequestion <questionID>
func (b *GatekeeperBot) HandleDeactivateQuestionMessage(msg *discordgo.MessageCreate) {
	var result BotResponse
	isFromAdmin, err := b.isFromAdmin(msg)
	if err != nil {
		result = ResponseInternalError{command: "!deactivatequestion", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else if !isFromAdmin {
		result = ResponseNotAllowed{
			command:     "!deactivatequestion",
			commandMsg:  msg.Content,
			description: "only admins may edit the questionnaire",
			timestamp:   time.Now(),
		}
	} else if questionID, ok := parseID(commandArgs(msg.Content, "deactivatequestion")); !ok {
		result = ResponseSyntaxError{
			command:    "!deactivatequestion",
			commandMsg: msg.Content,
			syntax:     "`!deactivatequestion <questionID>`",
			timestamp:  time.Now(),
		}
	} else if err := b.Builder.DeactivateQuestion(questionID); err != nil {
		result = responseFromEngineError("!deactivatequestion", msg.Content, err)
	} else {
		result = ResponseSuccess{
			command:    "!deactivatequestion",
			commandMsg: msg.Content,
			timestamp:  time.Now(),
		}
	}
	b.respond(msg, result)
}

//HandleListQuestionsMessage handles a message containing a list questions command
//command format: !listquestions
func (b *GatekeeperBot) HandleListQuestionsMessage(msg *discordgo.MessageCreate) {
	var result BotResponse
	isFromAdmin, err := b.isFromAdmin(msg)
	if err != nil {
		result = ResponseInternalError{command: "!listquestions", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else if !isFromAdmin {
		result = ResponseNotAllowed{
			command:     "!listquestions",
			commandMsg:  msg.Content,
			description: "only admins may view the questionnaire configuration",
			timestamp:   time.Now(),
		}
	} else {
		guild, _, err := b.memberForMessage(msg)
		if err != nil {
			result = ResponseInternalError{command: "!listquestions", commandMsg: msg.Content, err: err, timestamp: time.Now()}
		} else if questions, err := b.Builder.ListQuestions(guild.ID); err != nil {
			result = responseFromEngineError("!listquestions", msg.Content, err)
		} else {
			result = ResponseSuccess{
				command:     "!listquestions",
				commandMsg:  msg.Content,
				description: fmt.Sprintf("%d questions configured", len(questions)),
				data:        questionSummaries(questions),
				timestamp:   time.Now(),
			}
		}
	}
	b.respond(msg, result)
}

func questionSummaries(questions []guildmodels.Question) map[string]string {
	summaries := make(map[string]string, len(questions))
	for _, q := range questions {
		var details []string
		details = append(details, string(q.QuestionType))
		if !q.Active {
			details = append(details, "inactive")
		}
		if q.Required {
			details = append(details, "required")
		}
		if q.Conditional() {
			details = append(details, fmt.Sprintf("shown after question %d option %d", *q.ParentQuestionID, *q.ParentOptionID))
		}
		for _, opt := range q.Options {
			label := opt.OptionText
			if opt.ImmediateReject {
				label += " (disqualifying)"
			}
			details = append(details, "option: "+label)
		}
		summaries[fmt.Sprintf("#%d [%d] %v", q.ID, q.Order, q.QuestionText)] = strings.Join(details, ", ")
	}
	return summaries
}
