package bot

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/lsmythe/gatekeeper/guildmodels"
	"github.com/lsmythe/gatekeeper/vetting"
)

const moderatorQueueChannelType = "moderator_queue"

//HandleApplyMessage starts (or resumes) the sender's application and
//presents the next question.
//command format: !apply
func (b *GatekeeperBot) HandleApplyMessage(msg *discordgo.MessageCreate) {
	_, member, err := b.memberForMessage(msg)
	if err != nil {
		b.respond(msg, ResponseInternalError{command: "!apply", commandMsg: msg.Content, err: err, timestamp: time.Now()})
		return
	}
	submission, err := b.Submissions.StartSubmission(member.ID)
	if err != nil {
		var conflict *vetting.ConflictError
		//An outstanding in_progress application just resumes where it left off.
		if errors.As(err, &conflict) && conflict.State == string(guildmodels.StatusInProgress) && conflict.Entity == "submission" {
			b.presentNextQuestion(msg, conflict.ID)
			return
		}
		b.respond(msg, responseFromEngineError("!apply", msg.Content, err))
		return
	}
	b.presentNextQuestion(msg, submission.ID)
}

//HandleAnswerMessage records an answer to the sender's current question.
//command format: !answer <text>, !answer <number>, or !answer <option numbers>
func (b *GatekeeperBot) HandleAnswerMessage(msg *discordgo.MessageCreate) {
	args := commandArgs(msg.Content, "answer")
	submission, question, result := b.currentQuestion(msg, "!answer")
	if result != nil {
		b.respond(msg, result)
		return
	}
	value, ok := interpretAnswer(question, args)
	if !ok {
		b.respond(msg, ResponseSyntaxError{
			command:     "!answer",
			commandMsg:  msg.Content,
			description: fmt.Sprintf("that answer does not fit a %v question", question.QuestionType),
			syntax:      answerHint(question),
			timestamp:   time.Now(),
		})
		return
	}
	recorded, err := b.Submissions.RecordAnswer(submission.ID, question.ID, value)
	if err != nil {
		b.respond(msg, responseFromEngineError("!answer", msg.Content, err))
		return
	}
	if recorded.Rejected {
		b.respond(msg, ResponseNotPossible{
			command:     "!answer",
			commandMsg:  msg.Content,
			description: "Your application has been closed: " + recorded.RejectionReason,
			timestamp:   time.Now(),
		})
		return
	}
	b.presentNextQuestion(msg, submission.ID)
}

//HandleSubmitMessage closes the sender's completed application into the
//moderator review queue.
//command format: !submitapp
func (b *GatekeeperBot) HandleSubmitMessage(msg *discordgo.MessageCreate) {
	guild, member, err := b.memberForMessage(msg)
	if err != nil {
		b.respond(msg, ResponseInternalError{command: "!submitapp", commandMsg: msg.Content, err: err, timestamp: time.Now()})
		return
	}
	outstanding, err := b.DBConnection.OutstandingSubmission(member.ID)
	if err != nil {
		b.respond(msg, ResponseInternalError{command: "!submitapp", commandMsg: msg.Content, err: err, timestamp: time.Now()})
		return
	}
	if outstanding == nil {
		b.respond(msg, ResponseNotPossible{
			command:     "!submitapp",
			commandMsg:  msg.Content,
			description: "you have no application in progress; use `!apply` to start one",
			timestamp:   time.Now(),
		})
		return
	}
	submission, err := b.Submissions.Submit(outstanding.ID)
	if err != nil {
		b.respond(msg, responseFromEngineError("!submitapp", msg.Content, err))
		return
	}
	b.notifyModerators(guild, submission)
	b.respond(msg, ResponseSuccess{
		command:     "!submitapp",
		commandMsg:  msg.Content,
		description: "Thank you for completing your application! Our moderation team will review it shortly.",
		timestamp:   time.Now(),
	})
}

//presentNextQuestion looks up and presents the next applicable question on
//a submission, or prompts for !submitapp when the questionnaire is done.
func (b *GatekeeperBot) presentNextQuestion(msg *discordgo.MessageCreate, submissionID uint) {
	next, err := b.Submissions.NextQuestion(submissionID)
	if err != nil {
		b.respond(msg, responseFromEngineError("!apply", msg.Content, err))
		return
	}
	if next == nil {
		b.respond(msg, ResponseSuccess{
			command:     "!apply",
			commandMsg:  msg.Content,
			description: "All questions answered! Use `!submitapp` to send your application for review.",
			timestamp:   time.Now(),
		})
		return
	}
	labels := make([]string, 0, len(next.Options))
	for _, opt := range next.Options {
		labels = append(labels, opt.OptionText)
	}
	b.respond(msg, ResponseQuestion{
		prompt:    next.QuestionText,
		options:   labels,
		hint:      answerHint(next),
		timestamp: time.Now(),
	})
}

//currentQuestion resolves the sender's in-flight submission and the
//question they are being asked. The third return value is non-nil when a
//response should be sent instead.
func (b *GatekeeperBot) currentQuestion(msg *discordgo.MessageCreate, command string) (*guildmodels.Submission, *guildmodels.Question, BotResponse) {
	_, member, err := b.memberForMessage(msg)
	if err != nil {
		return nil, nil, ResponseInternalError{command: command, commandMsg: msg.Content, err: err, timestamp: time.Now()}
	}
	outstanding, err := b.DBConnection.OutstandingSubmission(member.ID)
	if err != nil {
		return nil, nil, ResponseInternalError{command: command, commandMsg: msg.Content, err: err, timestamp: time.Now()}
	}
	if outstanding == nil {
		return nil, nil, ResponseNotPossible{
			command:     command,
			commandMsg:  msg.Content,
			description: "you have no application in progress; use `!apply` to start one",
			timestamp:   time.Now(),
		}
	}
	question, err := b.Submissions.NextQuestion(outstanding.ID)
	if err != nil {
		return nil, nil, responseFromEngineError(command, msg.Content, err)
	}
	if question == nil {
		return nil, nil, ResponseNotPossible{
			command:     command,
			commandMsg:  msg.Content,
			description: "all questions are answered; use `!submitapp` to finish",
			timestamp:   time.Now(),
		}
	}
	return outstanding, question, nil
}

//notifyModerators posts a submitted application to the guild's registered
//moderator queue channel, if one is configured.
func (b *GatekeeperBot) notifyModerators(guild *guildmodels.Guild, submission *guildmodels.Submission) {
	channelID, err := b.DBConnection.LookupChannel(guild.ID, moderatorQueueChannelType)
	if err != nil || channelID == "" {
		if channelID == "" {
			logrus.Warnf("No moderator queue channel configured for guild %v", guild.DiscordID)
		}
		return
	}
	content := fmt.Sprintf("New application `#%d` from <@%v> is ready for review. Use `!approve %d`, `!reject %d <reason>` or `!actions %d`.",
		submission.ID, submission.Member.UserID, submission.ID, submission.ID, submission.ID)
	if _, err := b.DiscordSession().ChannelMessageSend(channelID, content); err != nil {
		logrus.Warnf("Failed to post submission %v to moderator queue due to error %v", submission.ID, err)
	}
}

//interpretAnswer parses the raw argument text into the value shape the
//question expects.
func interpretAnswer(question *guildmodels.Question, args string) (vetting.AnswerValue, bool) {
	switch question.QuestionType {
	case guildmodels.QuestionSingleChoice, guildmodels.QuestionMultiChoice:
		ids, ok := parseSelections(args, question)
		if !ok {
			return vetting.AnswerValue{}, false
		}
		return vetting.AnswerValue{OptionIDs: ids}, true
	case guildmodels.QuestionNumeric:
		n, err := strconv.ParseInt(args, 10, 64)
		if err != nil {
			return vetting.AnswerValue{}, false
		}
		return vetting.AnswerValue{Number: &n}, true
	default:
		return vetting.AnswerValue{Text: &args}, true
	}
}

func answerHint(question *guildmodels.Question) string {
	switch question.QuestionType {
	case guildmodels.QuestionSingleChoice:
		return "Answer with `!answer <option number>`"
	case guildmodels.QuestionMultiChoice:
		return "Answer with `!answer <option numbers>`, e.g. `!answer 1 3`"
	case guildmodels.QuestionNumeric:
		return "Answer with `!answer <number>`"
	default:
		return "Answer with `!answer <your text>`"
	}
}
