package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

//HandleQueueMessage lists the guild's pending applications.
//command format: !queue
func (b *GatekeeperBot) HandleQueueMessage(msg *discordgo.MessageCreate) {
	var result BotResponse
	isFromModerator, err := b.isFromModerator(msg)
	if err != nil {
		result = ResponseInternalError{command: "!queue", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else if !isFromModerator {
		result = notModerator("!queue", msg)
	} else {
		guild, _, err := b.memberForMessage(msg)
		if err != nil {
			result = ResponseInternalError{command: "!queue", commandMsg: msg.Content, err: err, timestamp: time.Now()}
		} else if pending, err := b.DBConnection.PendingSubmissions(guild.ID); err != nil {
			result = ResponseInternalError{command: "!queue", commandMsg: msg.Content, err: err, timestamp: time.Now()}
		} else {
			data := make(map[string]string, len(pending))
			for _, submission := range pending {
				entry := "submitted at unknown time"
				if submission.SubmittedAt != nil {
					entry = "submitted " + submission.SubmittedAt.Format(time.RFC822)
				}
				if submission.Flagged {
					entry += " | FLAGGED: " + submission.FlagReason
				}
				data[fmt.Sprintf("#%d <@%v>", submission.ID, submission.Member.UserID)] = entry
			}
			result = ResponseSuccess{
				command:     "!queue",
				commandMsg:  msg.Content,
				description: fmt.Sprintf("%d applications awaiting review", len(pending)),
				data:        data,
				timestamp:   time.Now(),
			}
		}
	}
	b.respond(msg, result)
}

//HandleApproveMessage approves a pending application.
//command format: !approve <submissionID> [note]
func (b *GatekeeperBot) HandleApproveMessage(msg *discordgo.MessageCreate) {
	b.handleReviewAction(msg, "!approve", guildmodels.ActionApprove, false)
}

//HandleRejectMessage rejects a pending application.
//command format: !reject <submissionID> <reason>
func (b *GatekeeperBot) HandleRejectMessage(msg *discordgo.MessageCreate) {
	b.handleReviewAction(msg, "!reject", guildmodels.ActionReject, false)
}

//HandleBanMessage rejects an application and blacklists the applicant.
//command format: !banapplicant <submissionID> <reason>
func (b *GatekeeperBot) HandleBanMessage(msg *discordgo.MessageCreate) {
	b.handleReviewAction(msg, "!banapplicant", guildmodels.ActionBan, true)
}

//HandleUnbanMessage clears an applicant's blacklist entry. The submission
//the ban was recorded against is left as it ended up.
//command format: !unban <submissionID> [note]
func (b *GatekeeperBot) HandleUnbanMessage(msg *discordgo.MessageCreate) {
	b.handleReviewAction(msg, "!unban", guildmodels.ActionUnban, false)
}

func (b *GatekeeperBot) handleReviewAction(msg *discordgo.MessageCreate, command string, actionType guildmodels.ActionType, ban bool) {
	var result BotResponse
	isFromModerator, err := b.isFromModerator(msg)
	if err != nil {
		result = ResponseInternalError{command: command, commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else if !isFromModerator {
		result = notModerator(command, msg)
	} else if submissionID, reason, ok := splitIDAndRest(commandArgs(msg.Content, command[1:])); !ok {
		result = ResponseSyntaxError{
			command:    command,
			commandMsg: msg.Content,
			syntax:     fmt.Sprintf("`%v <submissionID> [reason]`", command),
			timestamp:  time.Now(),
		}
	} else if action, err := b.Review.RecordAction(submissionID, msg.Author.ID, actionType, reason, ban); err != nil {
		result = responseFromEngineError(command, msg.Content, err)
	} else {
		result = ResponseSuccess{
			command:    command,
			commandMsg: msg.Content,
			data: map[string]string{
				"Action":     string(action.ActionType),
				"Submission": fmt.Sprintf("#%d", submissionID),
				"Applicant":  fmt.Sprintf("<@%v>", action.TargetUserID),
			},
			timestamp: time.Now(),
		}
	}
	b.respond(msg, result)
}

//HandleFlagMessage flags an application for closer review. Guilds with
//auto-ban-on-flag configured will also ban the applicant.
//command format: !flagapp <submissionID> <reason>
func (b *GatekeeperBot) HandleFlagMessage(msg *discordgo.MessageCreate) {
	var result BotResponse
	isFromModerator, err := b.isFromModerator(msg)
	if err != nil {
		result = ResponseInternalError{command: "!flagapp", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else if !isFromModerator {
		result = notModerator("!flagapp", msg)
	} else if submissionID, reason, ok := splitIDAndRest(commandArgs(msg.Content, "flagapp")); !ok || reason == "" {
		result = ResponseSyntaxError{
			command:    "!flagapp",
			commandMsg: msg.Content,
			syntax:     "`!flagapp <submissionID> <reason>`",
			timestamp:  time.Now(),
		}
	} else if err := b.Review.Flag(submissionID, msg.Author.ID, reason); err != nil {
		result = responseFromEngineError("!flagapp", msg.Content, err)
	} else {
		result = ResponseSuccess{
			command:    "!flagapp",
			commandMsg: msg.Content,
			timestamp:  time.Now(),
		}
	}
	b.respond(msg, result)
}

//HandleActionsMessage lists the audit trail for a submission in
//chronological order.
//command format: !actions <submissionID>
func (b *GatekeeperBot) HandleActionsMessage(msg *discordgo.MessageCreate) {
	var result BotResponse
	isFromModerator, err := b.isFromModerator(msg)
	if err != nil {
		result = ResponseInternalError{command: "!actions", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else if !isFromModerator {
		result = notModerator("!actions", msg)
	} else if submissionID, ok := parseID(commandArgs(msg.Content, "actions")); !ok {
		result = ResponseSyntaxError{
			command:    "!actions",
			commandMsg: msg.Content,
			syntax:     "`!actions <submissionID>`",
			timestamp:  time.Now(),
		}
	} else if actions, err := b.Review.ListActions(submissionID); err != nil {
		result = responseFromEngineError("!actions", msg.Content, err)
	} else {
		data := make(map[string]string, len(actions))
		for _, action := range actions {
			entry := fmt.Sprintf("by <@%v>", action.ModeratorID)
			if action.Reason != "" {
				entry += ": " + action.Reason
			}
			data[fmt.Sprintf("%v | %v", action.Timestamp.Format(time.RFC822), action.ActionType)] = entry
		}
		result = ResponseSuccess{
			command:     "!actions",
			commandMsg:  msg.Content,
			description: fmt.Sprintf("%d actions recorded on submission #%d", len(actions), submissionID),
			data:        data,
			timestamp:   time.Now(),
		}
	}
	b.respond(msg, result)
}

func notModerator(command string, msg *discordgo.MessageCreate) BotResponse {
	return ResponseNotAllowed{
		command:     command,
		commandMsg:  msg.Content,
		description: "only moderators may review applications",
		timestamp:   time.Now(),
	}
}
