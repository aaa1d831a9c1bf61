package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

//HandleMessage is called upon every recieved message. It checks if the
//message is a command, and executes it.
func (b *GatekeeperBot) HandleMessage(msg *discordgo.MessageCreate) {
	if msg.Content == "" || msg.Content[0] != '!' {
		return
	}
	words := strings.SplitN(msg.Content, " ", 2)
	command := strings.TrimLeft(words[0], "!")
	switch command {
	//Applicant commands
	case "apply":
		b.HandleApplyMessage(msg)
	case "answer":
		b.HandleAnswerMessage(msg)
	case "submitapp":
		b.HandleSubmitMessage(msg)
	//Questionnaire admin commands
	case "addquestion":
		b.HandleAddQuestionMessage(msg)
	case "addoption":
		b.HandleAddOptionMessage(msg)
	case "deactivatequestion":
		b.HandleDeactivateQuestionMessage(msg)
	case "listquestions":
		b.HandleListQuestionsMessage(msg)
	//Moderator commands
	case "queue":
		b.HandleQueueMessage(msg)
	case "approve":
		b.HandleApproveMessage(msg)
	case "reject":
		b.HandleRejectMessage(msg)
	case "banapplicant":
		b.HandleBanMessage(msg)
	case "unban":
		b.HandleUnbanMessage(msg)
	case "flagapp":
		b.HandleFlagMessage(msg)
	case "actions":
		b.HandleActionsMessage(msg)
	case "announce":
		b.HandleAnnounceMessage(msg)
	//Game roster commands
	case "addgame":
		b.HandleAddGameMessage(msg)
	case "games":
		b.HandleGamesMessage(msg)
	case "character":
		b.HandleCharacterMessage(msg)
	}
}

//respond sends a command result back as a reply to the triggering message
//and writes it to the log.
func (b *GatekeeperBot) respond(msg *discordgo.MessageCreate, result BotResponse) {
	result.WriteToLog()
	resp := result.DiscordResponse()
	resp.Reference = &discordgo.MessageReference{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
	}
	if _, err := b.DiscordSession().ChannelMessageSendComplex(msg.ChannelID, resp); err != nil {
		logrusSendError(err)
	}
}
