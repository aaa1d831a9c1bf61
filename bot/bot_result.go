package bot

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/lsmythe/gatekeeper/vetting"
)

const (
	successMessageColour int = 0x28bd00
	infoMessageColour    int = 0x0077bd
	errorMessageColour   int = 0xbd1b00
)

//BotResponse represents the result of a command which can be both
//communicated over discord and written to the log.
type BotResponse interface {
	DiscordResponse() *discordgo.MessageSend
	WriteToLog()
}

//embedResponse builds the MessageSend shared by every response type.
func embedResponse(title, description string, colour int, timestamp time.Time, fields map[string]string) *discordgo.MessageSend {
	embed := discordgo.MessageEmbed{
		Title:       title,
		Type:        discordgo.EmbedTypeRich,
		Description: description,
		Timestamp:   timestamp.Format(time.RFC3339),
		Color:       colour,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Log ID: %d", timestamp.UnixNano()),
		},
		Fields: stringMapToFields(fields),
	}
	return &discordgo.MessageSend{
		Embed: &embed,
		TTS:   false,
		Files: []*discordgo.File{},
	}
}

//ResponseSuccess will be returned when a command has been successfully completed
type ResponseSuccess struct {
	//The base command name
	command string
	//The entire text contents of the message
	commandMsg string
	//A human-readable description of the outcome
	description string
	//A map containing fields which should be included in the embed
	data map[string]string
	//The time the success was logged at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseSuccess) DiscordResponse() *discordgo.MessageSend {
	description := r.description
	if description == "" {
		description = fmt.Sprintf("Completed %v command successfully!", r.command)
	}
	return embedResponse("Success! \\o/", description, successMessageColour, r.timestamp, r.data)
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseSuccess) WriteToLog() {
	logrus.Infof("%v Completed command %v successfully.", logLineLabel(r.timestamp), r.commandMsg)
}

//ResponseQuestion presents the next questionnaire item to an applicant.
type ResponseQuestion struct {
	//The question text to present
	prompt string
	//Option labels in presentation order, empty for text and numeric questions
	options []string
	//Footer hint describing how to answer
	hint string
	//The time the question was presented at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseQuestion) DiscordResponse() *discordgo.MessageSend {
	description := r.prompt
	for i, option := range r.options {
		description += fmt.Sprintf("\n`%d.` %v", i+1, option)
	}
	resp := embedResponse("Application Question", description, infoMessageColour, r.timestamp, nil)
	resp.Embed.Footer.Text = r.hint
	return resp
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseQuestion) WriteToLog() {
	logrus.Debugf("%v Presented question `%v`", logLineLabel(r.timestamp), r.prompt)
}

//ResponseSyntaxError will be returned when there was an issue with the user's input
type ResponseSyntaxError struct {
	//The base command name
	command string
	//The entire text contents of the message
	commandMsg string
	//A human-readable description of the issue
	description string
	//A description of the correct syntax
	syntax string
	//The time the error was logged at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseSyntaxError) DiscordResponse() *discordgo.MessageSend {
	description := fmt.Sprintf("Sorry, but there was a problem with the data you supplied for the %v command: \n%v", r.command, r.description)
	fields := map[string]string{
		"Your command": r.commandMsg,
	}
	if r.syntax != "" {
		fields["Correct syntax"] = r.syntax
	}
	return embedResponse("Uh-oh, there was something wrong with that command", description, errorMessageColour, r.timestamp, fields)
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseSyntaxError) WriteToLog() {
	logrus.Infof("%v Syntax error in command %v: %v", logLineLabel(r.timestamp), r.commandMsg, r.description)
}

//ResponseNotPossible will be returned when a command was well-formed but is
//not valid in the current state (duplicate application, resolved
//submission, and so on).
type ResponseNotPossible struct {
	//The base command name
	command string
	//The entire text contents of the message
	commandMsg string
	//A human-readable description of the issue
	description string
	//The time the error was logged at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseNotPossible) DiscordResponse() *discordgo.MessageSend {
	description := fmt.Sprintf("Sorry, the %v command can't be done right now: \n%v", r.command, r.description)
	return embedResponse("That didn't work", description, errorMessageColour, r.timestamp, nil)
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseNotPossible) WriteToLog() {
	logrus.Infof("%v Refused command %v: %v", logLineLabel(r.timestamp), r.commandMsg, r.description)
}

//ResponseInternalError will be returned when there was some kind of error
//within the bot or when communicating with APIs
type ResponseInternalError struct {
	//The base command name
	command string
	//The entire text contents of the message
	commandMsg string
	//The underlying error
	err error
	//The time the error was logged at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseInternalError) DiscordResponse() *discordgo.MessageSend {
	description := fmt.Sprintf("Oops! I encountered an unexpected error whilst running your %v command. Please try again later or file a bug report.", r.command)
	return embedResponse("Oops, something went wrong ;w;", description, errorMessageColour, r.timestamp, nil)
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseInternalError) WriteToLog() {
	logrus.Errorf("%v Internal error whilst executing command %v: %v", logLineLabel(r.timestamp), r.commandMsg, r.err)
}

//ResponseNotAllowed will be returned when a user tried to run a command
//that they do not have the correct role for
type ResponseNotAllowed struct {
	//The base command name
	command string
	//The entire text contents of the message
	commandMsg string
	//A human-readable description of the issue
	description string
	//The time the error was logged at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseNotAllowed) DiscordResponse() *discordgo.MessageSend {
	fields := map[string]string{
		"Reason":  r.description,
		"Command": r.commandMsg,
	}
	return embedResponse("That's illegal m8", "I'm sorry Dave, I can't let you do that...", errorMessageColour, r.timestamp, fields)
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseNotAllowed) WriteToLog() {
	logrus.Infof("%v Rejected command `%v` as the sender did not have the correct priveliges | description: %v", logLineLabel(r.timestamp), r.commandMsg, r.description)
}

//responseFromEngineError maps an engine error onto the matching response
//type so every command handler reports validation, conflict and not-found
//failures the same way.
func responseFromEngineError(command, commandMsg string, err error) BotResponse {
	now := time.Now()
	switch {
	case errors.Is(err, vetting.ErrValidation):
		return ResponseSyntaxError{
			command:     command,
			commandMsg:  commandMsg,
			description: err.Error(),
			timestamp:   now,
		}
	case errors.Is(err, vetting.ErrConflict), errors.Is(err, vetting.ErrNotFound):
		return ResponseNotPossible{
			command:     command,
			commandMsg:  commandMsg,
			description: err.Error(),
			timestamp:   now,
		}
	default:
		return ResponseInternalError{
			command:    command,
			commandMsg: commandMsg,
			err:        err,
			timestamp:  now,
		}
	}
}

/////////////////////
//Utility Functions//
/////////////////////

func logLineLabel(t time.Time) string {
	return fmt.Sprintf("#%v# | ", t.UnixNano())
}

func stringMapToFields(fields map[string]string) []*discordgo.MessageEmbedField {
	var res []*discordgo.MessageEmbedField
	for fieldName, content := range fields {
		field := discordgo.MessageEmbedField{
			Name:   fieldName,
			Value:  content,
			Inline: false,
		}
		res = append(res, &field)
	}
	return res
}
