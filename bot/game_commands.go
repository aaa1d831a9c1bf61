package bot

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

//HandleAddGameMessage registers a new game community in the guild.
//command format: !addgame <name>
func (b *GatekeeperBot) HandleAddGameMessage(msg *discordgo.MessageCreate) {
	var result BotResponse
	isFromAdmin, err := b.isFromAdmin(msg)
	if err != nil {
		result = ResponseInternalError{command: "!addgame", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else if !isFromAdmin {
		result = ResponseNotAllowed{
			command:     "!addgame",
			commandMsg:  msg.Content,
			description: "only admins may register games",
			timestamp:   time.Now(),
		}
	} else if name := commandArgs(msg.Content, "addgame"); name == "" {
		result = ResponseSyntaxError{
			command:    "!addgame",
			commandMsg: msg.Content,
			syntax:     "`!addgame <name>`",
			timestamp:  time.Now(),
		}
	} else {
		guild, _, err := b.memberForMessage(msg)
		if err != nil {
			result = ResponseInternalError{command: "!addgame", commandMsg: msg.Content, err: err, timestamp: time.Now()}
		} else {
			game := guildmodels.Game{GuildID: guild.ID, Name: name, Enabled: true}
			if err := b.DBConnection.CreateGame(&game); err != nil {
				result = ResponseInternalError{command: "!addgame", commandMsg: msg.Content, err: err, timestamp: time.Now()}
			} else {
				result = ResponseSuccess{
					command:    "!addgame",
					commandMsg: msg.Content,
					data: map[string]string{
						"Game ID": fmt.Sprintf("%d", game.ID),
						"Name":    game.Name,
					},
					timestamp: time.Now(),
				}
			}
		}
	}
	b.respond(msg, result)
}

//HandleGamesMessage lists the games registered in the guild.
//command format: !games
func (b *GatekeeperBot) HandleGamesMessage(msg *discordgo.MessageCreate) {
	var result BotResponse
	guild, _, err := b.memberForMessage(msg)
	if err != nil {
		result = ResponseInternalError{command: "!games", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else if games, err := b.DBConnection.ListGames(guild.ID); err != nil {
		result = ResponseInternalError{command: "!games", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else {
		data := make(map[string]string, len(games))
		for _, game := range games {
			data[game.Name] = fmt.Sprintf("register a character with `!character %d <name>`", game.ID)
		}
		result = ResponseSuccess{
			command:     "!games",
			commandMsg:  msg.Content,
			description: fmt.Sprintf("%d games registered in this server", len(games)),
			data:        data,
			timestamp:   time.Now(),
		}
	}
	b.respond(msg, result)
}

//HandleCharacterMessage records a character profile for the sender.
//command format: !character <gameID> <name>
func (b *GatekeeperBot) HandleCharacterMessage(msg *discordgo.MessageCreate) {
	var result BotResponse
	gameID, name, ok := splitIDAndRest(commandArgs(msg.Content, "character"))
	if !ok || name == "" {
		result = ResponseSyntaxError{
			command:    "!character",
			commandMsg: msg.Content,
			syntax:     "`!character <gameID> <name>`",
			timestamp:  time.Now(),
		}
	} else {
		guild, member, err := b.memberForMessage(msg)
		if err != nil {
			result = ResponseInternalError{command: "!character", commandMsg: msg.Content, err: err, timestamp: time.Now()}
		} else if game, err := b.DBConnection.GetGame(gameID); errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && game.GuildID != guild.ID) {
			result = ResponseNotPossible{
				command:     "!character",
				commandMsg:  msg.Content,
				description: fmt.Sprintf("no game %v is registered in this server; see `!games`", gameID),
				timestamp:   time.Now(),
			}
		} else if err != nil {
			result = ResponseInternalError{command: "!character", commandMsg: msg.Content, err: err, timestamp: time.Now()}
		} else {
			character := guildmodels.Character{MemberID: member.ID, GameID: gameID, Name: name}
			if err := b.DBConnection.CreateCharacter(&character); err != nil {
				result = ResponseInternalError{command: "!character", commandMsg: msg.Content, err: err, timestamp: time.Now()}
			} else {
				result = ResponseSuccess{
					command:    "!character",
					commandMsg: msg.Content,
					data: map[string]string{
						"Character": character.Name,
						"Game":      game.Name,
					},
					timestamp: time.Now(),
				}
			}
		}
	}
	b.respond(msg, result)
}
