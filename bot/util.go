package bot

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

func logrusSendError(err error) {
	logrus.Errorf("Failed to send response to command due to error %v", err)
}

//isFromTier reports whether the message sender holds a role registered at
//the given tier (or is the guild owner, who can always administer the bot).
func (b *GatekeeperBot) isFromTier(msg *discordgo.MessageCreate, tier guildmodels.RoleTier) (bool, error) {
	discordGuild, err := b.DiscordSession().Guild(msg.GuildID)
	if err != nil {
		logrus.Warnf("Failed to fetch guild %v due to error %v", msg.GuildID, err)
		return false, err
	}
	if discordGuild.OwnerID == msg.Author.ID {
		return true, nil
	}
	if msg.Member == nil {
		return false, nil
	}
	guild, err := b.DBConnection.GetOrCreateGuild(msg.GuildID, discordGuild.Name)
	if err != nil {
		return false, err
	}
	tierRoles, err := b.DBConnection.RolesForTier(guild.ID, tier)
	if err != nil {
		return false, err
	}
	for _, held := range msg.Member.Roles {
		for _, wanted := range tierRoles {
			if held == wanted {
				return true, nil
			}
		}
	}
	return false, nil
}

func (b *GatekeeperBot) isFromAdmin(msg *discordgo.MessageCreate) (bool, error) {
	return b.isFromTier(msg, guildmodels.TierAdmin)
}

//isFromModerator accepts both moderator- and admin-tier senders.
func (b *GatekeeperBot) isFromModerator(msg *discordgo.MessageCreate) (bool, error) {
	isMod, err := b.isFromTier(msg, guildmodels.TierModerator)
	if err != nil || isMod {
		return isMod, err
	}
	return b.isFromTier(msg, guildmodels.TierAdmin)
}

//commandArgs strips the command word from a message and returns the rest.
func commandArgs(content, command string) string {
	rest := strings.TrimPrefix(content, "!"+command)
	return strings.TrimSpace(rest)
}

//parseID interprets a command argument as a row id.
func parseID(arg string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

//splitIDAndRest splits "123 some reason text" into the id and the rest.
func splitIDAndRest(args string) (uint, string, bool) {
	parts := strings.SplitN(args, " ", 2)
	id, ok := parseID(parts[0])
	if !ok {
		return 0, "", false
	}
	rest := ""
	if len(parts) == 2 {
		rest = strings.TrimSpace(parts[1])
	}
	return id, rest, true
}

//parseSelections interprets "1 3 4" as one-based option positions against a
//question's options and returns the matching option ids.
func parseSelections(args string, question *guildmodels.Question) ([]uint, bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, false
	}
	ids := make([]uint, 0, len(fields))
	for _, field := range fields {
		pos, err := strconv.Atoi(field)
		if err != nil || pos < 1 || pos > len(question.Options) {
			return nil, false
		}
		ids = append(ids, question.Options[pos-1].ID)
	}
	return ids, true
}
