package bot

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

const handleAnnounceSyntax = "`!announce <delay> <text>` where <delay> is a Go duration such as 30m or 2h"

//HandleAnnounceMessage schedules an announcement in the current channel.
//command format: !announce <delay> <text>
func (b *GatekeeperBot) HandleAnnounceMessage(msg *discordgo.MessageCreate) {
	var result BotResponse
	isFromAdmin, err := b.isFromAdmin(msg)
	if err != nil {
		result = ResponseInternalError{command: "!announce", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	} else if !isFromAdmin {
		result = ResponseNotAllowed{
			command:     "!announce",
			commandMsg:  msg.Content,
			description: "only admins may schedule announcements",
			timestamp:   time.Now(),
		}
	} else {
		result = b.scheduleAnnouncement(msg)
	}
	b.respond(msg, result)
}

func (b *GatekeeperBot) scheduleAnnouncement(msg *discordgo.MessageCreate) BotResponse {
	args := commandArgs(msg.Content, "announce")
	parts := strings.SplitN(args, " ", 2)
	var delay time.Duration
	var content string
	var err error
	if len(parts) == 2 {
		delay, err = time.ParseDuration(parts[0])
		content = strings.TrimSpace(parts[1])
	}
	if len(parts) != 2 || err != nil || content == "" {
		return ResponseSyntaxError{
			command:    "!announce",
			commandMsg: msg.Content,
			syntax:     handleAnnounceSyntax,
			timestamp:  time.Now(),
		}
	}
	guild, _, err := b.memberForMessage(msg)
	if err != nil {
		return ResponseInternalError{command: "!announce", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	}
	conf, err := b.DBConnection.GetConfiguration(guild.ID)
	if err == nil && !conf.AnnouncementEnabled {
		return ResponseNotPossible{
			command:     "!announce",
			commandMsg:  msg.Content,
			description: "announcements are disabled for this guild",
			timestamp:   time.Now(),
		}
	}
	scheduledFor := time.Now().UTC().Add(delay)
	announcement := guildmodels.Announcement{
		GuildID:      guild.ID,
		AuthorID:     msg.Author.ID,
		ChannelID:    msg.ChannelID,
		Content:      content,
		ScheduledFor: &scheduledFor,
	}
	if err := b.DBConnection.CreateAnnouncement(&announcement); err != nil {
		return ResponseInternalError{command: "!announce", commandMsg: msg.Content, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:    "!announce",
		commandMsg: msg.Content,
		data: map[string]string{
			"Scheduled for": scheduledFor.Format(time.RFC822),
		},
		timestamp: time.Now(),
	}
}

//runAnnouncer polls for due announcements and posts them until the bot is
//closed. Marking a row posted before sending keeps a slow send from being
//delivered twice by the next tick.
func (b *GatekeeperBot) runAnnouncer(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.announcerStop:
			return
		case now := <-ticker.C:
			b.postDueAnnouncements(now.UTC())
		}
	}
}

func (b *GatekeeperBot) postDueAnnouncements(now time.Time) {
	due, err := b.DBConnection.DueAnnouncements(now)
	if err != nil {
		return
	}
	for _, announcement := range due {
		claimed, err := b.DBConnection.MarkAnnouncementPosted(announcement.ID, now)
		if err != nil || !claimed {
			continue
		}
		if _, err := b.DiscordSession().ChannelMessageSend(announcement.ChannelID, announcement.Content); err != nil {
			logrus.Warnf("Failed to post announcement %v due to error %v", announcement.ID, err)
		} else {
			logrus.Infof("Posted announcement %v to channel %v", announcement.ID, announcement.ChannelID)
		}
	}
}
