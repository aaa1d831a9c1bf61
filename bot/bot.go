package bot

import (
	"net/url"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/lsmythe/gatekeeper/config"
	"github.com/lsmythe/gatekeeper/db"
	"github.com/lsmythe/gatekeeper/discord"
	"github.com/lsmythe/gatekeeper/guildmodels"
	"github.com/lsmythe/gatekeeper/vetting"
)

//GatekeeperBot represents an instance of the discord bot, containing
//handles to the various external connections and the vetting engines.
type GatekeeperBot struct {
	DiscordConnection *discord.EventSource
	DBConnection      *db.DBConnection
	Builder           *vetting.Builder
	Submissions       *vetting.SubmissionEngine
	Review            *vetting.ReviewEngine

	announcerStop chan struct{}
}

//Init creates a new GatekeeperBot instance
func Init(cfg *config.Config) (*GatekeeperBot, error) {
	var res GatekeeperBot
	//Start database connection
	conn, err := db.Init(cfg.DBPath)
	if err != nil {
		logrus.Errorf("Cannot start bot due to error initializing database connection: %v", err)
		return nil, err
	}
	res.DBConnection = conn
	res.Builder = vetting.NewBuilder(conn)
	res.Submissions = vetting.NewSubmissionEngine(conn)
	res.Review = vetting.NewReviewEngine(conn)

	//Start discord connection
	disc, err := discord.StartDiscordListener(cfg.DiscordToken, &res)
	if err != nil {
		logrus.Errorf("Cannot start bot due to error initializing discord connection: %v", err)
		conn.Close()
		return nil, err
	}
	res.DiscordConnection = disc

	//Start announcer loop
	res.announcerStop = make(chan struct{})
	go res.runAnnouncer(time.Duration(cfg.AnnouncerIntervalSecs) * time.Second)

	return &res, nil
}

//BotAddURL generates a URL that can be used to add the bot to a server
func (b *GatekeeperBot) BotAddURL() (*url.URL, error) {
	return b.DiscordConnection.BotAddURL()
}

//DiscordSession returns a handle to the underlying discord session
func (b *GatekeeperBot) DiscordSession() *discordgo.Session {
	return b.DiscordConnection.Session()
}

//Close cleanly terminates the bot instance
func (b *GatekeeperBot) Close() {
	logrus.Info("Terminating bot...")
	close(b.announcerStop)
	b.DiscordConnection.Close()
	b.DBConnection.Close()
}

//HandleGuildCreate registers a guild (and its default configuration) on
//first contact.
func (b *GatekeeperBot) HandleGuildCreate(g *discordgo.GuildCreate) {
	_, err := b.DBConnection.GetOrCreateGuild(g.ID, g.Name)
	if err != nil {
		logrus.Warnf("Failed to register guild %v on guild create due to error %v", g.ID, err)
	}
}

//HandleMemberJoin creates the member row for a newly-joined user so their
//vetting lifecycle is tracked from the moment they arrive.
func (b *GatekeeperBot) HandleMemberJoin(m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	guild, err := b.DBConnection.GetOrCreateGuild(m.GuildID, "")
	if err != nil {
		logrus.Warnf("Failed to look up guild %v on member join due to error %v", m.GuildID, err)
		return
	}
	member, err := b.DBConnection.GetOrCreateMember(guild.ID, m.User.ID, m.User.Username)
	if err != nil {
		logrus.Warnf("Failed to register member %v:%v due to error %v", m.GuildID, m.User.ID, err)
		return
	}
	logrus.Infof("Tracking member %v (%v) in guild %v with status %v", member.UserID, member.Username, m.GuildID, member.Status)
}

//memberForMessage resolves the guild and member rows for a message author,
//creating them if this is the first contact.
func (b *GatekeeperBot) memberForMessage(msg *discordgo.MessageCreate) (*guildmodels.Guild, *guildmodels.Member, error) {
	guild, err := b.DBConnection.GetOrCreateGuild(msg.GuildID, "")
	if err != nil {
		return nil, nil, err
	}
	member, err := b.DBConnection.GetOrCreateMember(guild.ID, msg.Author.ID, msg.Author.Username)
	if err != nil {
		return nil, nil, err
	}
	return guild, member, nil
}
