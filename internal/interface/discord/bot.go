// Package discord adapts the profile services to Discord slash commands,
// buttons and modals.
package discord

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/internal/application"
	"github.com/oksasatya/cipher/internal/editor"
	"github.com/oksasatya/cipher/internal/interface/middleware"
)

// sessionOutcomes counts finished edit sessions by reason; served on
// /debug/vars.
var sessionOutcomes = expvar.NewMap("edit_sessions")

type Deps struct {
	Profiles *application.ProfileService
	Staff    *application.StaffService
	// Cooldown may be nil to disable the edit cooldown.
	Cooldown *middleware.Cooldown
	Logger   logrus.FieldLogger
	// GuildIDs to register commands in; empty registers them globally.
	GuildIDs []string
	About    About
}

// About is what /about shows.
type About struct {
	Title         string
	Description   string
	SourceCodeURL string
}

type Bot struct {
	session   *discordgo.Session
	api       interactionAPI
	profiles  *application.ProfileService
	staff     *application.StaffService
	cooldown  *middleware.Cooldown
	collector *Collector
	logger    logrus.FieldLogger
	guildIDs  []string
	about     About
	// self is the bot user, known once the gateway is ready.
	self atomic.Pointer[discordgo.User]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a bot for token. Call Open to connect.
func New(token string, deps Deps) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	b := newBot(s, deps)
	b.session = s
	s.AddHandler(b.onReady)
	s.AddHandler(b.onInteraction)
	return b, nil
}

func newBot(api interactionAPI, deps Deps) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		api:       api,
		profiles:  deps.Profiles,
		staff:     deps.Staff,
		cooldown:  deps.Cooldown,
		collector: NewCollector(),
		logger:    logger,
		guildIDs:  deps.GuildIDs,
		about:     deps.About,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (b *Bot) Open() error {
	return b.session.Open()
}

// Close cancels running edit sessions, waits for them to render their
// outcome for up to 10 seconds and disconnects.
func (b *Bot) Close() error {
	b.cancel()
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		b.logger.Warn("edit sessions still running at shutdown")
	}
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.WithField("user", r.User.Username).Info("discord session ready")
	b.self.Store(r.User)
	guilds := b.guildIDs
	if len(guilds) == 0 {
		guilds = []string{""}
	}
	for _, guild := range guilds {
		log := b.logger.WithField("guild_id", guild)
		if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, guild, Commands()); err != nil {
			log.WithError(err).Warn("failed to register commands")
			continue
		}
		log.Info("registered commands")
	}
}

func (b *Bot) onInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	b.handle(ic.Interaction)
}

// handle runs on the gateway's handler goroutine. Edit sessions block here
// until they finish.
func (b *Bot) handle(i *discordgo.Interaction) {
	b.wg.Add(1)
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithField("panic", r).Error("panic while handling interaction")
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.runApplicationCommand(b.ctx, i)
	case discordgo.InteractionMessageComponent, discordgo.InteractionModalSubmit:
		if !b.collector.Dispatch(i) {
			b.replyText(i, noticeInactive)
		}
	}
}

func (b *Bot) runApplicationCommand(ctx context.Context, i *discordgo.Interaction) {
	name := i.ApplicationCommandData().Name
	log := b.logger.WithFields(logrus.Fields{"command": name, "discord_user_id": interactionUserID(i)})

	var err error
	switch name {
	case commandName:
		b.runCommand(ctx, i)
		return
	case showMenuName:
		err = b.showTarget(ctx, i)
	case aboutName:
		err = b.respond(i, b.ephemeralOption(i), aboutEmbed(b.about, b.self.Load()))
	case pingName:
		err = b.respond(i, false, pingEmbed())
	default:
		log.Warn("unknown command")
		return
	}
	if err != nil {
		b.replyError(i, log, err)
	}
}

func (b *Bot) runCommand(ctx context.Context, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	path, opts := commandPath(data)
	command := commandName + " " + path
	actor := newMember(interactionUser(i), i.Member)
	subject := b.subject(i, data, opts, actor)
	log := b.logger.WithFields(logrus.Fields{"command": command, "discord_user_id": actor.ID})

	var err error
	switch path {
	case "show":
		err = b.show(ctx, i, subject)
	case "history":
		err = b.history(ctx, i, subject)
	case "set-active":
		err = b.setActive(ctx, i, command, actor, subject, opts)
	case "edit":
		err = b.edit(ctx, i, command, actor, subject, b.profiles.OpenEditSession)
	case "codes edit":
		err = b.edit(ctx, i, command, actor, subject, b.profiles.OpenCodesSession)
	default:
		log.Warn("unknown subcommand")
		return
	}
	if err != nil {
		b.replyError(i, log, err)
	}
}

// subject is the member option when given, otherwise the caller.
func (b *Bot) subject(i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, opts []*discordgo.ApplicationCommandInteractionDataOption, actor member) member {
	opt := findOption(opts, "member")
	if opt == nil {
		return actor
	}
	id, _ := opt.Value.(string)
	return resolveMember(data, id)
}

func resolveMember(data discordgo.ApplicationCommandInteractionData, id string) member {
	var (
		u *discordgo.User
		m *discordgo.Member
	)
	if data.Resolved != nil {
		u = data.Resolved.Users[id]
		m = data.Resolved.Members[id]
	}
	if u == nil {
		u = &discordgo.User{ID: id}
	}
	return newMember(u, m)
}

// showTarget answers the user context menu entry with the clicked member's
// profile.
func (b *Bot) showTarget(ctx context.Context, i *discordgo.Interaction) error {
	data := i.ApplicationCommandData()
	return b.show(ctx, i, resolveMember(data, data.TargetID))
}

// ephemeralOption reads the optional "ephemeral" flag, true when absent.
func (b *Bot) ephemeralOption(i *discordgo.Interaction) bool {
	if opt := findOption(i.ApplicationCommandData().Options, "ephemeral"); opt != nil {
		return opt.BoolValue()
	}
	return true
}

func (b *Bot) show(ctx context.Context, i *discordgo.Interaction, subject member) error {
	view, err := b.profiles.GetProfileForDisplay(ctx, subject.ID)
	if err != nil {
		return err
	}
	return b.replyEmbeds(i, showEmbed(subject, view))
}

func (b *Bot) history(ctx context.Context, i *discordgo.Interaction, subject member) error {
	views, err := b.profiles.ListProfileHistory(ctx, subject.ID)
	if err != nil {
		return err
	}
	return b.replyEmbeds(i, historyEmbed(subject, views))
}

func (b *Bot) setActive(ctx context.Context, i *discordgo.Interaction, command string, actor, subject member, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	if err := b.requireStaff(ctx, i, command, actor, subject); err != nil {
		return err
	}
	var version int64
	if opt := findOption(opts, "version"); opt != nil {
		version = opt.IntValue()
	}
	ok, err := b.profiles.SetActiveVersion(ctx, subject.ID, version)
	if err != nil {
		return err
	}
	if !ok {
		return b.replyEmbeds(i, messageEmbed("Version Not Found", fmt.Sprintf("No version `#%d` exists for this profile.", version), colorRed))
	}
	return b.replyEmbeds(i, messageEmbed("Active Version Changed", fmt.Sprintf("Version `#%d` is now the active profile.", version), colorBlurple))
}

type openSession func(owner, actor uint64, p editor.Prompter, opts ...editor.Option) *editor.Session

func (b *Bot) edit(ctx context.Context, i *discordgo.Interaction, command string, actor, subject member, open openSession) error {
	if err := b.requireStaff(ctx, i, command, actor, subject); err != nil {
		return err
	}
	d, err := b.cooldown.Allow(ctx, middleware.CommandKey(command, actor.ID))
	if err != nil {
		b.logger.WithError(err).Warn("cooldown lookup failed")
	}
	if !d.Allowed {
		return &CooldownError{Command: command, RetryAfter: d.RetryAfter}
	}

	p := newPrompter(b.api, b.collector, i, actor.ID, subject, b.logger)
	out, err := open(subject.ID, actor.ID, p).Run(ctx)
	sessionOutcomes.Add(string(out.Reason), 1)
	if err != nil {
		// the prompter already rendered the outcome
		b.logger.WithError(err).WithFields(logrus.Fields{
			"command":         command,
			"discord_user_id": subject.ID,
			"reason":          out.Reason,
		}).Error("edit session failed")
	}
	return nil
}

// requireStaff allows acting on your own data and otherwise needs one of
// the caller's roles to be a staff role.
func (b *Bot) requireStaff(ctx context.Context, i *discordgo.Interaction, command string, actor, subject member) error {
	if actor.ID == subject.ID {
		return nil
	}
	var roles []uint64
	if i.Member != nil {
		for _, r := range i.Member.Roles {
			roles = append(roles, parseSnowflake(r))
		}
	}
	ok, err := b.staff.IsStaff(ctx, roles)
	if err != nil {
		return err
	}
	if !ok {
		return &StaffOnlyError{Command: command}
	}
	return nil
}

func (b *Bot) replyError(i *discordgo.Interaction, log logrus.FieldLogger, err error) {
	msg := translateError(err)
	log.WithError(err).Log(msg.Level, "command failed")
	if rerr := b.replyEmbeds(i, messageEmbed(msg.Title, msg.Description, colorRed)); rerr != nil {
		log.WithError(rerr).Warn("failed to report error")
	}
}

func (b *Bot) replyEmbeds(i *discordgo.Interaction, embeds ...*discordgo.MessageEmbed) error {
	return b.respond(i, true, embeds...)
}

func (b *Bot) respond(i *discordgo.Interaction, ephemeral bool, embeds ...*discordgo.MessageEmbed) error {
	data := &discordgo.InteractionResponseData{Embeds: embeds}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (b *Bot) replyText(i *discordgo.Interaction, text string) {
	err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: text, Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.WithError(err).Warn("failed to reply")
	}
}
