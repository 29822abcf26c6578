// Package bot serves the administrator slash commands that configure where
// releases are announced.
package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/abdulachik/releasebot/internal/announce"
)

// Sentinel errors mapped to user-facing replies.
var (
	ErrForbidden    = errors.New("administrator permission required")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	msgForbidden  = "🚫 You don't have permission to use this command."
	msgUnexpected = "An unexpected error occurred. Please try again later."
)

// inputError carries a message that is safe to show the invoker.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }
func (e *inputError) Unwrap() error { return ErrInvalidInput }

func invalidInput(msg string) error {
	return &inputError{msg: msg}
}

// SettingsWriter persists the announcement target.
type SettingsWriter interface {
	SetAnnouncementChannel(channelID string) error
	SetPingRole(roleID string) error
}

// session is the part of *discordgo.Session used by the command handlers.
type session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot owns the Discord gateway session.
type Bot struct {
	session  *discordgo.Session
	settings SettingsWriter
	guildID  string
	now      func() time.Time
}

// Config holds configuration for the bot.
type Config struct {
	Token    string
	GuildID  string // empty registers commands globally
	Settings SettingsWriter
}

// New creates the bot and its session. Call Open to connect.
func New(cfg Config) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds

	b := &Bot{
		session:  s,
		settings: cfg.Settings,
		guildID:  cfg.GuildID,
		now:      time.Now,
	}

	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.onReady(s, r)
	})
	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handleInteraction(s, i)
	})

	return b, nil
}

// Session returns the underlying session, shared with the announcer.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Open connects to the gateway.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("logged in to discord", "user", r.User.Username, "guilds", len(r.Guilds))

	registered, err := s.ApplicationCommandBulkOverwrite(r.User.ID, b.guildID, Commands())
	if err != nil {
		slog.Error("failed to register commands", "error", err)
		return
	}

	scope := "global"
	if b.guildID != "" {
		scope = "guild " + b.guildID
	}
	slog.Info("registered commands", "count", len(registered), "scope", scope)
}

func (b *Bot) handleInteraction(s session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)

	var err error
	switch data.Name {
	case CommandSetAnnChannel:
		err = b.setAnnChannel(s, i, opts)
	case CommandSetPingRole:
		err = b.setPingRole(s, i, opts)
	case CommandSay:
		err = b.say(s, i, opts)
	default:
		return
	}
	if err == nil {
		return
	}

	msg := errorMessage(err)
	if errors.Is(err, ErrForbidden) || errors.Is(err, ErrInvalidInput) {
		slog.Debug("command rejected", "command", data.Name, "reason", err)
	} else {
		slog.Error("command failed", "command", data.Name, "error", err)
	}

	if rerr := respond(s, i, &discordgo.InteractionResponseData{
		Content: msg,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); rerr != nil {
		slog.Warn("failed to send error reply", "command", data.Name, "error", rerr)
	}
}

func errorMessage(err error) string {
	var ie *inputError
	switch {
	case errors.As(err, &ie):
		return ie.msg
	case errors.Is(err, ErrForbidden):
		return msgForbidden
	default:
		return msgUnexpected
	}
}

func requireAdmin(i *discordgo.InteractionCreate) error {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		return ErrForbidden
	}
	return nil
}

func (b *Bot) setAnnChannel(s session, i *discordgo.InteractionCreate, opts options) error {
	if err := requireAdmin(i); err != nil {
		return err
	}
	channelID := opts.str("channel")
	if channelID == "" {
		return invalidInput("Please choose a channel.")
	}

	if err := b.settings.SetAnnouncementChannel(channelID); err != nil {
		return fmt.Errorf("save announcement channel: %w", err)
	}
	slog.Info("announcement channel updated", "channel", channelID, "by", invokerID(i))

	return respond(s, i, confirmation(fmt.Sprintf("✅ Announcement channel set to <#%s>", channelID)))
}

func (b *Bot) setPingRole(s session, i *discordgo.InteractionCreate, opts options) error {
	if err := requireAdmin(i); err != nil {
		return err
	}
	roleID := opts.str("role")
	if roleID == "" {
		return invalidInput("Please choose a role.")
	}

	if err := b.settings.SetPingRole(roleID); err != nil {
		return fmt.Errorf("save ping role: %w", err)
	}
	slog.Info("ping role updated", "role", roleID, "by", invokerID(i))

	return respond(s, i, confirmation(fmt.Sprintf("✅ Ping role has been set to %s", announce.RoleMention(roleID))))
}

// sayRequest holds the validated /say options.
type sayRequest struct {
	message      string
	dm           bool
	pingUserID   string
	pingEveryone bool
}

func parseSay(opts options) (sayRequest, error) {
	req := sayRequest{
		message:      strings.TrimSpace(opts.str("message")),
		dm:           opts.boolean("dm"),
		pingUserID:   opts.str("ping_user"),
		pingEveryone: opts.boolean("ping_everyone"),
	}

	switch {
	case req.message == "":
		return req, invalidInput("Please provide a message.")
	case req.dm && (req.pingUserID != "" || req.pingEveryone):
		return req, invalidInput("You cannot use ping options when sending a DM.")
	case req.pingUserID != "" && req.pingEveryone:
		return req, invalidInput("You can ping a user or @everyone, but not both.")
	}
	return req, nil
}

func (b *Bot) say(s session, i *discordgo.InteractionCreate, opts options) error {
	if err := requireAdmin(i); err != nil {
		return err
	}
	req, err := parseSay(opts)
	if err != nil {
		return err
	}

	user := invoker(i)
	embed := &discordgo.MessageEmbed{
		Description: req.message,
		Color:       announce.ColorGreen,
		Timestamp:   b.now().Format(time.RFC3339),
		Author: &discordgo.MessageEmbedAuthor{
			Name: "A message from " + displayName(i),
		},
	}
	if user != nil && user.Avatar != "" {
		embed.Author.IconURL = user.AvatarURL("")
	}

	if req.dm {
		if err := b.sendDM(s, user, embed); err != nil {
			slog.Warn("failed to send DM", "user", invokerID(i), "error", err)
			return respond(s, i, ephemeral("I couldn't send you a DM. Please check your privacy settings."))
		}
		return respond(s, i, ephemeral("Message sent to your DMs!"))
	}

	data := &discordgo.InteractionResponseData{
		Embeds:          []*discordgo.MessageEmbed{embed},
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}
	switch {
	case req.pingEveryone:
		data.Content = "@everyone"
		data.AllowedMentions.Parse = []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeEveryone}
	case req.pingUserID != "":
		data.Content = "<@" + req.pingUserID + ">"
		data.AllowedMentions.Users = []string{req.pingUserID}
	}
	return respond(s, i, data)
}

func (b *Bot) sendDM(s session, user *discordgo.User, embed *discordgo.MessageEmbed) error {
	if user == nil {
		return errors.New("interaction has no user")
	}
	ch, err := s.UserChannelCreate(user.ID)
	if err != nil {
		return fmt.Errorf("open DM channel: %w", err)
	}
	if _, err := s.ChannelMessageSendEmbed(ch.ID, embed); err != nil {
		return fmt.Errorf("send DM: %w", err)
	}
	return nil
}

func respond(s session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func confirmation(text string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Description: text,
			Color:       announce.ColorGreen,
		}},
		Flags: discordgo.MessageFlagsEphemeral,
	}
}

func ephemeral(text string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	}
}

func invoker(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func invokerID(i *discordgo.InteractionCreate) string {
	if u := invoker(i); u != nil {
		return u.ID
	}
	return ""
}

func displayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick
	}
	u := invoker(i)
	switch {
	case u == nil:
		return "unknown"
	case u.GlobalName != "":
		return u.GlobalName
	default:
		return u.Username
	}
}
