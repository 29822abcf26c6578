package bot

import "github.com/bwmarrin/discordgo"

// Command names.
const (
	CommandSetAnnChannel = "set-ann-channel"
	CommandSetPingRole   = "set-ping-role"
	CommandSay           = "say"
)

var (
	adminPermissions int64 = discordgo.PermissionAdministrator
	allowInDM              = false
)

// Commands returns the slash command definitions. All of them are hidden
// from non-administrators by default and unavailable in DMs.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     CommandSetAnnChannel,
			Description:              "Sets the channel for release announcements.",
			DefaultMemberPermissions: &adminPermissions,
			DMPermission:             &allowInDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "The channel to send announcements to.",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
					Required:     true,
				},
			},
		},
		{
			Name:                     CommandSetPingRole,
			Description:              "Sets the role to ping for new releases.",
			DefaultMemberPermissions: &adminPermissions,
			DMPermission:             &allowInDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role to ping.",
					Required:    true,
				},
			},
		},
		{
			Name:                     CommandSay,
			Description:              "Make the bot say something in an embed.",
			DefaultMemberPermissions: &adminPermissions,
			DMPermission:             &allowInDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "The message you want the bot to say.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "dm",
					Description: "Send the message as a DM to yourself. Pinging is disabled in DMs.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "ping_user",
					Description: "A specific user to ping with the message.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "ping_everyone",
					Description: "Ping @everyone with the message. Cannot be used with ping_user.",
				},
			},
		},
	}
}

// options indexes command options by name.
type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

// str returns a string or snowflake option, or "".
func (o options) str(name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	v, _ := opt.Value.(string)
	return v
}

func (o options) boolean(name string) bool {
	opt, ok := o[name]
	if !ok {
		return false
	}
	v, _ := opt.Value.(bool)
	return v
}
