package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	commandName = "profile"
	aboutName   = "about"
	pingName    = "ping"
	// showMenuName is the user context menu entry; Discord shows it verbatim.
	showMenuName = "Show Profile"
)

func memberOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "member",
		Description: description,
	}
}

var minVersion = 1.0

// Commands is every command the bot registers: the /profile tree, the user
// context menu entry, /about and /ping.
func Commands() []*discordgo.ApplicationCommand {
	dm := false
	return []*discordgo.ApplicationCommand{profileCommand(&dm), {
		Name:         showMenuName,
		Type:         discordgo.UserApplicationCommand,
		DMPermission: &dm,
	}, {
		Name:        aboutName,
		Description: "Show information about the bot.",
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "ephemeral",
			Description: "Hide reply from other users. Defaults to True.",
		}},
	}, {
		Name:        pingName,
		Description: "Is the bot alive or dead? :thinking:",
		Type:        discordgo.ChatApplicationCommand,
	}}
}

func profileCommand(dm *bool) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:         commandName,
		Description:  "Edit and show profiles.",
		Type:         discordgo.ChatApplicationCommand,
		DMPermission: dm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "show",
				Description: "Show your profile or someone else's.",
				Options:     []*discordgo.ApplicationCommandOption{memberOption("The profile to show.")},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "edit",
				Description: "Edit your profile.",
				Options:     []*discordgo.ApplicationCommandOption{memberOption("The profile to edit. Staff only.")},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "history",
				Description: "List every saved version of a profile.",
				Options:     []*discordgo.ApplicationCommandOption{memberOption("The profile to list.")},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-active",
				Description: "Make an earlier version the active profile.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "version",
						Description: "The version number from /profile history.",
						Required:    true,
						MinValue:    &minVersion,
					},
					memberOption("The profile to change. Staff only."),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "codes",
				Description: "Manage friend codes.",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "edit",
					Description: "Edit your friend codes.",
					Options:     []*discordgo.ApplicationCommandOption{memberOption("The member to edit. Staff only.")},
				}},
			},
		},
	}
}

// commandPath flattens subcommand groups into "codes edit" and returns the
// options of the innermost subcommand.
func commandPath(data discordgo.ApplicationCommandInteractionData) (string, []*discordgo.ApplicationCommandInteractionDataOption) {
	var path []string
	opts := data.Options
	for len(opts) == 1 && (opts[0].Type == discordgo.ApplicationCommandOptionSubCommand ||
		opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup) {
		path = append(path, opts[0].Name)
		opts = opts[0].Options
	}
	return strings.Join(path, " "), opts
}

func findOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, o := range opts {
		if o.Name == name {
			return o
		}
	}
	return nil
}
