package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/oksasatya/cipher/internal/application"
	"github.com/oksasatya/cipher/internal/domain/entity"
	"github.com/oksasatya/cipher/internal/editor"
)

const (
	colorBlurple = 0x5865F2
	colorRed     = 0xED4245

	// Discord renders at most this many history entries comfortably in one
	// embed description.
	historyLimit = 25
)

// member is the display data of whoever a command is about.
type member struct {
	ID        uint64
	Name      string
	AvatarURL string
}

func newMember(u *discordgo.User, m *discordgo.Member) member {
	if u == nil {
		return member{}
	}
	name := u.Username
	if u.GlobalName != "" {
		name = u.GlobalName
	}
	if m != nil && m.Nick != "" {
		name = m.Nick
	}
	return member{ID: parseSnowflake(u.ID), Name: name, AvatarURL: u.AvatarURL("")}
}

type labelled struct {
	field  entity.Field
	label  string
	inline bool
}

var profileSection = []labelled{
	{entity.FieldTrainerClass, "Trainer Class", true},
	{entity.FieldNature, "Nature", true},
	{entity.FieldPartnerPokemon, "Partner Pokémon", true},
	{entity.FieldFavouriteFood, "Favourite Food", true},
	{entity.FieldStartingRegion, "Starting Region", true},
	{entity.FieldLikes, "Likes", true},
	{entity.FieldQuotes, "Quotes", false},
}

var codesSection = []labelled{
	{entity.FieldPokemonGoCode, "Pokémon Go Friend Code", false},
	{entity.FieldPokemonPocketCode, "Pokémon TCG Pocket Friend Code", false},
	{entity.FieldSwitchCode, "Nintendo Switch Friend Code", false},
}

func sectionFields(f entity.ProfileFields, section []labelled) []*discordgo.MessageEmbedField {
	var out []*discordgo.MessageEmbedField
	for _, l := range section {
		if v := f.Get(l.field); v != nil && *v != "" {
			out = append(out, &discordgo.MessageEmbedField{Name: l.label, Value: *v, Inline: l.inline})
		}
	}
	return out
}

// profileEmbed lays out a profile the same way for /profile show and the
// editor preview.
func profileEmbed(who member, f entity.ProfileFields) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{Name: who.Name, IconURL: who.AvatarURL},
		Color:  colorBlurple,
	}
	if f.ThumbnailURL != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: *f.ThumbnailURL}
	}
	if f.ImageURL != nil {
		embed.Image = &discordgo.MessageEmbedImage{URL: *f.ImageURL}
	}

	profile := sectionFields(f, profileSection)
	codes := sectionFields(f, codesSection)
	embed.Fields = profile
	switch {
	case len(profile) == 0 && len(codes) == 0:
		embed.Description = "No information to show."
	case len(codes) == 0:
		embed.Description = "**User Profile**"
	case len(profile) == 0:
		embed.Description = "**Friend Codes**"
	default:
		embed.Description = "**User Profile**"
		// U+200E keeps the field name blank so the value reads as a heading
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "\u200e", Value: "**Friend Codes**"})
	}
	embed.Fields = append(embed.Fields, codes...)
	return embed
}

func showEmbed(who member, view *application.ProfileView) *discordgo.MessageEmbed {
	if view == nil {
		return profileEmbed(who, entity.ProfileFields{})
	}
	embed := profileEmbed(who, view.Fields)
	if view.ProfileID != 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Version #%d", view.ProfileID)}
		embed.Timestamp = view.CreatedAt.Format(time.RFC3339)
	}
	return embed
}

func historyEmbed(who member, views []application.ProfileView) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{Name: who.Name, IconURL: who.AvatarURL},
		Title:  "Profile History",
		Color:  colorBlurple,
	}
	if len(views) == 0 {
		embed.Description = "No information to show."
		return embed
	}
	var b strings.Builder
	for n, v := range views {
		if n == historyLimit {
			fmt.Fprintf(&b, "…and %d older versions", len(views)-historyLimit)
			break
		}
		fmt.Fprintf(&b, "`#%d` <t:%d:f>", v.ProfileID, v.CreatedAt.Unix())
		if v.IsActive {
			b.WriteString(" **(active)**")
		}
		b.WriteByte('\n')
	}
	embed.Description = strings.TrimRight(b.String(), "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Use /profile set-active to restore a version."}
	return embed
}

func aboutEmbed(info About, self *discordgo.User) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Title: info.Title, Description: info.Description, Color: colorBlurple}
	if self != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: self.AvatarURL("")}
	}
	if info.SourceCodeURL != "" {
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "Source Code", Value: info.SourceCodeURL}}
	}
	return embed
}

func pingEmbed() *discordgo.MessageEmbed {
	return messageEmbed("Pong :ping_pong:", "", colorBlurple)
}

func messageEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: color}
}

func validationEmbed(errs []editor.FieldError) *discordgo.MessageEmbed {
	lines := make([]string, len(errs))
	for n, e := range errs {
		lines[n] = "- " + e.String()
	}
	return messageEmbed("Validation Error", strings.Join(lines, "\n"), colorRed)
}

func menuEmbeds(who member, menu editor.Menu) []*discordgo.MessageEmbed {
	preview := profileEmbed(who, menu.Draft)
	preview.Footer = &discordgo.MessageEmbedFooter{Text: "Pick a section to edit, then Save."}
	embeds := []*discordgo.MessageEmbed{preview}
	if len(menu.Errors) > 0 {
		embeds = append(embeds, validationEmbed(menu.Errors))
	}
	return embeds
}

func menuComponents(session string, groups []editor.Group) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(groups))
	for _, g := range groups {
		buttons = append(buttons, discordgo.Button{
			Label:    g.Label,
			Style:    discordgo.PrimaryButton,
			CustomID: customID{Session: session, Action: actionGroup, Arg: g.ID}.String(),
		})
	}
	controls := []discordgo.MessageComponent{
		discordgo.Button{Label: "Save", Style: discordgo.SuccessButton, CustomID: customID{Session: session, Action: actionSave}.String()},
		discordgo.Button{Label: "Cancel", Style: discordgo.DangerButton, CustomID: customID{Session: session, Action: actionCancel}.String()},
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
		discordgo.ActionsRow{Components: controls},
	}
}

func formModal(session, nonce string, req editor.FormRequest) *discordgo.InteractionResponseData {
	rows := make([]discordgo.MessageComponent, 0, len(req.Group.Fields))
	for _, f := range req.Group.Fields {
		style := discordgo.TextInputShort
		if f.Paragraph {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    string(f.Field),
				Label:       f.Label,
				Style:       style,
				Placeholder: f.Placeholder,
				Value:       req.Prefill[f.Field],
				Required:    false,
				MaxLength:   f.MaxLen,
			},
		}})
	}
	return &discordgo.InteractionResponseData{
		CustomID:   customID{Session: session, Action: actionForm, Arg: nonce}.String(),
		Title:      req.Group.Label,
		Components: rows,
	}
}

// formValues collects every text input of a modal submission keyed by field.
func formValues(data discordgo.ModalSubmitInteractionData) map[entity.Field]string {
	out := make(map[entity.Field]string)
	for _, row := range data.Components {
		var inner []discordgo.MessageComponent
		switch r := row.(type) {
		case *discordgo.ActionsRow:
			inner = r.Components
		case discordgo.ActionsRow:
			inner = r.Components
		}
		for _, c := range inner {
			switch t := c.(type) {
			case *discordgo.TextInput:
				out[entity.Field(t.CustomID)] = t.Value
			case discordgo.TextInput:
				out[entity.Field(t.CustomID)] = t.Value
			}
		}
	}
	return out
}

func outcomeEmbed(out editor.Outcome) *discordgo.MessageEmbed {
	switch out.Reason {
	case editor.ReasonSaved:
		return messageEmbed("Changes Saved", "Your changes have been saved successfully.", colorBlurple)
	case editor.ReasonCancelled:
		return messageEmbed("Edit Cancelled", "No changes were saved.", colorRed)
	case editor.ReasonTimeout:
		return messageEmbed("Edit Timed Out", "This edit session expired before it was saved. No changes were made.", colorRed)
	default:
		return messageEmbed("Internal Error", internalErrorText, colorRed)
	}
}
