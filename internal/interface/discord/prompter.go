package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/internal/editor"
)

// interactionAPI is the slice of *discordgo.Session the adapter calls.
type interactionAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

const (
	noticeNotYours = "This menu belongs to someone else."
	noticeExpired  = "This form has expired."
	noticeInactive = "This menu is no longer active."
)

var errNoInteraction = errors.New("discord: no interaction to open the form from")

// Prompter renders an edit session as one ephemeral message with buttons
// and answers group buttons with a modal. Only actor may drive it; clicks
// from anyone else get an ephemeral notice.
type Prompter struct {
	api     interactionAPI
	logger  logrus.FieldLogger
	origin  *discordgo.Interaction
	actor   uint64
	subject member

	session string
	events  <-chan *discordgo.Interaction
	release func()

	shown bool
	// pending is the last interaction that still needs a response.
	pending *discordgo.Interaction
	// pushback is a click received while a form was open. Discord does not
	// report a dismissed modal, so the click both ends the form and becomes
	// the next choice.
	pushback *discordgo.Interaction
	nonce    string
}

var _ editor.Prompter = (*Prompter)(nil)

func newPrompter(api interactionAPI, c *Collector, origin *discordgo.Interaction, actor uint64, subject member, logger logrus.FieldLogger) *Prompter {
	id, events, release := c.Register()
	return &Prompter{
		api:     api,
		logger:  logger,
		origin:  origin,
		actor:   actor,
		subject: subject,
		session: id,
		events:  events,
		release: release,
	}
}

func (p *Prompter) Choose(ctx context.Context, menu editor.Menu) (editor.Choice, error) {
	if i := p.pushback; i != nil {
		p.pushback = nil
		p.pending = i
		if c, ok := p.choice(i); ok {
			return c, nil
		}
	}
	if err := p.render(menuEmbeds(p.subject, menu), menuComponents(p.session, menu.Groups)); err != nil {
		return editor.Choice{}, err
	}
	for {
		i, err := p.next(ctx)
		if err != nil {
			return editor.Choice{}, err
		}
		if i.Type != discordgo.InteractionMessageComponent {
			p.notice(i, noticeExpired)
			continue
		}
		if interactionUserID(i) != p.actor {
			p.notice(i, noticeNotYours)
			continue
		}
		c, ok := p.choice(i)
		if !ok {
			p.notice(i, noticeInactive)
			continue
		}
		p.pending = i
		return c, nil
	}
}

func (p *Prompter) Form(ctx context.Context, req editor.FormRequest) (editor.FormResult, error) {
	if p.pending == nil || p.pending.Type != discordgo.InteractionMessageComponent {
		return editor.FormResult{}, errNoInteraction
	}
	p.nonce = uuid.NewString()[:8]
	err := p.api.InteractionRespond(p.pending, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: formModal(p.session, p.nonce, req),
	})
	p.pending = nil
	if err != nil {
		return editor.FormResult{}, err
	}

	for {
		i, err := p.next(ctx)
		if err != nil {
			return editor.FormResult{}, err
		}
		switch i.Type {
		case discordgo.InteractionModalSubmit:
			id, _ := parseCustomID(i.ModalSubmitData().CustomID)
			if id.Action != actionForm || id.Arg != p.nonce || interactionUserID(i) != p.actor {
				p.notice(i, noticeExpired)
				continue
			}
			p.pending = i
			return editor.FormResult{
				Submitted: true,
				UserID:    p.actor,
				Values:    formValues(i.ModalSubmitData()),
			}, nil
		case discordgo.InteractionMessageComponent:
			if interactionUserID(i) != p.actor {
				p.notice(i, noticeNotYours)
				continue
			}
			p.pushback = i
			return editor.FormResult{Submitted: false, UserID: p.actor}, nil
		}
	}
}

func (p *Prompter) Finish(_ context.Context, out editor.Outcome) error {
	defer p.release()
	return p.render([]*discordgo.MessageEmbed{outcomeEmbed(out)}, []discordgo.MessageComponent{})
}

// render shows embeds and components on the session message: as the first
// response to the command, as an update answering the pending interaction,
// or by editing the original response.
func (p *Prompter) render(embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	switch {
	case !p.shown:
		p.shown = true
		return p.api.InteractionRespond(p.origin, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds:     embeds,
				Components: components,
				Flags:      discordgo.MessageFlagsEphemeral,
			},
		})
	case p.pending != nil:
		i := p.pending
		p.pending = nil
		return p.api.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{Embeds: embeds, Components: components},
		})
	default:
		_, err := p.api.InteractionResponseEdit(p.origin, &discordgo.WebhookEdit{
			Embeds:     &embeds,
			Components: &components,
		})
		return err
	}
}

func (p *Prompter) choice(i *discordgo.Interaction) (editor.Choice, bool) {
	id, ok := parseCustomID(interactionCustomID(i))
	if !ok {
		return editor.Choice{}, false
	}
	c := editor.Choice{UserID: interactionUserID(i)}
	switch id.Action {
	case actionGroup:
		c.Kind, c.GroupID = editor.ChooseGroup, id.Arg
	case actionSave:
		c.Kind = editor.ChooseSave
	case actionCancel:
		c.Kind = editor.ChooseCancel
	default:
		return editor.Choice{}, false
	}
	return c, true
}

func (p *Prompter) next(ctx context.Context) (*discordgo.Interaction, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case i := <-p.events:
		return i, nil
	}
}

func (p *Prompter) notice(i *discordgo.Interaction, text string) {
	err := p.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: text, Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		p.logger.WithError(err).Warn("failed to send notice")
	}
}
