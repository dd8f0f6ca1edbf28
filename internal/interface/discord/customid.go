package discord

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const customIDPrefix = "cipher"

// Component actions. A custom id reads cipher:<session>:<action>[:<arg>].
const (
	actionGroup  = "group"
	actionSave   = "save"
	actionCancel = "cancel"
	actionForm   = "form"
)

type customID struct {
	Session string
	Action  string
	Arg     string
}

func (c customID) String() string {
	s := customIDPrefix + ":" + c.Session + ":" + c.Action
	if c.Arg != "" {
		s += ":" + c.Arg
	}
	return s
}

func parseCustomID(s string) (customID, bool) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 || parts[0] != customIDPrefix || parts[1] == "" || parts[2] == "" {
		return customID{}, false
	}
	id := customID{Session: parts[1], Action: parts[2]}
	if len(parts) == 4 {
		id.Arg = parts[3]
	}
	return id, true
}

// interactionCustomID returns the custom id of a component click or modal
// submission.
func interactionCustomID(i *discordgo.Interaction) string {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return i.ModalSubmitData().CustomID
	}
	return ""
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func interactionUserID(i *discordgo.Interaction) uint64 {
	u := interactionUser(i)
	if u == nil {
		return 0
	}
	return parseSnowflake(u.ID)
}

func parseSnowflake(s string) uint64 {
	id, _ := strconv.ParseUint(s, 10, 64)
	return id
}
