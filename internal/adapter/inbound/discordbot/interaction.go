package discordbot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
)

// DecodeInteraction maps a Discord interaction to an envelope. It reports
// false for interaction types the router does not handle, such as PING and
// autocomplete.
func DecodeInteraction(i *discordgo.Interaction) (model.Envelope, bool) {
	env := model.Envelope{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
	}
	if i.Message != nil {
		env.MessageID = i.Message.ID
	}
	env.OriginatorID, env.OriginatorName = originator(i)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		env.Kind = model.EventCommand
		env.CommandName = i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		env.CustomID = data.CustomID
		switch data.ComponentType {
		case discordgo.ButtonComponent:
			env.Kind = model.EventButton
		case discordgo.SelectMenuComponent:
			env.Kind = model.EventSelectMenu
			env.Values = data.Values
		default:
			return model.Envelope{}, false
		}
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		env.Kind = model.EventModalSubmit
		env.CustomID = data.CustomID
		env.Fields = modalFields(data.Components)
	default:
		return model.Envelope{}, false
	}
	return env, true
}

// DecodeReaction maps a reaction add or remove to an envelope.
func DecodeReaction(kind model.EventKind, r *discordgo.MessageReaction) model.Envelope {
	env := model.Envelope{
		Kind:         kind,
		OriginatorID: r.UserID,
		GuildID:      r.GuildID,
		ChannelID:    r.ChannelID,
		MessageID:    r.MessageID,
	}
	if name := r.Emoji.APIName(); name != "" {
		env.Values = []string{name}
	}
	return env
}

func originator(i *discordgo.Interaction) (id, name string) {
	var u *discordgo.User
	if i.Member != nil {
		u = i.Member.User
		if u != nil && i.Member.Nick != "" {
			return u.ID, i.Member.Nick
		}
	}
	if u == nil {
		u = i.User
	}
	if u == nil {
		return "", ""
	}
	if u.GlobalName != "" {
		return u.ID, u.GlobalName
	}
	return u.ID, u.Username
}

// modalFields flattens submitted text inputs by custom id. The library
// decodes components as pointers; values are accepted as well.
func modalFields(components []discordgo.MessageComponent) map[string]string {
	fields := make(map[string]string)
	var walk func([]discordgo.MessageComponent)
	walk = func(cs []discordgo.MessageComponent) {
		for _, c := range cs {
			switch c := c.(type) {
			case *discordgo.ActionsRow:
				walk(c.Components)
			case discordgo.ActionsRow:
				walk(c.Components)
			case *discordgo.TextInput:
				fields[c.CustomID] = c.Value
			case discordgo.TextInput:
				fields[c.CustomID] = c.Value
			}
		}
	}
	walk(components)
	return fields
}
