package template

import (
	"github.com/bwmarrin/discordgo"

	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

// Discord message limits.
const (
	maxEmbedTitle       = 256
	maxEmbedDescription = 4096
	maxFieldName        = 256
	maxFieldValue       = 1024
	maxEmbedFields      = 25
	maxFooter           = 2048
	maxContent          = 2000
)

// toneColor maps a view tone to an embed color.
func toneColor(t outbound.Tone) int {
	switch t {
	case outbound.ToneSuccess:
		return 0x57F287
	case outbound.ToneWarning:
		return 0xFEE75C
	case outbound.ToneError:
		return 0xED4245
	case outbound.ToneMuted:
		return 0x99AAB5
	default:
		return 0x5865F2
	}
}

func buttonStyle(s outbound.ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case outbound.ButtonPrimary:
		return discordgo.PrimaryButton
	case outbound.ButtonSuccess:
		return discordgo.SuccessButton
	case outbound.ButtonDanger:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}

// BuildEmbeds renders the view's embed. A view without a title, body or
// fields renders no embed.
func BuildEmbeds(v outbound.View) []*discordgo.MessageEmbed {
	if v.Title == "" && v.Body == "" && len(v.Fields) == 0 {
		return []*discordgo.MessageEmbed{}
	}
	embed := &discordgo.MessageEmbed{
		Title:       truncate(v.Title, maxEmbedTitle),
		Description: truncate(v.Body, maxEmbedDescription),
		Color:       toneColor(v.Tone),
	}
	for _, f := range v.Fields {
		if len(embed.Fields) == maxEmbedFields {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   truncate(nonEmpty(f.Name), maxFieldName),
			Value:  truncate(nonEmpty(f.Value), maxFieldValue),
			Inline: f.Inline,
		})
	}
	if v.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: truncate(v.Footer, maxFooter)}
	}
	return []*discordgo.MessageEmbed{embed}
}

// BuildComponents renders the view's buttons and select menu, one action row
// each. A non-interactive view yields an empty, non-nil slice so that edits
// clear any previous components.
func BuildComponents(v outbound.View) []discordgo.MessageComponent {
	components := []discordgo.MessageComponent{}
	if len(v.Buttons) > 0 {
		row := discordgo.ActionsRow{}
		for _, b := range v.Buttons {
			row.Components = append(row.Components, discordgo.Button{
				Label:    b.Label,
				Style:    buttonStyle(b.Style),
				CustomID: b.CustomID,
				Disabled: b.Disabled,
			})
		}
		components = append(components, row)
	}
	if v.Select != nil && len(v.Select.Options) > 0 {
		menu := discordgo.SelectMenu{
			MenuType:    discordgo.StringSelectMenu,
			CustomID:    v.Select.CustomID,
			Placeholder: v.Select.Placeholder,
		}
		for _, o := range v.Select.Options {
			menu.Options = append(menu.Options, discordgo.SelectMenuOption{
				Label:       truncate(o.Label, 100),
				Value:       o.Value,
				Description: truncate(o.Description, 100),
			})
		}
		components = append(components, discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}})
	}
	return components
}

// BuildResponseData renders a view as interaction response data.
func BuildResponseData(v outbound.View) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    truncate(v.Content, maxContent),
		Embeds:     BuildEmbeds(v),
		Components: BuildComponents(v),
	}
}

// BuildMessageSend renders a view as a new channel message.
func BuildMessageSend(v outbound.View) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    truncate(v.Content, maxContent),
		Embeds:     BuildEmbeds(v),
		Components: BuildComponents(v),
	}
}

// BuildWebhookEdit renders a view as a full replacement of an interaction's
// original message.
func BuildWebhookEdit(v outbound.View) *discordgo.WebhookEdit {
	content := truncate(v.Content, maxContent)
	embeds := BuildEmbeds(v)
	components := BuildComponents(v)
	return &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	}
}

// BuildMessageEdit renders a view as a full replacement of an existing
// channel message.
func BuildMessageEdit(ref outbound.MessageRef, v outbound.View) *discordgo.MessageEdit {
	content := truncate(v.Content, maxContent)
	embeds := BuildEmbeds(v)
	components := BuildComponents(v)
	edit := discordgo.NewMessageEdit(ref.ChannelID, ref.MessageID)
	edit.Content = &content
	edit.Embeds = &embeds
	edit.Components = &components
	return edit
}

// BuildModal renders a modal as its interaction response.
func BuildModal(m outbound.Modal) *discordgo.InteractionResponse {
	rows := make([]discordgo.MessageComponent, 0, len(m.Inputs))
	for _, in := range m.Inputs {
		style := discordgo.TextInputShort
		if in.Paragraph {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    in.CustomID,
				Label:       in.Label,
				Style:       style,
				Placeholder: in.Placeholder,
				Required:    in.Required,
				MinLength:   in.MinLength,
				MaxLength:   in.MaxLength,
			},
		}})
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   m.CustomID,
			Title:      truncate(m.Title, 45),
			Components: rows,
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func nonEmpty(s string) string {
	if s == "" {
		return "\u200b"
	}
	return s
}
