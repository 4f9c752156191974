package notifier

import "time"

// EmbedBuilder helps in constructing Embed objects.
type EmbedBuilder struct {
	embed Embed
}

func NewEmbedBuilder() *EmbedBuilder {
	return &EmbedBuilder{}
}

func (b *EmbedBuilder) WithTitle(title string) *EmbedBuilder {
	b.embed.Title = title
	return b
}

func (b *EmbedBuilder) WithDescription(description string) *EmbedBuilder {
	b.embed.Description = description
	return b
}

// WithTimestamp formats the time as RFC3339.
func (b *EmbedBuilder) WithTimestamp(timestamp time.Time) *EmbedBuilder {
	b.embed.Timestamp = timestamp.Format(time.RFC3339)
	return b
}

func (b *EmbedBuilder) WithColor(color int) *EmbedBuilder {
	b.embed.Color = color
	return b
}

func (b *EmbedBuilder) WithFooter(text string) *EmbedBuilder {
	b.embed.Footer = &EmbedFooter{Text: text}
	return b
}

// AddField appends a field, truncating values Discord would reject.
func (b *EmbedBuilder) AddField(name, value string, inline bool) *EmbedBuilder {
	if len(value) > maxFieldValueLength {
		value = value[:maxFieldValueLength-3] + "..."
	}
	b.embed.Fields = append(b.embed.Fields, EmbedField{
		Name:   name,
		Value:  value,
		Inline: inline,
	})
	return b
}

func (b *EmbedBuilder) Build() Embed {
	return b.embed
}
