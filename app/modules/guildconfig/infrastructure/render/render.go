// Package render turns stored notification templates into dispatchable
// messages. The same code backs the dashboard's live preview and the bot's
// actual send path, so the two can never drift apart.
package render

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
)

// Placeholders shown when a mentioned channel or role is not in the lookup
// tables.
const (
	unknownChannel = "#unknown-channel"
	unknownRole    = "@unknown-role"
)

// Context supplies everything a template can reference: the triggering user,
// the server, lookup tables for mention resolution and the clock time. Now is
// injected so previews and tests are deterministic.
type Context struct {
	User struct {
		ID          string
		DisplayName string
		AvatarURL   string
	}
	Server struct {
		Name        string
		IconURL     string
		MemberCount int
	}
	Channels map[string]string
	Roles    map[string]string
	Now      time.Time
}

// Message is a fully rendered notification.
type Message struct {
	Content string
	Embed   *Embed
	// DeleteAfter carries the template's auto-delete delay through to dispatch.
	DeleteAfter time.Duration
}

// Empty reports whether the message has nothing to dispatch. Callers must not
// send or display an empty message.
func (m Message) Empty() bool {
	return m.Content == "" && m.Embed == nil
}

// Embed is the rendered counterpart of a stored embed template. Absent
// sections are nil, never empty shells.
type Embed struct {
	Color        int          `json:"color,omitempty"`
	Author       *EmbedAuthor `json:"author,omitempty"`
	Title        string       `json:"title,omitempty"`
	TitleURL     string       `json:"titleUrl,omitempty"`
	Description  string       `json:"description,omitempty"`
	ImageURL     string       `json:"imageUrl,omitempty"`
	ThumbnailURL string       `json:"thumbnailUrl,omitempty"`
	Footer       *EmbedFooter `json:"footer,omitempty"`
	Fields       []EmbedField `json:"fields,omitempty"`
}

type EmbedAuthor struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon,omitempty"`
}

type EmbedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

var (
	channelMention = regexp.MustCompile(`<#(\d+)>`)
	roleMention    = regexp.MustCompile(`<@&(\d+)>`)
)

// Render produces the message a template yields for the given context. A
// template with no message text and no usable embed renders empty.
func Render(tpl *guilddomain.NotificationTemplate, rc Context) Message {
	if tpl == nil {
		return Message{}
	}

	msg := Message{DeleteAfter: time.Duration(tpl.DeleteAfter) * time.Second}
	if tpl.Message != "" {
		msg.Content = substituteText(tpl.Message, rc)
	}
	if embedUsable(tpl.Embed) {
		msg.Embed = renderEmbed(tpl.Embed, rc)
	}
	return msg
}

// embedUsable reports whether the embed template has enough content to render:
// at least a title or a description.
func embedUsable(e *guilddomain.Embed) bool {
	return e != nil && (e.Title != "" || e.Description != "")
}

// substituteText applies the full substitution set to a display-text field.
// Variable replacement is literal, global and case-sensitive, in the
// documented order, with no recursive expansion; mention resolution runs in a
// single regexp pass afterwards so an already-resolved mention is never
// processed twice.
func substituteText(s string, rc Context) string {
	replacer := strings.NewReplacer(
		"{user}", "@"+rc.User.DisplayName,
		"{username}", rc.User.DisplayName,
		"{user.avatar}", rc.User.AvatarURL,
		"{user.id}", rc.User.ID,
		"{server.icon}", rc.Server.IconURL,
		"{time}", rc.Now.Format("15:04"),
		"{date}", rc.Now.Format("02/01/2006"),
		"{server}", rc.Server.Name,
		"{members}", strconv.Itoa(rc.Server.MemberCount),
	)
	s = replacer.Replace(s)

	s = channelMention.ReplaceAllStringFunc(s, func(match string) string {
		id := channelMention.FindStringSubmatch(match)[1]
		if name, ok := rc.Channels[id]; ok {
			return "#" + name
		}
		return unknownChannel
	})
	s = roleMention.ReplaceAllStringFunc(s, func(match string) string {
		id := roleMention.FindStringSubmatch(match)[1]
		if name, ok := rc.Roles[id]; ok {
			return "@" + name
		}
		return unknownRole
	})
	return s
}

// substituteURL applies only the substitutions that make sense inside a URL.
func substituteURL(s string, rc Context) string {
	return strings.NewReplacer(
		"{user.avatar}", rc.User.AvatarURL,
		"{user.id}", rc.User.ID,
		"{server.icon}", rc.Server.IconURL,
	).Replace(s)
}

func renderEmbed(e *guilddomain.Embed, rc Context) *Embed {
	out := &Embed{
		Color:       e.Color,
		Title:       substituteText(e.Title, rc),
		TitleURL:    substituteURL(e.TitleURL, rc),
		Description: substituteText(e.Description, rc),
	}

	if e.Author != nil && e.Author.Name != "" {
		out.Author = &EmbedAuthor{
			Name:    substituteText(e.Author.Name, rc),
			URL:     substituteURL(e.Author.URL, rc),
			IconURL: substituteURL(e.Author.IconURL, rc),
		}
	}
	if e.Image != nil && e.Image.URL != "" {
		out.ImageURL = substituteURL(e.Image.URL, rc)
	}
	if e.Thumbnail != nil && e.Thumbnail.URL != "" {
		out.ThumbnailURL = substituteURL(e.Thumbnail.URL, rc)
	}
	if e.Footer != nil && e.Footer.Text != "" {
		out.Footer = &EmbedFooter{
			Text:    substituteText(e.Footer.Text, rc),
			IconURL: substituteURL(e.Footer.IconURL, rc),
		}
	}
	for _, f := range e.Fields {
		if f.Name == "" && f.Value == "" {
			continue
		}
		out.Fields = append(out.Fields, EmbedField{
			Name:   substituteText(f.Name, rc),
			Value:  substituteText(f.Value, rc),
			Inline: f.Inline,
		})
	}
	return out
}
