package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/benewagner/musicmapping/internal/content"
	"github.com/benewagner/musicmapping/internal/ui/theme"
)

// CardOptions controls how a card is drawn.
type CardOptions struct {
	Width   int  // outer width including border
	Focused bool // keyboard cursor is on the card
	Pending bool // card is the pending endpoint of a connection
	CDNRoot string
}

// maxNotationLines caps how much of an ABC tune is shown on a card.
const maxNotationLines = 3

// RenderCard draws one exercise element as a bordered card.
func RenderCard(e content.Element, opts CardOptions) string {
	style := theme.CardIdle
	switch {
	case opts.Pending:
		style = theme.CardPending
	case opts.Focused:
		style = theme.CardFocused
	}
	inner := max(opts.Width-style.GetHorizontalFrameSize(), 1)

	var lines []string
	head := theme.Selected.Render(e.DisplayName())
	if badge := cardBadge(e.CardType); badge != "" {
		head += " " + theme.CardBadge.Render(badge)
	}
	lines = append(lines, head)

	if e.Text != "" && e.Text != e.Label {
		lines = append(lines, theme.Body.Render(e.Text))
	}

	switch {
	case e.CardType == content.CardABC:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Secondary).Render(notationPreview(e.ABCCode)))
	case e.CardType.IsMedia() && e.SourceURL != "":
		lines = append(lines, theme.Hint.Render(content.AccessibleURL(e.SourceURL, opts.CDNRoot)))
	}

	if e.CopyrightNotice != "" {
		lines = append(lines, theme.Hint.Render("© "+e.CopyrightNotice))
	}

	body := lipgloss.NewStyle().Width(inner).Render(strings.Join(lines, "\n"))
	return style.Render(body)
}

func cardBadge(t content.CardType) string {
	switch t {
	case content.CardABC:
		return "♫ notation"
	case content.CardAudio:
		return "♪ audio"
	case content.CardVideo:
		return "▶ video"
	case content.CardImage:
		return "▣ image"
	}
	return ""
}

// notationPreview returns the key header and the first tune lines.
func notationPreview(code string) string {
	var key string
	var body []string
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "%"):
		case strings.HasPrefix(line, "K:"):
			key = "Key " + strings.TrimSpace(strings.TrimPrefix(line, "K:"))
		case len(line) > 1 && line[1] == ':' && key == "":
			// header field before K:
		case len(body) < maxNotationLines:
			body = append(body, line)
		}
	}
	if key != "" {
		body = append([]string{key}, body...)
	}
	return strings.Join(body, "\n")
}
