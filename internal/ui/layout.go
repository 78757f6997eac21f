package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailcontacts/internal/theme"
)

// maxSheetWidth keeps participant rows readable on wide terminals.
const maxSheetWidth = 100

// Layout manages the header, sheet and status bar dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the width of the sheet, capped on wide terminals.
func (l Layout) ContentWidth() int {
	if l.Width > maxSheetWidth {
		return maxSheetWidth
	}
	return l.Width
}

// ContentHeight returns the height available for the sheet, accounting
// for the header and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the top bar with the message subject on the left
// and where it was loaded from on the right.
func (l Layout) RenderHeader(title string, origin string) string {
	return l.fill(theme.HeaderStyle, title, origin)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return l.fill(theme.StatusBarStyle, hints, "")
}

// fill renders left and right aligned text across the full width using
// style's background for the gap.
func (l Layout) fill(style lipgloss.Style, left, right string) string {
	leftRendered := style.Render(left)
	rightRendered := ""
	if right != "" {
		rightRendered = style.Align(lipgloss.Right).Render(right)
	}

	gap := l.Width -
		lipgloss.Width(leftRendered) -
		lipgloss.Width(rightRendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftRendered,
		filler,
		rightRendered,
	)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, the horizontally centered sheet, and the status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	sheet := lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(lipgloss.PlaceHorizontal(l.Width, lipgloss.Center, content))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		sheet,
		statusBar,
	)
}
