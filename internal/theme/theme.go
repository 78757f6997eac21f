package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps overlay panels such as help and the contact card.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for participant rows.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the focused participant row.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// SectionHeaderStyle renders From/To/Cc headers.
var SectionHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGray).
	MarginTop(1)

// DimmedStyle is used for secondary text such as bare addresses.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// MenuStyle frames the participant overflow menu.
var MenuStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBlue)

// ErrorStyle is used for failure messages.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// ToastStyle is used for transient confirmations in the status bar.
var ToastStyle = lipgloss.NewStyle().
	Foreground(ColorGreen)

// badgePalette is cycled by BadgeStyle so the same name keeps its color.
var badgePalette = []lipgloss.AdaptiveColor{
	ColorBlue, ColorGreen, ColorOrange, ColorMagenta, ColorYellow, ColorRed,
}

// BadgeStyle returns the initials badge style for a participant. The
// color is derived from seed so it is stable between renders.
func BadgeStyle(seed string) lipgloss.Style {
	var h uint32
	for i := 0; i < len(seed); i++ {
		h = h*31 + uint32(seed[i])
	}
	c := badgePalette[h%uint32(len(badgePalette))]

	return lipgloss.NewStyle().
		Bold(true).
		Width(4).
		Align(lipgloss.Center).
		Foreground(lipgloss.AdaptiveColor{Dark: "#1A202C", Light: "#F8F9FA"}).
		Background(c)
}

// ContactLabelStyle marks a participant that is in the address book.
func ContactLabelStyle(inContacts bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if inContacts {
		return base.Foreground(ColorGreen)
	}
	return base.Foreground(ColorGray)
}

// FolderStyle returns a color-coded style for a folder type label.
func FolderStyle(folderType string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch folderType {
	case "inbox":
		return base.Foreground(ColorBlue)
	case "sent", "outbox":
		return base.Foreground(ColorGreen)
	case "drafts":
		return base.Foreground(ColorYellow)
	case "trash", "spam":
		return base.Foreground(ColorRed)
	case "archive":
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorGray)
	}
}
