package details

import (
	"strconv"
	"time"

	"github.com/nhle/mailcontacts/internal/model"
)

// MissingDatePlaceholder is shown when a message has no usable date.
const MissingDatePlaceholder = "No date"

// dateLayout is how the message date is shown at the top of the sheet.
const dateLayout = "Mon, 2 Jan 2006 15:04"

// Section identifies a participant group.
type Section int

const (
	SectionFrom Section = iota
	SectionSender
	SectionReplyTo
	SectionTo
	SectionCc
	SectionBcc
)

// Title is the section header text.
func (s Section) Title() string {
	switch s {
	case SectionFrom:
		return "From"
	case SectionSender:
		return "Sender"
	case SectionReplyTo:
		return "Reply to"
	case SectionTo:
		return "To"
	case SectionCc:
		return "Cc"
	case SectionBcc:
		return "Bcc"
	default:
		return ""
	}
}

// ItemKind is the type of a row in the details sheet.
type ItemKind int

const (
	ItemDate ItemKind = iota
	ItemSectionHeader
	ItemParticipant
	ItemDivider
	ItemFolder
)

// Item is one row of the details sheet.
type Item struct {
	Kind ItemKind

	// Text is the date, section title or folder name.
	Text string

	// Extra is the participant count on a section header with more than
	// one participant.
	Extra string

	Section     Section
	Participant *Participant
	Folder      *model.FolderInfo
}

// Selectable reports whether the row accepts participant actions.
func (i Item) Selectable() bool {
	return i.Kind == ItemParticipant
}

type section struct {
	id           Section
	participants []Participant
}

func (d *MessageDetails) sections() []section {
	return []section{
		{SectionFrom, d.From},
		{SectionSender, d.Sender},
		{SectionReplyTo, d.ReplyTo},
		{SectionTo, d.To},
		{SectionCc, d.Cc},
		{SectionBcc, d.Bcc},
	}
}

// Items lays out the sheet: the date, the originator sections, a
// divider, the recipient sections, and the folder when known. Empty
// sections are omitted.
func Items(d *MessageDetails, loc *time.Location) []Item {
	if loc == nil {
		loc = time.Local
	}

	dateText := MissingDatePlaceholder
	if d.Date != nil {
		dateText = d.Date.In(loc).Format(dateLayout)
	}
	items := []Item{{Kind: ItemDate, Text: dateText}}

	all := d.sections()
	items = appendSections(items, all[:3])
	items = append(items, Item{Kind: ItemDivider})
	items = appendSections(items, all[3:])

	if d.Folder != nil {
		items = append(items, Item{Kind: ItemFolder, Text: d.Folder.DisplayName, Folder: d.Folder})
	}
	return items
}

func appendSections(items []Item, sections []section) []Item {
	for _, s := range sections {
		if len(s.participants) == 0 {
			continue
		}

		header := Item{Kind: ItemSectionHeader, Text: s.id.Title(), Section: s.id}
		if len(s.participants) > 1 {
			header.Extra = strconv.Itoa(len(s.participants))
		}
		items = append(items, header)

		for i := range s.participants {
			items = append(items, Item{
				Kind:        ItemParticipant,
				Section:     s.id,
				Participant: &s.participants[i],
			})
		}
	}
	return items
}
