package model

import "strings"

// FolderType classifies a mailbox for icon/label selection.
type FolderType string

const (
	FolderTypeRegular FolderType = "regular"
	FolderTypeInbox   FolderType = "inbox"
	FolderTypeSent    FolderType = "sent"
	FolderTypeDrafts  FolderType = "drafts"
	FolderTypeTrash   FolderType = "trash"
	FolderTypeSpam    FolderType = "spam"
	FolderTypeArchive FolderType = "archive"
	FolderTypeOutbox  FolderType = "outbox"
)

// FolderInfo describes the folder a message was loaded from.
type FolderInfo struct {
	DisplayName string
	Type        FolderType
}

// FolderTypeFromName guesses the folder type from common mailbox names.
// Servers that advertise special-use attributes should be preferred.
func FolderTypeFromName(name string) FolderType {
	n := strings.ToLower(name)
	if i := strings.LastIndexAny(n, "/."); i >= 0 && n != "inbox" {
		n = n[i+1:]
	}

	switch n {
	case "inbox":
		return FolderTypeInbox
	case "sent", "sent items", "sent mail", "sent messages":
		return FolderTypeSent
	case "drafts", "draft":
		return FolderTypeDrafts
	case "trash", "deleted items", "deleted messages", "bin":
		return FolderTypeTrash
	case "spam", "junk", "junk e-mail", "bulk mail":
		return FolderTypeSpam
	case "archive", "archives", "all mail":
		return FolderTypeArchive
	case "outbox":
		return FolderTypeOutbox
	default:
		return FolderTypeRegular
	}
}

// Icon returns a one-cell glyph for the folder type.
func (t FolderType) Icon() string {
	switch t {
	case FolderTypeInbox:
		return "▣"
	case FolderTypeSent:
		return "➤"
	case FolderTypeDrafts:
		return "✎"
	case FolderTypeTrash:
		return "✗"
	case FolderTypeSpam:
		return "⚠"
	case FolderTypeArchive:
		return "▤"
	case FolderTypeOutbox:
		return "⇪"
	default:
		return "▢"
	}
}
