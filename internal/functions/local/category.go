package local

// Category values assigned from provider label ids.
const (
	CategoryInbox      = "Inbox"
	CategorySent       = "Sent"
	CategoryDrafts     = "Drafts"
	CategoryPromotions = "Promotions"
	CategoryImportant  = "Important"
	CategoryOther      = "Other"
)

// Classify maps a message's label ids to a single display category.
// The first matching rule wins, so a message labeled both INBOX and
// IMPORTANT is an Inbox message.
func Classify(labels []string) string {
	has := make(map[string]bool, len(labels))
	for _, l := range labels {
		has[l] = true
	}

	switch {
	case has["INBOX"]:
		return CategoryInbox
	case has["SENT"]:
		return CategorySent
	case has["DRAFT"]:
		return CategoryDrafts
	case has["CATEGORY_PROMOTIONS"]:
		return CategoryPromotions
	case has["IMPORTANT"]:
		return CategoryImportant
	default:
		return CategoryOther
	}
}

// IsRead derives the read flag from the label set. Gmail marks unread
// messages with the UNREAD label; absence means read.
func IsRead(labels []string) bool {
	for _, l := range labels {
		if l == "UNREAD" {
			return false
		}
	}
	return true
}
