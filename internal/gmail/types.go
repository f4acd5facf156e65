package gmail

import (
	"strings"
)

// Wire types for the subset of the Gmail REST API this client consumes.

// MessageRef identifies one message in a list page
type MessageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// ListResponse is one page of message ids
type ListResponse struct {
	Messages           []MessageRef `json:"messages"`
	NextPageToken      string       `json:"nextPageToken"`
	ResultSizeEstimate int64        `json:"resultSizeEstimate"`
}

// Header is one RFC 5322 header of a message part
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PartBody carries the content of a part: inline data for text parts,
// an attachment reference for everything fetched separately.
type PartBody struct {
	Size         int64  `json:"size"`
	Data         string `json:"data,omitempty"` // base64url, possibly unpadded
	AttachmentID string `json:"attachmentId,omitempty"`
}

// Part is one node of the (possibly nested) MIME tree
type Part struct {
	PartID   string   `json:"partId"`
	MimeType string   `json:"mimeType"`
	Filename string   `json:"filename"`
	Headers  []Header `json:"headers"`
	Body     PartBody `json:"body"`
	Parts    []Part   `json:"parts,omitempty"`
}

// Message is a full message as returned by format=full
type Message struct {
	ID        string   `json:"id"`
	ThreadID  string   `json:"threadId"`
	LabelIDs  []string `json:"labelIds"`
	Snippet   string   `json:"snippet"`
	HistoryID string   `json:"historyId"`
	Payload   Part     `json:"payload"`
}

// Header returns the value of the named header from the top-level
// payload, or the empty string. Lookup is case-insensitive per RFC 5322.
func (m *Message) Header(name string) string {
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// AttachmentResponse is the body of an attachment get
type AttachmentResponse struct {
	Size int64  `json:"size"`
	Data string `json:"data"`
}

// SendResponse is the body of a messages.send call
type SendResponse struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// DraftResponse is the body of a drafts.create call
type DraftResponse struct {
	ID      string       `json:"id"`
	Message SendResponse `json:"message"`
}
