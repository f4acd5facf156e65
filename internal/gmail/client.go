package gmail

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrAPICallFailed indicates the Gmail API call failed
	ErrAPICallFailed = errors.New("gmail API call failed")
	// ErrInvalidResponse indicates an invalid response from the Gmail API
	ErrInvalidResponse = errors.New("invalid gmail API response")
)

const defaultBaseURL = "https://gmail.googleapis.com/gmail/v1/users/me"

// Client talks to the Gmail REST API for a single mailbox. Auth, token
// refresh and transport errors are its responsibility; callers see plain
// decoded values or an error.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client over an already-authenticated HTTP client
// (normally the oauth2 client from NewHTTPClient).
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
	}
}

// SetBaseURL overrides the API endpoint (used by tests)
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

func (c *Client) getJSON(path string, out interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrAPICallFailed, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func (c *Client) postJSON(path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrAPICallFailed, resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// ListMessageIDs lists up to maxResults message ids starting at
// pageToken (empty for the start of the mailbox). Spam and trash are
// always excluded. Returns the ids and the next page token; an empty
// token means the last page.
func (c *Client) ListMessageIDs(pageToken string, maxResults int) ([]string, string, error) {
	q := url.Values{}
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("includeSpamTrash", "false")
	if strings.TrimSpace(pageToken) != "" {
		q.Set("pageToken", pageToken)
	}

	var list ListResponse
	if err := c.getJSON("/messages?"+q.Encode(), &list); err != nil {
		return nil, "", err
	}

	ids := make([]string, 0, len(list.Messages))
	for _, ref := range list.Messages {
		ids = append(ids, ref.ID)
	}
	return ids, list.NextPageToken, nil
}

// GetMessage fetches one message with its full MIME tree
func (c *Client) GetMessage(id string) (*Message, error) {
	var msg Message
	if err := c.getJSON("/messages/"+url.PathEscape(id)+"?format=full", &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetAttachment fetches and decodes one attachment body
func (c *Client) GetAttachment(messageID, attachmentID string) ([]byte, error) {
	var att AttachmentResponse
	path := "/messages/" + url.PathEscape(messageID) + "/attachments/" + url.PathEscape(attachmentID)
	if err := c.getJSON(path, &att); err != nil {
		return nil, err
	}
	data, err := DecodeBase64URL(att.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return data, nil
}

// CreateDraft stores a raw RFC 2822 message as a Gmail draft and returns
// the draft's message id.
func (c *Client) CreateDraft(raw []byte) (string, error) {
	payload := map[string]interface{}{
		"message": map[string]string{
			"raw": base64.URLEncoding.EncodeToString(raw),
		},
	}
	var resp DraftResponse
	if err := c.postJSON("/drafts", payload, &resp); err != nil {
		return "", err
	}
	return resp.Message.ID, nil
}

// SendMessage sends a raw RFC 2822 message and returns its message id
func (c *Client) SendMessage(raw []byte) (string, error) {
	payload := map[string]string{
		"raw": base64.URLEncoding.EncodeToString(raw),
	}
	var resp SendResponse
	if err := c.postJSON("/messages/send", payload, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DecodeBase64URL decodes Gmail body data, which is base64url encoded
// and frequently arrives without padding. Missing padding is appended
// rather than treated as an error.
func DecodeBase64URL(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, nil
	}
	if n := len(data) % 4; n != 0 {
		data += strings.Repeat("=", 4-n)
	}
	return base64.URLEncoding.DecodeString(data)
}
