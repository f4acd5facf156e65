package gmail

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestDecodeBase64URL(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []byte
	}{
		{"padded", base64.URLEncoding.EncodeToString([]byte("hello")), []byte("hello")},
		{"unpadded", "aGVsbG8", []byte("hello")},
		{"exact multiple of four", "aGVsbG8h", []byte("hello!")},
		{"url alphabet", "-_-_", []byte{0xfb, 0xff, 0xbf}},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeBase64URL(tc.input)
			if err != nil {
				t.Fatalf("DecodeBase64URL(%q) error: %v", tc.input, err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("DecodeBase64URL(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestDecodeBase64URLInvalid(t *testing.T) {
	if _, err := DecodeBase64URL("not base64 at all!!!"); err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestMessageHeaderLookup(t *testing.T) {
	msg := &Message{
		Payload: Part{
			Headers: []Header{
				{Name: "From", Value: "Alice <alice@example.com>"},
				{Name: "subject", Value: "Hi"},
			},
		},
	}

	if got := msg.Header("from"); got != "Alice <alice@example.com>" {
		t.Errorf("Header(from) = %q", got)
	}
	if got := msg.Header("Subject"); got != "Hi" {
		t.Errorf("Header(Subject) = %q", got)
	}
	if got := msg.Header("Date"); got != "" {
		t.Errorf("Header(Date) = %q, want empty", got)
	}
}
