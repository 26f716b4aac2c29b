package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
	}{
		{
			name:    "credential",
			payload: &Credential{Service: "GitHub", Category: "Work", Username: "alice", Secret: "p@ss", URL: "https://github.com"},
		},
		{
			name:    "credential without url and category",
			payload: &Credential{Service: "GitHub", Username: "alice", Secret: "p@ss"},
		},
		{
			name:    "note",
			payload: &Note{Title: "wifi", Category: "Home", Body: "ssid: pixel\npsk: 1234"},
		},
		{
			name:    "file",
			payload: &File{Title: "key", Filename: "id_ed25519", MediaType: "application/octet-stream", Size: 4, Content: []byte{0, 1, 2, 255}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := MarshalPayload(tt.payload)
			require.NoError(t, err)

			got, err := UnmarshalPayload(raw, tt.payload.Kind())
			require.NoError(t, err)
			assert.Equal(t, tt.payload, got)
		})
	}
}

func TestUnmarshalPayload_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Kind
	}{
		{name: "not json", raw: "garbage", expected: KindNote},
		{name: "foreign kind", raw: `{"kind":"note","data":{"title":"x"}}`, expected: KindCredential},
		{name: "unknown kind", raw: `{"kind":"card","data":{}}`, expected: Kind("card")},
		{name: "unknown field", raw: `{"kind":"note","data":{"title":"x","extra":1}}`, expected: KindNote},
		{name: "missing data", raw: `{"kind":"note"}`, expected: KindNote},
		{name: "null data", raw: `{"kind":"note","data":null}`, expected: KindNote},
		{name: "invalid note", raw: `{"kind":"note","data":{"title":" "}}`, expected: KindNote},
		{name: "credential without secret", raw: `{"kind":"credential","data":{"service":"GitHub"}}`, expected: KindCredential},
		{name: "file size mismatch", raw: `{"kind":"file","data":{"title":"a","filename":"a.txt","size":10,"content":"AAE="}}`, expected: KindFile},
		{name: "relative url", raw: `{"kind":"credential","data":{"service":"GitHub","secret":"x","url":"github.com/login"}}`, expected: KindCredential},
		{name: "ftp url", raw: `{"kind":"credential","data":{"service":"GitHub","secret":"x","url":"ftp://github.com"}}`, expected: KindCredential},
		{name: "trailing data", raw: `{"kind":"note","data":{"title":"x"}} {}`, expected: KindNote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := UnmarshalPayload([]byte(tt.raw), tt.expected)
			assert.ErrorIs(t, err, ErrInvalidPayload)
			assert.Nil(t, p)
		})
	}
}

func TestMarshalPayload_ValidatesFirst(t *testing.T) {
	_, err := MarshalPayload(&Credential{Service: "GitHub"})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = MarshalPayload(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestPayload_EmptyCategoryBecomesOther(t *testing.T) {
	raw, err := MarshalPayload(&Note{Title: "wifi", Category: "  "})
	require.NoError(t, err)

	got, err := UnmarshalPayload(raw, KindNote)
	require.NoError(t, err)
	assert.Equal(t, DefaultCategory, got.(*Note).Category)

	got, err = UnmarshalPayload([]byte(`{"kind":"file","data":{"title":"a","filename":"a.txt","size":0}}`), KindFile)
	require.NoError(t, err)
	assert.Equal(t, DefaultCategory, got.(*File).Category)
}
