package ari

import (
	"github.com/tidwall/gjson"

	apperrors "ariproxy/pkg/errors"
)

const typePath = "type"

// Message is one inbound ARI frame. The body is kept as received and
// addressed by dotted paths such as "channel.id".
type Message struct {
	raw string
}

// Parse validates frame as JSON. It does not require a type field.
func Parse(frame []byte) (Message, error) {
	if !gjson.ValidBytes(frame) {
		return Message{}, apperrors.ErrValidation.WithMessage("ari frame is not valid JSON")
	}
	return Message{raw: string(frame)}, nil
}

// Value returns the string form of the field at path. Missing and null
// fields report false.
func (m Message) Value(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	result := gjson.Get(m.raw, path)
	if !result.Exists() || result.Type == gjson.Null {
		return "", false
	}
	return result.String(), true
}

// Type returns the message type discriminator.
func (m Message) Type() (string, bool) {
	return m.Value(typePath)
}

func (m Message) Raw() string {
	return m.raw
}
