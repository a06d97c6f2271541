package model

import "encoding/json"

// TypeUserData tags every envelope carrying a user list.
const TypeUserData = "UserData"

// Envelope is the message handed to the bus; its JSON form is the wire body.
type Envelope struct {
	ID      string `json:"Id"`      // unique per run (uuid or ulid)
	Type    string `json:"Type"`    // always TypeUserData here
	Content string `json:"Content"` // serialized []User
}

// NewUserDataEnvelope wraps serialized users.
func NewUserDataEnvelope(id, content string) Envelope {
	return Envelope{ID: id, Type: TypeUserData, Content: content}
}

func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses a wire body produced by Encode.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(b, &env)
	return env, err
}
