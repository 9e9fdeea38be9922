package models

import (
	"encoding/json"
	"errors"
)

// Envelope is the wrapper the review API puts around every payload.
type Envelope struct {
	Data       json.RawMessage `json:"data"`
	IsSuccess  bool            `json:"isSuccess"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Errors     []string        `json:"errors,omitempty"`
	Timestamp  string          `json:"timestamp"`
}

// HasData reports whether the envelope carries a non-null payload.
func (e *Envelope) HasData() bool {
	if e == nil || len(e.Data) == 0 {
		return false
	}
	return string(e.Data) != "null"
}

// Decode unmarshals the payload into v.
func (e *Envelope) Decode(v interface{}) error {
	if !e.HasData() {
		return errors.New("envelope has no data")
	}
	return json.Unmarshal(e.Data, v)
}
