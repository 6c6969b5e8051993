// internal/models/song.go
package models

import (
	"encoding/json"
	"time"
)

// Song is a stored song document. Tracks is kept as raw JSON so the document
// round-trips byte-for-byte; the server never looks inside it.
type Song struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Created time.Time       `json:"created"`
	Updated time.Time       `json:"updated"`
	Tracks  json.RawMessage `json:"tracks"`
}

// SongPayload is the request body for POST /songs/ and PUT /songs/{id}.
type SongPayload struct {
	Name   string          `json:"name"`
	Tracks json.RawMessage `json:"tracks"`
}
