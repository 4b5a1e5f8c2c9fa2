package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Identifiers are time-prefixed for readable ordering, with a random suffix so
// two concurrent instances never mint the same id.

// NewMessageID mints a message identifier.
func NewMessageID() string {
	return newID("msg")
}

// NewSessionID mints a session identifier. A fresh one is minted every process
// start; sessions are never resumed by identity.
func NewSessionID() string {
	return newID("session")
}

// NewUserID mints a per-run user identifier.
func NewUserID() string {
	return newID("user")
}

func newID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.New().String()[:8])
}
