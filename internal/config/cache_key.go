package config

import (
	"fmt"
)

// CacheKeyStruct centralizes every Redis key and channel name so they
// cannot drift between writers and readers.
type CacheKeyStruct struct{}

// StudentSessionKey returns the key holding a student's active login JTI.
func (r *CacheKeyStruct) StudentSessionKey(studentID string) string {
	return fmt.Sprintf("login:%s", studentID)
}

// AttemptEventsChannel returns the PubSub channel carrying attempt
// lifecycle events for the admin monitor.
func (r *CacheKeyStruct) AttemptEventsChannel() string {
	return "attempts:events"
}

var CacheKey = &CacheKeyStruct{}
