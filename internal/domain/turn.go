package domain

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn written by the student.
	RoleUser Role = "user"
	// RoleAssistant marks a turn produced by an inference backend.
	RoleAssistant Role = "assistant"
)

// Turn is one message within a chat session. Turns are immutable once
// created; the session store only ever appends and trims whole pairs.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
