package domain

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem marks client-local notices (errors, status). System messages
	// are never sent to or received from the remote service.
	RoleSystem Role = "system"
)

// Origin distinguishes locally synthesized messages from server-tagged ones.
type Origin string

const (
	// OriginLocal marks messages created on this device before (or without)
	// server confirmation: the optimistic user echo and system notices.
	OriginLocal Origin = "local"
	// OriginServer marks messages whose ID was assigned by the remote service.
	OriginServer Origin = "server"
)

// Message is a single entry in the conversation log. The log is append-only
// and chronological; messages are never reordered or mutated after creation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Origin    Origin    `json:"origin"`
	CreatedAt time.Time `json:"createdAt"`
}
