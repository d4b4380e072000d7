package models

import (
	"strings"
	"time"
)

// TelegramUser is a profile snapshot taken from an incoming update.
// The pinned Bot API release does not deliver phone_number or is_premium
// for join requests; those fields stay zero until the platform provides them.
type TelegramUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	IsBot        bool   `json:"is_bot,omitempty"`
}

// FullName returns "FirstName LastName" with empty parts dropped.
func (u TelegramUser) FullName() string {
	parts := make([]string, 0, 2)
	if u.FirstName != "" {
		parts = append(parts, u.FirstName)
	}
	if u.LastName != "" {
		parts = append(parts, u.LastName)
	}
	return strings.Join(parts, " ")
}

// InviteLink describes the invite link a join request was attributed to.
type InviteLink struct {
	URL                string       `json:"invite_link"`
	Creator            TelegramUser `json:"creator"`
	CreatesJoinRequest bool         `json:"creates_join_request"`
	Name               string       `json:"name,omitempty"`
}

// JoinRequest is a user's request to join a chat, subject to approval.
// UserChatID is the private chat usable for messaging the user directly;
// zero when the platform did not disclose it.
type JoinRequest struct {
	ChatID     int64        `json:"chat_id"`
	From       TelegramUser `json:"from"`
	UserChatID int64        `json:"user_chat_id,omitempty"`
	InviteLink *InviteLink  `json:"invite_link,omitempty"`
	Date       time.Time    `json:"date"`
}

// DeliveryTargets returns the ordered chat ids a direct message to the
// requesting user should be attempted against: the private chat first when
// known, then the user id itself, without listing the same id twice in a row.
func (r JoinRequest) DeliveryTargets() []int64 {
	targets := make([]int64, 0, 2)
	if r.UserChatID != 0 {
		targets = append(targets, r.UserChatID)
	}
	if len(targets) == 0 || targets[len(targets)-1] != r.From.ID {
		targets = append(targets, r.From.ID)
	}
	return targets
}

// JoinApprovedEvent is the payload exported to Kafka after a successful
// approval.
type JoinApprovedEvent struct {
	EventID    string    `json:"event_id"`
	UserID     int64     `json:"user_id"`
	ChatID     int64     `json:"chat_id"`
	Username   string    `json:"username,omitempty"`
	ApprovedAt time.Time `json:"approved_at"`
}
