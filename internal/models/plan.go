package models

import "time"

// Plan names are globally unique across all users.
type Plan struct {
	Name         string
	UserID       int64
	LastModified time.Time
}

const (
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationAlert   = "alert"

	NotificationUnread   = "unread"
	NotificationRead     = "read"
	NotificationArchived = "archived"
)

type Notification struct {
	ID        int64
	PlanName  string
	Type      string
	Title     string
	Body      string
	Status    string
	CreatedAt time.Time
}
