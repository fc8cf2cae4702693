// Package models defines the core data types shared across the application.
package models

import "time"

// Category classifies a disclosure by its title keywords.
type Category string

const (
	CategoryFinancialReport     Category = "Financial Report"
	CategoryCorporateAction     Category = "Corporate Action"
	CategoryRightsIssue         Category = "Rights Issue"
	CategoryMaterialInformation Category = "Material Information"
	CategoryOwnership           Category = "Ownership"
	CategoryAcquisition         Category = "Acquisition"
	CategoryOther               Category = "Other"
)

// Emoji returns the icon used when rendering the category in messages.
func (c Category) Emoji() string {
	switch c {
	case CategoryFinancialReport:
		return "📊"
	case CategoryCorporateAction:
		return "📈"
	case CategoryRightsIssue:
		return "💰"
	case CategoryMaterialInformation:
		return "ℹ️"
	case CategoryOwnership:
		return "👥"
	case CategoryAcquisition:
		return "🤝"
	default:
		return "📄"
	}
}

// Disclosure is one canonical, deduplicated IDX announcement.
// Immutable once stored except for the Notified flag.
type Disclosure struct {
	ID             string
	StockCode      string
	Title          string
	Date           string    // normalized when a known layout matched, raw upstream text otherwise
	EventTime      time.Time // sortable timestamp; zero when Date could not be parsed
	Category       Category
	AttachmentLink string
	FetchedAt      time.Time
	Notified       bool
}

// Subscriber is a Telegram chat receiving disclosure notifications.
type Subscriber struct {
	ChatID       int64
	DisplayName  string
	SubscribedAt time.Time
	Active       bool
}
