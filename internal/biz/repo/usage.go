package repo

import "context"

// UsageKind labels a counted user action.
type UsageKind string

const (
	UsageConversion  UsageKind = "conversion"
	UsageTimezone    UsageKind = "timezone"
	UsageCurrentTime UsageKind = "current_time"
	UsageToggle      UsageKind = "toggle_auto_conversion"
	UsageHelp        UsageKind = "help"
)

// UsageRepo records usage events for accounting.
type UsageRepo interface {
	Record(ctx context.Context, kind UsageKind) error
}
