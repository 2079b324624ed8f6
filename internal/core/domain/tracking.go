package domain

import "time"

type TrackingEventName string

const (
	EventModDownload   TrackingEventName = "mod_download"
	EventAddonDownload TrackingEventName = "addon_download"
)

// DownloadDebounce is the window in which repeated downloads of the same
// version from the same address count once.
const DownloadDebounce = 10 * time.Minute

type TrackingEvent struct {
	ID            int64             `json:"id"`
	EventName     TrackingEventName `json:"event_name"`
	VisitableType string            `json:"visitable_type"`
	VisitableID   int64             `json:"visitable_id"`
	UserID        *int64            `json:"user_id"`
	IP            string            `json:"ip"`
	CreatedAt     time.Time         `json:"created_at"`
}
