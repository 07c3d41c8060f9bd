package model

import "time"

const (
	AudioStatusPending = "pending"
	AudioStatusReady   = "ready"
	AudioStatusFailed  = "failed"
)

// AudioMapping ties an external audio source URL to the URL of its
// transcoded copy in object storage. SourceURL is stored in normalized form
// and is unique across all mappings; StorageURL stays empty until the worker
// finishes the download.
type AudioMapping struct {
	ID             string    `json:"id"`
	SourceURL      string    `json:"sourceUrl"`
	StorageURL     string    `json:"storageUrl,omitempty"`
	Status         string    `json:"status"`
	LastError      string    `json:"-"`
	CreatedBy      string    `json:"createdBy,omitempty"`
	RequestedCount int       `json:"requestedCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AudioJob is the payload carried on the work queue for one download.
type AudioJob struct {
	SourceURL   string `json:"source_url"`
	RequestedBy string `json:"requested_by,omitempty"`
}
