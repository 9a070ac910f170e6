package models

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Coarse asset file types stored in the database. Derived from the MIME type
// reported at upload time, not from file contents.
const (
	FileTypeVideo    = "video"
	FileTypeAudio    = "audio"
	FileTypeText     = "text"
	FileTypeMarkdown = "markdown"
	FileTypeOther    = "other"
)

// Processing job statuses. The status column is free-form text; these are the
// values this service reads and writes.
const (
	JobStatusCreated    = "created"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

type Asset struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Title     string
	FileName  string
	FileURL   string
	FileType  string
	MimeType  string
	Size      int64
	Content   sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AssetProcessingJob struct {
	ID            uuid.UUID
	AssetID       uuid.UUID
	ProjectID     uuid.UUID
	Status        string
	Attempts      int
	LastHeartBeat sql.NullTime
	ErrorMessage  sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FileTypeForMIME maps a MIME type to the coarse file type recorded on an
// asset: video/* and audio/* by prefix, text/plain and text/markdown by exact
// match, everything else "other".
func FileTypeForMIME(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return FileTypeVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return FileTypeAudio
	case mimeType == "text/plain":
		return FileTypeText
	case mimeType == "text/markdown":
		return FileTypeMarkdown
	default:
		return FileTypeOther
	}
}
