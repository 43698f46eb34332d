package model

import "time"

// CachedPart is one stored unit of a fetched artifact. The pair
// (source_url, part_number) is unique; a re-fetch of the same link
// never duplicates a part row.
type CachedPart struct {
	ID uint64 `gorm:"primaryKey"`

	SourceURL string `gorm:"column:source_url;type:varchar(500);not null;index;uniqueIndex:idx_source_part"`

	// UserID attributes who paid for the first retrieval.
	UserID uint64 `gorm:"column:user_id;not null;index"`

	// FileID is the transport-side handle that lets the gateway resend
	// the artifact without re-uploading bytes.
	FileID   string `gorm:"column:file_id;type:varchar(255);not null"`
	FileSize int64  `gorm:"column:file_size;not null;default:0"`

	Title     string `gorm:"column:title;type:varchar(500);not null;default:''"`
	Performer string `gorm:"column:performer;type:varchar(255);not null;default:''"`

	PartNumber int `gorm:"column:part_number;not null;default:1;uniqueIndex:idx_source_part"`
	TotalParts int `gorm:"column:total_parts;not null;default:1"`

	DownloadedAt time.Time `gorm:"column:downloaded_at;autoCreateTime;index"`
}

// TableName returns the database table name.
func (CachedPart) TableName() string {
	return "cached_parts"
}
