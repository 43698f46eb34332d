package model

import "time"

// Approval states for a user. Pending is assigned on first contact;
// approve/deny transitions are admin decisions and never regress.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalDenied   = "denied"
)

type User struct {
	ID uint64 `gorm:"primaryKey"`

	TelegramID int64 `gorm:"column:telegram_id;not null;uniqueIndex"`

	FullName string `gorm:"column:full_name;type:varchar(255);not null;default:''"`
	UserName string `gorm:"column:user_name;type:varchar(255);not null;default:''"`

	Approval   string     `gorm:"column:approval;type:varchar(16);not null;default:'pending';index"`
	ApprovedAt *time.Time `gorm:"column:approved_at"`

	RequestsCount       int64 `gorm:"column:requests_count;not null;default:0"`
	DownloadsCount      int64 `gorm:"column:downloads_count;not null;default:0"`
	TotalDownloadedSize int64 `gorm:"column:total_downloaded_size;not null;default:0"`

	CreatedAt time.Time
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}
