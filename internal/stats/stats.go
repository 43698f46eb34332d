// Package stats tracks per-user request and delivery counters. Counter
// writes are best effort; a stats failure never fails a delivery.
package stats

import (
	"TuneRelay/internal/cache"
	"TuneRelay/model"
	"log"

	"gorm.io/gorm"
)

type Aggregator struct {
	db      *gorm.DB
	content *cache.Cache
}

// New builds an Aggregator over the shared database and content cache.
func New(db *gorm.DB, content *cache.Cache) *Aggregator {
	return &Aggregator{db: db, content: content}
}

// RecordRequest counts one successful delivery, cached or fresh.
func (a *Aggregator) RecordRequest(userID uint64) {
	err := a.db.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("requests_count", gorm.Expr("requests_count + 1")).Error
	if err != nil {
		log.Printf("stats: request count update failed for user %d: %v", userID, err)
	}
}

// RecordFirstDelivery counts the first-ever successful delivery of a
// link to a user and attributes the first part's byte size.
func (a *Aggregator) RecordFirstDelivery(userID uint64, bytes int64) {
	err := a.db.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"downloads_count":       gorm.Expr("downloads_count + 1"),
			"total_downloaded_size": gorm.Expr("total_downloaded_size + ?", bytes),
		}).Error
	if err != nil {
		log.Printf("stats: delivery count update failed for user %d: %v", userID, err)
	}
}

// Summary is the aggregate view served to the administrator.
type Summary struct {
	TotalUsers       int64
	ApprovedUsers    int64
	TotalRequests    int64
	UniqueDeliveries int64
	UniqueCachedURLs int64
	TotalBytes       int64
}

// Summary aggregates the counters across all users.
func (a *Aggregator) Summary() (Summary, error) {
	var out Summary
	if err := a.db.Model(&model.User{}).Count(&out.TotalUsers).Error; err != nil {
		return Summary{}, err
	}
	err := a.db.Model(&model.User{}).
		Where("approval = ?", model.ApprovalApproved).
		Count(&out.ApprovedUsers).Error
	if err != nil {
		return Summary{}, err
	}

	type totals struct {
		Requests  int64
		Downloads int64
		Bytes     int64
	}
	var t totals
	err = a.db.Model(&model.User{}).
		Select("COALESCE(SUM(requests_count), 0) AS requests, COALESCE(SUM(downloads_count), 0) AS downloads, COALESCE(SUM(total_downloaded_size), 0) AS bytes").
		Scan(&t).Error
	if err != nil {
		return Summary{}, err
	}
	out.TotalRequests = t.Requests
	out.UniqueDeliveries = t.Downloads
	out.TotalBytes = t.Bytes

	unique, err := a.content.CountDistinctURLs()
	if err != nil {
		return Summary{}, err
	}
	out.UniqueCachedURLs = unique
	return out, nil
}
