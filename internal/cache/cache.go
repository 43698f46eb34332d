package cache

import (
	"TuneRelay/model"
	"errors"
	"log"
	"sort"

	"gorm.io/gorm"
)

// State classifies a lookup outcome.
type State int

const (
	// Miss means no part is stored for the link at all.
	Miss State = iota
	// Partial means some but not all declared parts are stored. Partial
	// results are still delivered; resending what we have beats a
	// redundant fetch.
	Partial
	// Complete means every declared part is stored.
	Complete
)

func (s State) String() string {
	switch s {
	case Miss:
		return "miss"
	case Partial:
		return "partial"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Result is the outcome of a cache lookup. Parts are ordered by part
// number, each resolved to its most recently stored record.
type Result struct {
	State      State
	Parts      []model.CachedPart
	TotalParts int
}

// Cache is the sole reader and writer of cached_parts.
type Cache struct {
	db *gorm.DB
}

// New builds a Cache on top of the given database handle.
func New(db *gorm.DB) *Cache {
	return &Cache{db: db}
}

// Lookup resolves all stored parts for a link. When several fetch
// generations exist, the newest record per part number wins.
func (c *Cache) Lookup(sourceURL string) (Result, error) {
	var rows []model.CachedPart
	err := c.db.
		Where("source_url = ?", sourceURL).
		Order("downloaded_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return Result{}, err
	}
	if len(rows) == 0 {
		return Result{State: Miss}, nil
	}

	// Rows arrive newest-first, so the first record seen for a part
	// number is the winning one.
	byNumber := make(map[int]model.CachedPart, len(rows))
	for _, row := range rows {
		if _, ok := byNumber[row.PartNumber]; !ok {
			byNumber[row.PartNumber] = row
		}
	}
	parts := make([]model.CachedPart, 0, len(byNumber))
	for _, part := range byNumber {
		parts = append(parts, part)
	}
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].PartNumber < parts[j].PartNumber
	})

	total := parts[0].TotalParts
	if total < 1 {
		total = 1
	}
	state := Partial
	if len(parts) >= total {
		state = Complete
	}
	return Result{State: state, Parts: parts, TotalParts: total}, nil
}

// Store persists one part. If a record already exists for the same
// (source_url, part_number) pair the call is a no-op returning the
// existing identity; created reports whether a new row was written.
func (c *Cache) Store(part *model.CachedPart) (id uint64, created bool, err error) {
	err = c.db.Transaction(func(tx *gorm.DB) error {
		var existing model.CachedPart
		lookupErr := tx.
			Where("source_url = ? AND part_number = ?", part.SourceURL, part.PartNumber).
			Order("downloaded_at DESC, id DESC").
			First(&existing).Error
		if lookupErr == nil {
			id = existing.ID
			return nil
		}
		if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return lookupErr
		}
		if createErr := tx.Create(part).Error; createErr != nil {
			return createErr
		}
		id = part.ID
		created = true
		return nil
	})
	if err == nil {
		return id, created, nil
	}

	// Concurrent stores for the same key can still race past the
	// pre-check and trip the unique index. The winning record is
	// authoritative; re-read it instead of propagating the conflict.
	var winner model.CachedPart
	readErr := c.db.
		Where("source_url = ? AND part_number = ?", part.SourceURL, part.PartNumber).
		Order("downloaded_at DESC, id DESC").
		First(&winner).Error
	if readErr == nil {
		log.Printf("cache: store conflict on (%s, %d), keeping record %d", part.SourceURL, part.PartNumber, winner.ID)
		return winner.ID, false, nil
	}
	return 0, false, err
}

// HasOwnedFirstPart reports whether the user already has a part-1
// record attributed to them for the link.
func (c *Cache) HasOwnedFirstPart(userID uint64, sourceURL string) (bool, error) {
	var count int64
	err := c.db.Model(&model.CachedPart{}).
		Where("user_id = ? AND source_url = ? AND part_number = 1", userID, sourceURL).
		Count(&count).Error
	return count > 0, err
}

// CountDistinctURLs returns the number of unique cached links.
func (c *Cache) CountDistinctURLs() (int64, error) {
	var count int64
	err := c.db.Model(&model.CachedPart{}).
		Distinct("source_url").
		Count(&count).Error
	return count, err
}
