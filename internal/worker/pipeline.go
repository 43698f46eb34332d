// Package worker implements the per-item pipeline the queue drains
// into: cache lookup, fetch delegation, chunking, cache population,
// delivery and stats updates.
package worker

import (
	"TuneRelay/internal/access"
	"TuneRelay/internal/cache"
	"TuneRelay/internal/chunk"
	"TuneRelay/internal/fetch"
	"TuneRelay/internal/gateway"
	"TuneRelay/internal/mq"
	"TuneRelay/internal/queue"
	"TuneRelay/internal/stats"
	"TuneRelay/model"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
)

type Pipeline struct {
	gw        gateway.Gateway
	access    *access.Controller
	cache     *cache.Cache
	stats     *stats.Aggregator
	fetcher   fetch.Fetcher
	partLimit int64
}

// NewPipeline wires the pipeline against its collaborators. partLimit
// is the transport's per-file byte limit.
func NewPipeline(
	gw gateway.Gateway,
	ctl *access.Controller,
	contentCache *cache.Cache,
	agg *stats.Aggregator,
	fetcher fetch.Fetcher,
	partLimit int64,
) *Pipeline {
	return &Pipeline{
		gw:        gw,
		access:    ctl,
		cache:     contentCache,
		stats:     agg,
		fetcher:   fetcher,
		partLimit: partLimit,
	}
}

// Process handles one queued request end to end: a usable cache hit is
// delivered from stored handles; a miss or a stale hit goes through a
// fresh fetch-chunk-store-deliver cycle.
func (p *Pipeline) Process(ctx context.Context, req queue.Request) error {
	userID, err := p.access.Register(req.TelegramID, req.FullName, req.UserName)
	if err != nil {
		p.send(req.ChatID, "Internal error, please try again later.")
		return fmt.Errorf("ensure user %d: %w", req.TelegramID, err)
	}

	result, err := p.cache.Lookup(req.SourceURL)
	if err != nil {
		log.Printf("worker: cache lookup failed for %s: %v", req.SourceURL, err)
		result = cache.Result{State: cache.Miss}
	}

	if result.State != cache.Miss {
		log.Printf("worker: cache %s for %s: %d of %d parts", result.State, req.SourceURL, len(result.Parts), result.TotalParts)
		deliverErr := p.deliverCached(req, result)
		if deliverErr == nil {
			p.stats.RecordRequest(userID)
			mq.PublishDelivery(req.SourceURL, req.TelegramID, true)
			return nil
		}
		if !errors.Is(deliverErr, gateway.ErrStaleHandle) {
			p.send(req.ChatID, "Failed to deliver the audio, please try again later.")
			return deliverErr
		}
		log.Printf("worker: stale handle for %s, falling back to a fresh fetch: %v", req.SourceURL, deliverErr)
		p.send(req.ChatID, "Cache is stale, downloading again...")
	} else {
		log.Printf("worker: cache miss for %s", req.SourceURL)
	}

	return p.fetchAndDeliver(ctx, req, userID)
}

// deliverCached resends all resolved parts by their stored handles.
func (p *Pipeline) deliverCached(req queue.Request, result cache.Result) error {
	for _, part := range result.Parts {
		title := part.Title
		if result.TotalParts > 1 {
			title = chunk.PartTitle(part.Title, part.PartNumber)
		}
		meta := gateway.Audio{Title: title, Performer: part.Performer}
		if err := p.gw.SendAudioHandle(req.ChatID, part.FileID, meta); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) fetchAndDeliver(ctx context.Context, req queue.Request, userID uint64) error {
	statusID, _ := p.gw.SendText(req.ChatID, "Downloading audio...")

	artifact, err := p.fetcher.Fetch(ctx, req.SourceURL)
	if err != nil {
		p.edit(req.ChatID, statusID, "Failed to download the audio: "+err.Error())
		mq.PublishFetchFailure(req.SourceURL, req.TelegramID, err)
		return fmt.Errorf("fetch %s: %w", req.SourceURL, err)
	}
	defer p.cleanup(artifact)

	parts := chunk.Plan(artifact.Size, p.partLimit, artifact.Title, artifact.Performer)
	if len(parts) > 1 {
		p.edit(req.ChatID, statusID, "The file is large, sending it in parts...")
	}
	files, err := chunk.SplitFile(artifact.Path, parts, artifact.WorkDir)
	if err != nil {
		p.edit(req.ChatID, statusID, "Failed to prepare the audio for sending.")
		return fmt.Errorf("split %s: %w", req.SourceURL, err)
	}

	// First-ever delivery of this link to this user is decided by the
	// absence of a part-1 record attributed to them, checked before
	// this generation is stored.
	firstEver := false
	if owned, checkErr := p.cache.HasOwnedFirstPart(userID, req.SourceURL); checkErr != nil {
		log.Printf("worker: first-delivery check failed for %s: %v", req.SourceURL, checkErr)
	} else {
		firstEver = !owned
	}

	var firstPartBytes int64
	for i, part := range parts {
		meta := gateway.Audio{Title: part.Title, Performer: part.Performer}
		handle, size, sendErr := p.gw.SendAudioFile(req.ChatID, files[i], meta)
		if sendErr != nil {
			p.edit(req.ChatID, statusID, "Failed to send the audio.")
			return fmt.Errorf("send part %d of %s: %w", part.Number, req.SourceURL, sendErr)
		}
		if part.Number == 1 {
			firstPartBytes = size
		}

		record := &model.CachedPart{
			SourceURL:  req.SourceURL,
			UserID:     userID,
			FileID:     handle,
			FileSize:   size,
			Title:      artifact.Title,
			Performer:  artifact.Performer,
			PartNumber: part.Number,
			TotalParts: part.TotalParts,
		}
		// Every part of the generation is stored; an already-present
		// part dedupes to a no-op inside Store.
		if _, created, storeErr := p.cache.Store(record); storeErr != nil {
			log.Printf("worker: cache store failed for part %d of %s: %v", part.Number, req.SourceURL, storeErr)
		} else if created {
			log.Printf("worker: cached part %d/%d for %s", part.Number, part.TotalParts, req.SourceURL)
		} else {
			log.Printf("worker: part %d of %s already cached", part.Number, req.SourceURL)
		}
	}

	p.stats.RecordRequest(userID)
	if firstEver {
		p.stats.RecordFirstDelivery(userID, firstPartBytes)
	}
	mq.PublishDelivery(req.SourceURL, req.TelegramID, false)

	if statusID != 0 {
		if err := p.gw.DeleteMessage(req.ChatID, statusID); err != nil {
			log.Printf("worker: status message delete failed: %v", err)
		}
	}
	return nil
}

func (p *Pipeline) cleanup(artifact *fetch.Artifact) {
	if artifact.WorkDir != "" {
		if err := os.RemoveAll(artifact.WorkDir); err != nil {
			log.Printf("worker: work dir cleanup failed: %v", err)
		}
		return
	}
	if err := os.Remove(artifact.Path); err != nil && !os.IsNotExist(err) {
		log.Printf("worker: artifact cleanup failed: %v", err)
	}
}

func (p *Pipeline) send(chatID int64, text string) {
	if _, err := p.gw.SendText(chatID, text); err != nil {
		log.Printf("worker: message to %d failed: %v", chatID, err)
	}
}

func (p *Pipeline) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		p.send(chatID, text)
		return
	}
	if err := p.gw.EditText(chatID, messageID, text); err != nil {
		p.send(chatID, text)
	}
}
