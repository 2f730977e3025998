// Package repository caches the remote service's collections client-side.
// The cache is the only shared mutable state in the application: every other
// component reads a Snapshot by value and treats it as immutable, and every
// mutation goes through a remote call followed by a full reload.
package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"research-assistant-cli/internal/dto"
	"research-assistant-cli/internal/entity"
	"research-assistant-cli/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const snapshotKey = "collections"

// Snapshot is one atomic view of both collections. Reference-set file counts
// and inquiry listings are server truth; a snapshot is never patched locally.
type Snapshot struct {
	ReferenceSets []entity.ReferenceSet
	Inquiries     []entity.Inquiry
	LoadedAt      time.Time
}

// ReferenceSet looks up a reference set by id in this snapshot.
func (s Snapshot) ReferenceSet(id uuid.UUID) (entity.ReferenceSet, bool) {
	for _, rs := range s.ReferenceSets {
		if rs.Id == id {
			return rs, true
		}
	}
	return entity.ReferenceSet{}, false
}

// Inquiry looks up an inquiry by id in this snapshot.
func (s Snapshot) Inquiry(id uuid.UUID) (entity.Inquiry, bool) {
	for _, inq := range s.Inquiries {
		if inq.Id == id {
			return inq, true
		}
	}
	return entity.Inquiry{}, false
}

type ICollectionRepository interface {
	Reload(ctx context.Context) (Snapshot, error)
	Current() (Snapshot, bool)
	CreateReferenceSet(ctx context.Context, domain, description string) (uuid.UUID, error)
	DeleteReferenceSet(ctx context.Context, id uuid.UUID) error
	CreateInquiry(ctx context.Context, title, description string, referenceSetIds []uuid.UUID) (uuid.UUID, error)
	DeleteInquiry(ctx context.Context, id uuid.UUID) error
	Reset()
}

type collectionAPI interface {
	ListReferenceSets(ctx context.Context) ([]entity.ReferenceSet, error)
	ListInquiries(ctx context.Context) ([]entity.Inquiry, error)
	CreateReferenceSet(ctx context.Context, req *dto.CreateReferenceSetRequest) (uuid.UUID, error)
	DeleteReferenceSet(ctx context.Context, id uuid.UUID) error
	CreateInquiry(ctx context.Context, req *dto.CreateInquiryRequest) (uuid.UUID, error)
	DeleteInquiry(ctx context.Context, id uuid.UUID) error
}

type collectionRepository struct {
	api      collectionAPI
	cache    *gocache.Cache
	validate *validator.Validate
	logger   logger.ILogger
}

func NewCollectionRepository(api collectionAPI, snapshotTTL time.Duration, validate *validator.Validate, sysLogger logger.ILogger) ICollectionRepository {
	return &collectionRepository{
		api:      api,
		cache:    gocache.New(snapshotTTL, 10*time.Minute),
		validate: validate,
		logger:   sysLogger,
	}
}

// Reload fetches both collections concurrently and applies them
// all-or-nothing: if either fetch fails the cached snapshot is kept as-is
// and the first error is returned. The UI never shows one fresh collection
// against a stale other.
func (r *collectionRepository) Reload(ctx context.Context) (Snapshot, error) {
	var (
		wg        sync.WaitGroup
		refSets   []entity.ReferenceSet
		inquiries []entity.Inquiry
		refErr    error
		inqErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		refSets, refErr = r.api.ListReferenceSets(ctx)
	}()
	go func() {
		defer wg.Done()
		inquiries, inqErr = r.api.ListInquiries(ctx)
	}()
	wg.Wait()

	if refErr != nil {
		return r.retained(), fmt.Errorf("reload reference sets: %w", refErr)
	}
	if inqErr != nil {
		return r.retained(), fmt.Errorf("reload inquiries: %w", inqErr)
	}

	snap := Snapshot{
		ReferenceSets: refSets,
		Inquiries:     inquiries,
		LoadedAt:      time.Now(),
	}
	r.cache.Set(snapshotKey, snap, gocache.DefaultExpiration)
	r.logger.Info("repository", "collections reloaded", map[string]interface{}{
		"reference_sets": len(refSets),
		"inquiries":      len(inquiries),
	})
	return snap, nil
}

// Current returns the cached snapshot. The second return is false when
// nothing has been loaded yet or the TTL has lapsed.
func (r *collectionRepository) Current() (Snapshot, bool) {
	if x, found := r.cache.Get(snapshotKey); found {
		return x.(Snapshot), true
	}
	return Snapshot{}, false
}

func (r *collectionRepository) CreateReferenceSet(ctx context.Context, domain, description string) (uuid.UUID, error) {
	req := &dto.CreateReferenceSetRequest{Domain: domain, Description: description}
	if err := r.validate.Struct(req); err != nil {
		return uuid.Nil, err
	}
	id, err := r.api.CreateReferenceSet(ctx, req)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := r.Reload(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("reference set created but not yet visible: %w", err)
	}
	return id, nil
}

func (r *collectionRepository) DeleteReferenceSet(ctx context.Context, id uuid.UUID) error {
	if err := r.api.DeleteReferenceSet(ctx, id); err != nil {
		return err
	}
	if _, err := r.Reload(ctx); err != nil {
		return fmt.Errorf("reference set deleted but not yet visible: %w", err)
	}
	return nil
}

// CreateInquiry requires every selected reference set to exist in the
// currently loaded snapshot; an inquiry can never point at an id the user is
// not looking at.
func (r *collectionRepository) CreateInquiry(ctx context.Context, title, description string, referenceSetIds []uuid.UUID) (uuid.UUID, error) {
	req := &dto.CreateInquiryRequest{Title: title, Description: description, ReferenceSets: referenceSetIds}
	if err := r.validate.Struct(req); err != nil {
		return uuid.Nil, err
	}

	snap, loaded := r.Current()
	if !loaded {
		return uuid.Nil, fmt.Errorf("collections not loaded")
	}
	for _, id := range referenceSetIds {
		if _, ok := snap.ReferenceSet(id); !ok {
			return uuid.Nil, fmt.Errorf("unknown reference set %s", id)
		}
	}

	id, err := r.api.CreateInquiry(ctx, req)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := r.Reload(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("inquiry created but not yet visible: %w", err)
	}
	return id, nil
}

func (r *collectionRepository) DeleteInquiry(ctx context.Context, id uuid.UUID) error {
	if err := r.api.DeleteInquiry(ctx, id); err != nil {
		return err
	}
	if _, err := r.Reload(ctx); err != nil {
		return fmt.Errorf("inquiry deleted but not yet visible: %w", err)
	}
	return nil
}

// Reset flushes the cache. Called on logout by the session service.
func (r *collectionRepository) Reset() {
	r.cache.Flush()
}

func (r *collectionRepository) retained() Snapshot {
	snap, _ := r.Current()
	return snap
}
