package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"solosphere/db"
	"solosphere/metrics"
	"solosphere/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ db.JobStore = (*JobStore)(nil)

// JobStore caches single-job lookups in front of another JobStore. Writes
// that go through it drop the cached copy; list and search queries always
// hit the store. Cache failures are logged and otherwise ignored.
//
// Every invalidation bumps gen. A read only fills the cache if gen is
// unchanged since before it loaded from the store, so a load that raced a
// write through this instance is never cached. Writes made by other
// instances are still visible only after the TTL.
type JobStore struct {
	inner db.JobStore
	cache Client
	ttl   time.Duration
	log   *zerolog.Logger

	mu  sync.Mutex
	gen uint64
}

func NewJobStore(inner db.JobStore, cache Client, ttl time.Duration, logger *zerolog.Logger) *JobStore {
	return &JobStore{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func jobKey(id primitive.ObjectID) string { return "solosphere:job:" + id.Hex() }

func (s *JobStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	key := jobKey(id)
	b, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		if doc, derr := decodeDocument(b); derr == nil {
			metrics.IncCacheRequest("job", "hit")
			return doc, nil
		}
		metrics.IncCacheRequest("job", "error")
	case errors.Is(err, ErrMiss):
		metrics.IncCacheRequest("job", "miss")
	default:
		metrics.IncCacheRequest("job", "error")
		s.log.Warn().Err(err).Str("key", key).Msg("job cache read failed")
	}

	gen := s.generation()
	doc, err := s.inner.FindByID(ctx, id)
	if err != nil || doc == nil {
		return doc, err
	}
	if b, err := bson.Marshal(doc); err == nil {
		s.fill(ctx, key, b, gen)
	}
	return doc, nil
}

func (s *JobStore) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// fill writes the entry unless an invalidation ran since gen was read. The
// lock is held across Set so a concurrent invalidation either bumps gen first
// or deletes the entry afterwards.
func (s *JobStore) fill(ctx context.Context, key string, b []byte, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		metrics.IncCacheRequest("job", "skipped")
		return
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("job cache write failed")
	}
}

func (s *JobStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	defer s.invalidate(ctx, id)
	return s.inner.DeleteByID(ctx, id)
}

func (s *JobStore) UpsertByID(ctx context.Context, id primitive.ObjectID, fields models.Document) (models.UpdateResult, error) {
	defer s.invalidate(ctx, id)
	return s.inner.UpsertByID(ctx, id, fields)
}

func (s *JobStore) IncrementBidCount(ctx context.Context, id primitive.ObjectID) (int64, error) {
	defer s.invalidate(ctx, id)
	return s.inner.IncrementBidCount(ctx, id)
}

func (s *JobStore) SetBidCount(ctx context.Context, id primitive.ObjectID, count int64) (int64, error) {
	defer s.invalidate(ctx, id)
	return s.inner.SetBidCount(ctx, id, count)
}

func (s *JobStore) Insert(ctx context.Context, doc models.Document) (primitive.ObjectID, error) {
	return s.inner.Insert(ctx, doc)
}

func (s *JobStore) FindAll(ctx context.Context) ([]models.Document, error) {
	return s.inner.FindAll(ctx)
}

func (s *JobStore) FindByOwnerEmail(ctx context.Context, email string) ([]models.Document, error) {
	return s.inner.FindByOwnerEmail(ctx, email)
}

func (s *JobStore) Search(ctx context.Context, pattern, category string) ([]models.Document, error) {
	return s.inner.Search(ctx, pattern, category)
}

func (s *JobStore) IDs(ctx context.Context) ([]primitive.ObjectID, error) {
	return s.inner.IDs(ctx)
}

func (s *JobStore) invalidate(ctx context.Context, id primitive.ObjectID) {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()

	// The request context may already be done; the delete must still go out.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.cache.Del(ctx, jobKey(id)); err != nil {
		s.log.Warn().Err(err).Str("job_id", id.Hex()).Msg("job cache invalidation failed")
	}
}

// decodeDocument reverses bson.Marshal, keeping ObjectIDs and dates typed and
// decoding embedded documents as maps.
func decodeDocument(b []byte) (models.Document, error) {
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(b))
	if err != nil {
		return nil, err
	}
	dec.DefaultDocumentM()
	var doc models.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
