package db

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sync"

	"solosphere/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process document store holding a jobs and a bids
// collection. A single lock makes every operation atomic on its document,
// which is the guarantee the service expects from MongoDB. Nothing spans two
// calls: a find followed by an insert can interleave with other callers.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs []models.Document
	bids []models.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Jobs returns the jobs collection.
func (m *MemoryStore) Jobs() *MemoryJobStore { return &MemoryJobStore{m: m} }

// Bids returns the bids collection.
func (m *MemoryStore) Bids() *MemoryBidStore { return &MemoryBidStore{m: m} }

var (
	_ JobStore = (*MemoryJobStore)(nil)
	_ BidStore = (*MemoryBidStore)(nil)
)

type MemoryJobStore struct{ m *MemoryStore }

type MemoryBidStore struct{ m *MemoryStore }

func (s *MemoryJobStore) Insert(_ context.Context, doc models.Document) (primitive.ObjectID, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return insertDoc(&s.m.jobs, doc)
}

func (s *MemoryJobStore) FindAll(_ context.Context) ([]models.Document, error) {
	return s.m.filter(jobsOf, func(models.Document) bool { return true }), nil
}

func (s *MemoryJobStore) FindByOwnerEmail(_ context.Context, email string) ([]models.Document, error) {
	return s.m.filter(jobsOf, fieldEquals(models.FieldBuyerEmail, email)), nil
}

func (s *MemoryJobStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Document, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	if i := indexOf(s.m.jobs, id); i >= 0 {
		return s.m.jobs[i].Clone(), nil
	}
	return nil, nil
}

func (s *MemoryJobStore) DeleteByID(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	i := indexOf(s.m.jobs, id)
	if i < 0 {
		return 0, nil
	}
	s.m.jobs = append(s.m.jobs[:i], s.m.jobs[i+1:]...)
	return 1, nil
}

func (s *MemoryJobStore) UpsertByID(_ context.Context, id primitive.ObjectID, fields models.Document) (models.UpdateResult, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if i := indexOf(s.m.jobs, id); i >= 0 {
		modified := setFields(s.m.jobs[i], fields)
		res := models.UpdateResult{Acknowledged: true, MatchedCount: 1}
		if modified {
			res.ModifiedCount = 1
		}
		return res, nil
	}

	doc := models.Document{models.FieldID: id}
	setFields(doc, fields)
	s.m.jobs = append(s.m.jobs, doc)
	return models.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &id}, nil
}

func (s *MemoryJobStore) Search(_ context.Context, pattern, category string) ([]models.Document, error) {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("search jobs: %w", err)
		}
	}
	return s.m.filter(jobsOf, func(doc models.Document) bool {
		if re != nil {
			title, ok := doc[models.FieldTitle].(string)
			if !ok || !re.MatchString(title) {
				return false
			}
		}
		if category != "" {
			if v, ok := doc[models.FieldCategory]; !ok || v != interface{}(category) {
				return false
			}
		}
		return true
	}), nil
}

func (s *MemoryJobStore) IncrementBidCount(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	i := indexOf(s.m.jobs, id)
	if i < 0 {
		return 0, nil
	}
	s.m.jobs[i][models.FieldBidCount] = s.m.jobs[i].BidCount() + 1
	return 1, nil
}

func (s *MemoryJobStore) SetBidCount(_ context.Context, id primitive.ObjectID, count int64) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	i := indexOf(s.m.jobs, id)
	if i < 0 {
		return 0, nil
	}
	s.m.jobs[i][models.FieldBidCount] = count
	return 1, nil
}

func (s *MemoryJobStore) IDs(_ context.Context) ([]primitive.ObjectID, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	ids := make([]primitive.ObjectID, 0, len(s.m.jobs))
	for _, doc := range s.m.jobs {
		if id, ok := doc.ID(); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MemoryBidStore) Insert(_ context.Context, doc models.Document) (primitive.ObjectID, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return insertDoc(&s.m.bids, doc)
}

func (s *MemoryBidStore) FindOne(_ context.Context, email, jobID string) (models.Document, error) {
	docs := s.m.filter(bidsOf, func(doc models.Document) bool {
		return fieldEquals(models.FieldEmail, email)(doc) && fieldEquals(models.FieldJobID, jobID)(doc)
	})
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (s *MemoryBidStore) FindByBidder(_ context.Context, email string) ([]models.Document, error) {
	return s.m.filter(bidsOf, fieldEquals(models.FieldEmail, email)), nil
}

func (s *MemoryBidStore) FindByBuyer(_ context.Context, email string) ([]models.Document, error) {
	return s.m.filter(bidsOf, fieldEquals(models.FieldBidBuyer, email)), nil
}

func (s *MemoryBidStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status interface{}) (models.UpdateResult, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	i := indexOf(s.m.bids, id)
	if i < 0 {
		return models.UpdateResult{Acknowledged: true}, nil
	}
	res := models.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if setFields(s.m.bids[i], models.Document{models.FieldStatus: status}) {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (s *MemoryBidStore) CountForJob(_ context.Context, jobID string) (int64, error) {
	return int64(len(s.m.filter(bidsOf, fieldEquals(models.FieldJobID, jobID)))), nil
}

func jobsOf(m *MemoryStore) []models.Document { return m.jobs }

func bidsOf(m *MemoryStore) []models.Document { return m.bids }

// filter reads the collection chosen by col under the read lock and returns
// clones of the documents keep accepts.
func (m *MemoryStore) filter(col func(*MemoryStore) []models.Document, keep func(models.Document) bool) []models.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Document{}
	for _, doc := range col(m) {
		if keep(doc) {
			out = append(out, doc.Clone())
		}
	}
	return out
}

func insertDoc(col *[]models.Document, doc models.Document) (primitive.ObjectID, error) {
	stored := doc.Clone()
	if stored == nil {
		stored = models.Document{}
	}
	id, ok := stored.ID()
	if !ok {
		if _, present := stored[models.FieldID]; present {
			return primitive.NilObjectID, fmt.Errorf("insert: unsupported _id type %T", stored[models.FieldID])
		}
		id = primitive.NewObjectID()
		stored[models.FieldID] = id
	} else if indexOf(*col, id) >= 0 {
		return primitive.NilObjectID, fmt.Errorf("insert: duplicate key %s", id.Hex())
	}
	*col = append(*col, stored)
	return id, nil
}

func indexOf(col []models.Document, id primitive.ObjectID) int {
	for i, doc := range col {
		if docID, ok := doc.ID(); ok && docID == id {
			return i
		}
	}
	return -1
}

func fieldEquals(path, want string) func(models.Document) bool {
	return func(doc models.Document) bool {
		v, ok := doc.Lookup(path)
		if !ok {
			return false
		}
		s, ok := v.(string)
		return ok && s == want
	}
}

// setFields applies $set semantics and reports whether any value changed.
func setFields(doc, fields models.Document) bool {
	changed := false
	for path, v := range fields {
		if cur, ok := doc.Lookup(path); ok && reflect.DeepEqual(cur, v) {
			continue
		}
		doc.Set(path, models.CloneValue(v))
		changed = true
	}
	return changed
}
