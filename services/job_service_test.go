package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"solosphere/db"
	"solosphere/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJobService_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	payload := models.Document{
		"title":       "Build logo",
		"category":    "design",
		"description": "vector, two colours",
		"buyer":       map[string]interface{}{"email": "a@x.com", "name": "Ann"},
		"min_price":   float64(50),
		"custom":      []interface{}{"kept", "as", "is"},
	}
	res, err := f.jobSvc.Create(ctx, payload)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Acknowledged || res.InsertedID.IsZero() {
		t.Fatalf("insert result = %+v", res)
	}
	if _, ok := payload[models.FieldBidCount]; ok {
		t.Fatal("Create mutated the caller's payload")
	}

	got, err := f.jobSvc.GetByID(ctx, res.InsertedID.Hex())
	if err != nil {
		t.Fatal(err)
	}

	want := payload.Clone()
	want[models.FieldID] = res.InsertedID
	want[models.FieldBidCount] = 0
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch\n got: %v\nwant: %v", got, want)
	}
}

func TestJobService_CreateKeepsPostedBidCountAndDropsID(t *testing.T) {
	f := newFixture()
	id := f.createJob(t, models.Document{"_id": "client-chosen", "bid_count": float64(3)})

	got := f.job(t, id)
	if got.BidCount() != 3 {
		t.Fatalf("bid_count = %d, want 3", got.BidCount())
	}
}

func TestJobService_GetByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	t.Run("missing job is nil without error", func(t *testing.T) {
		doc, err := f.jobSvc.GetByID(ctx, primitive.NewObjectID().Hex())
		if err != nil || doc != nil {
			t.Fatalf("got %v, %v", doc, err)
		}
	})

	t.Run("malformed id is a validation error", func(t *testing.T) {
		_, err := f.jobSvc.GetByID(ctx, "not-an-id")
		if !errors.Is(err, models.ErrInvalidID) {
			t.Fatalf("err = %v, want ErrInvalidID", err)
		}
	})
}

func TestJobService_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.createJob(t, models.Document{"title": "x"})

	for i, want := range []int64{1, 0} {
		res, err := f.jobSvc.DeleteByID(ctx, id.Hex())
		if err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
		if res.DeletedCount != want {
			t.Fatalf("delete #%d DeletedCount = %d, want %d", i+1, res.DeletedCount, want)
		}
	}

	if _, err := f.jobSvc.DeleteByID(ctx, "xyz"); !errors.Is(err, models.ErrInvalidID) {
		t.Fatalf("err = %v, want ErrInvalidID", err)
	}
}

func TestJobService_UpsertByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	t.Run("existing job changes only the given field", func(t *testing.T) {
		id := f.createJob(t, models.Document{"title": "Old", "category": "design", "deadline": "2026-01-01"})
		before := f.job(t, id)

		res, err := f.jobSvc.UpsertByID(ctx, id.Hex(), models.Document{"title": "New"})
		if err != nil {
			t.Fatal(err)
		}
		if res.MatchedCount != 1 || res.ModifiedCount != 1 {
			t.Fatalf("result = %+v", res)
		}

		after := f.job(t, id)
		before[models.FieldTitle] = "New"
		if !reflect.DeepEqual(after, before) {
			t.Fatalf("unexpected changes\n got: %v\nwant: %v", after, before)
		}
	})

	t.Run("missing job is created under the given id", func(t *testing.T) {
		id := primitive.NewObjectID()
		res, err := f.jobSvc.UpsertByID(ctx, id.Hex(), models.Document{"title": "Fresh", "category": "web"})
		if err != nil {
			t.Fatal(err)
		}
		if res.UpsertedCount != 1 || res.UpsertedID == nil || *res.UpsertedID != id {
			t.Fatalf("result = %+v", res)
		}
		want := models.Document{"_id": id, "title": "Fresh", "category": "web"}
		if got := f.job(t, id); !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("payload _id cannot move the job", func(t *testing.T) {
		id := f.createJob(t, models.Document{"title": "Pinned"})
		other := primitive.NewObjectID()
		if _, err := f.jobSvc.UpsertByID(ctx, id.Hex(), models.Document{"_id": other, "title": "Still pinned"}); err != nil {
			t.Fatal(err)
		}
		if got := f.job(t, id); got.Title() != "Still pinned" {
			t.Fatalf("title = %q", got.Title())
		}
	})

	t.Run("empty payload creates a bare job", func(t *testing.T) {
		id := primitive.NewObjectID()
		res, err := f.jobSvc.UpsertByID(ctx, id.Hex(), models.Document{})
		if err != nil {
			t.Fatal(err)
		}
		if res.UpsertedCount != 1 || res.UpsertedID == nil || *res.UpsertedID != id {
			t.Fatalf("result = %+v", res)
		}
		if got := f.job(t, id); !reflect.DeepEqual(got, models.Document{"_id": id}) {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("empty payload leaves an existing job alone", func(t *testing.T) {
		id := f.createJob(t, models.Document{"title": "Kept"})
		before := f.job(t, id)
		res, err := f.jobSvc.UpsertByID(ctx, id.Hex(), models.Document{})
		if err != nil || res.MatchedCount != 1 || res.ModifiedCount != 0 {
			t.Fatalf("result = %+v, %v", res, err)
		}
		if got := f.job(t, id); !reflect.DeepEqual(got, before) {
			t.Fatalf("got %v, want %v", got, before)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := f.jobSvc.UpsertByID(ctx, "nope", models.Document{"title": "x"})
		if !errors.Is(err, models.ErrInvalidID) {
			t.Fatalf("err = %v, want ErrInvalidID", err)
		}
	})
}

func TestJobService_Search(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.createJob(t, models.Document{"title": "Foo logo", "category": "design"})
	f.createJob(t, models.Document{"title": "FOOTER markup", "category": "web"})
	f.createJob(t, models.Document{"title": "Banner", "category": "design"})
	f.createJob(t, models.Document{"description": "untitled"})

	all, err := f.jobSvc.Search(ctx, "", "")
	if err != nil || len(all) != 4 {
		t.Fatalf("empty search = %d jobs, %v", len(all), err)
	}

	got, err := f.jobSvc.Search(ctx, "foo", "design")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title() != "Foo logo" {
		t.Fatalf("search(foo, design) = %v", got)
	}

	got, _ = f.jobSvc.Search(ctx, "foo", "")
	if len(got) != 2 {
		t.Fatalf("search(foo) = %d jobs, want 2", len(got))
	}
}

func TestJobService_SearchRejectsBadPatternBeforeStore(t *testing.T) {
	jobs := &failingJobs{JobStore: db.NewMemoryStore().Jobs()}
	svc := NewJobService(jobs, newTestLogger())

	_, err := svc.Search(context.Background(), "([", "")
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if jobs.calls != 0 {
		t.Fatalf("store called %d times", jobs.calls)
	}
}

func TestJobService_StoreErrorsPropagate(t *testing.T) {
	jobs := &failingJobs{JobStore: db.NewMemoryStore().Jobs(), errSearch: errStoreDown}
	svc := NewJobService(jobs, newTestLogger())

	if _, err := svc.Search(context.Background(), "x", ""); !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v, want store error", err)
	}
	if jobs.calls != 1 {
		t.Fatalf("store called %d times, want exactly 1 (no retry)", jobs.calls)
	}
}
