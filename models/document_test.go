package models

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDocument_Lookup(t *testing.T) {
	doc := Document{
		"title": "Build logo",
		"buyer": map[string]interface{}{"email": "a@x.com", "name": "A"},
		"meta":  primitive.M{"inner": primitive.M{"deep": 1}},
	}

	if got := doc.BuyerEmail(); got != "a@x.com" {
		t.Fatalf("BuyerEmail = %q, want a@x.com", got)
	}
	if v, ok := doc.Lookup("meta.inner.deep"); !ok || v != 1 {
		t.Fatalf("Lookup(meta.inner.deep) = %v, %v", v, ok)
	}
	if _, ok := doc.Lookup("buyer.phone"); ok {
		t.Fatal("Lookup of missing leaf should fail")
	}
	if _, ok := doc.Lookup("title.x"); ok {
		t.Fatal("Lookup through a string should fail")
	}
}

func TestDocument_Set(t *testing.T) {
	doc := Document{"buyer": map[string]interface{}{"email": "a@x.com"}}
	doc.Set("buyer.name", "Ann")
	doc.Set("price.min", 10)

	if doc.StringAt("buyer.email") != "a@x.com" || doc.StringAt("buyer.name") != "Ann" {
		t.Fatalf("nested set clobbered siblings: %v", doc)
	}
	if v, ok := doc.Lookup("price.min"); !ok || v != 10 {
		t.Fatalf("intermediate document not created: %v", doc)
	}
}

func TestDocument_BidCount(t *testing.T) {
	cases := []struct {
		name string
		doc  Document
		want int64
	}{
		{"absent", Document{}, 0},
		{"json number", Document{FieldBidCount: float64(3)}, 3},
		{"int32", Document{FieldBidCount: int32(4)}, 4},
		{"int64", Document{FieldBidCount: int64(5)}, 5},
		{"string", Document{FieldBidCount: "7"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.doc.BidCount(); got != tc.want {
				t.Fatalf("BidCount = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDocument_CloneIsDeep(t *testing.T) {
	orig := Document{
		"buyer": map[string]interface{}{"email": "a@x.com"},
		"tags":  []interface{}{"x", map[string]interface{}{"k": "v"}},
	}
	cp := orig.Clone()
	cp.Set("buyer.email", "b@x.com")
	cp["tags"].([]interface{})[1].(map[string]interface{})["k"] = "changed"

	if orig.BuyerEmail() != "a@x.com" {
		t.Fatal("clone shares nested document with original")
	}
	if orig["tags"].([]interface{})[1].(map[string]interface{})["k"] != "v" {
		t.Fatal("clone shares nested array with original")
	}
	if Document(nil).Clone() != nil {
		t.Fatal("nil clone should stay nil")
	}
}

func TestParseID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := ParseID(id.Hex())
	if err != nil || got != id {
		t.Fatalf("ParseID(%s) = %v, %v", id.Hex(), got, err)
	}

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		if _, err := ParseID(bad); !errors.Is(err, ErrInvalidID) {
			t.Errorf("ParseID(%q) error = %v, want ErrInvalidID", bad, err)
		}
	}
}
