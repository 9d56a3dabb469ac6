package handlers

import (
	"net/http"

	"solosphere/models"
	"solosphere/services"

	"github.com/rs/zerolog"
)

// BidHandler handles HTTP requests for bid operations
type BidHandler struct {
	svc *services.BidService
	log *zerolog.Logger
}

// NewBidHandler creates a new bid handler
func NewBidHandler(svc *services.BidService, logger *zerolog.Logger) *BidHandler {
	return &BidHandler{svc: svc, log: logger}
}

// CreateBid handles POST /add-bids - a repeated (email, jobId) pair gets a
// 400 with a plain-text message
func (bh *BidHandler) CreateBid(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := bh.svc.CreateBid(r.Context(), doc)
	if err != nil {
		writeError(w, r, bh.log, err, "Failed to create bid")
		return
	}
	writeJSON(w, result)
}

// ListBids handles GET /bids/{email}?isBuyer= - any non-empty isBuyer lists
// bids received as job owner instead of bids placed
func (bh *BidHandler) ListBids(w http.ResponseWriter, r *http.Request) {
	asBuyer := r.URL.Query().Get("isBuyer") != ""

	bids, err := bh.svc.ListForUser(r.Context(), pathParam(r, "email"), asBuyer)
	if err != nil {
		writeError(w, r, bh.log, err, "Failed to retrieve bids")
		return
	}
	writeJSON(w, bids)
}

// UpdateBidStatus handles PATCH /bid-status-update/{id} - the body's status
// is stored as sent; an absent status is stored as null
func (bh *BidHandler) UpdateBidStatus(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := bh.svc.UpdateStatus(r.Context(), pathParam(r, "id"), doc[models.FieldStatus])
	if err != nil {
		writeError(w, r, bh.log, err, "Failed to update bid status")
		return
	}
	writeJSON(w, result)
}
