package models

// Bid fields. FieldBidBuyer holds a copy of the job owner's email so owners
// can list bids on their jobs without a join.
const (
	FieldEmail    = "email"
	FieldJobID    = "jobId"
	FieldBidBuyer = "buyer"
	FieldStatus   = "status"
)

// Bid statuses. The store accepts any value on update; these are the ones
// the client application uses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
)
