package models

// Job fields this service reads or writes. Everything else a client posts is
// stored and returned untouched.
const (
	FieldID         = "_id"
	FieldTitle      = "title"
	FieldCategory   = "category"
	FieldBuyer      = "buyer"
	FieldBuyerEmail = "buyer.email"
	FieldBidCount   = "bid_count"
)
