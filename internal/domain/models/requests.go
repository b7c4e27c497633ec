package models

// SignalsRequest filters the signal history query.
type SignalsRequest struct {
	Symbol string `query:"symbol" validate:"omitempty,max=20"`
	Limit  int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
}

// RecentSignalsRequest filters the recent-signals query.
type RecentSignalsRequest struct {
	Symbol    string `query:"symbol" validate:"omitempty,max=20"`
	Direction string `query:"direction" validate:"omitempty,oneof=BUY SELL"`
	ValidOnly bool   `query:"valid_only"`
	Limit     int    `query:"limit" default:"50" validate:"gte=1,lte=1000"`
}
