package entity

type Seat struct {
	Base
	SeatNumber string `db:"seat_number"` // A1, A2, B1, etc.
	Section    string `db:"section"`
	IsActive   bool   `db:"is_active"`
}
