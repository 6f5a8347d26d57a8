package model

import "time"

type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	ClassID     string    `json:"class_id" bson:"class_id" validate:"required,max=64"`
	ClientName  string    `json:"client_name" bson:"client_name" validate:"required,max=100"`
	ClientEmail string    `json:"client_email" bson:"client_email" validate:"required,email,max=254"`
	BookingTime time.Time `json:"booking_time" bson:"booking_time"`
	Status      string    `json:"status" bson:"status"`
	// Active mirrors status != cancelled so the unique index can be partial on it.
	Active    bool      `json:"-" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type BookingRequest struct {
	ClassID     string `json:"class_id" validate:"required,max=64"`
	ClientName  string `json:"client_name" validate:"required,max=100"`
	ClientEmail string `json:"client_email" validate:"required,email,max=254"`
}

// BookingView is a booking joined with the display fields of its class.
type BookingView struct {
	Booking    `bson:",inline"`
	ClassName  string    `json:"class_name" bson:"class_name"`
	ClassType  string    `json:"class_type" bson:"class_type"`
	Instructor string    `json:"instructor" bson:"instructor"`
	StartTime  time.Time `json:"start_time" bson:"start_time"`
	EndTime    time.Time `json:"end_time" bson:"end_time"`
	Timezone   string    `json:"timezone" bson:"timezone"`
}
