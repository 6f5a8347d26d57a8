package model

import "time"

type FitnessClass struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string    `json:"name" bson:"name" validate:"required,max=100"`
	ClassType      string    `json:"class_type" bson:"class_type" validate:"required,max=50"`
	Instructor     string    `json:"instructor" bson:"instructor" validate:"required,max=100"`
	StartTime      time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Capacity       int       `json:"capacity" bson:"capacity" validate:"required,min=1"`
	AvailableSpots int       `json:"available_spots" bson:"available_spots"`
	Timezone       string    `json:"timezone" bson:"timezone" validate:"omitempty,max=64"`
	CreatedBy      string    `json:"created_by,omitempty" bson:"created_by,omitempty" validate:"omitempty,max=100"`
	Status         string    `json:"status" bson:"status" validate:"omitempty,max=32"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// Duration is the scheduled length of the class.
func (c *FitnessClass) Duration() time.Duration {
	return c.EndTime.Sub(c.StartTime)
}

// ClassFilter narrows the upcoming class listing. Zero values are ignored.
type ClassFilter struct {
	ClassType  string
	Instructor string
	From       *time.Time
	To         *time.Time
}
