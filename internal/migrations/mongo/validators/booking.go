package validators

import "go.mongodb.org/mongo-driver/bson"

// BookingValidator restricts status to the configured booking statuses.
func BookingValidator(statuses []string) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{
				"class_id",
				"client_name",
				"client_email",
				"booking_time",
				"status",
				"active",
				"created_at",
			},
			"additionalProperties": true,

			"properties": bson.M{
				"_id": bson.M{
					"bsonType": "objectId",
				},

				"class_id": bson.M{
					"bsonType":  "string",
					"minLength": 24,
					"maxLength": 24,
				},

				"client_name": bson.M{
					"bsonType":  "string",
					"minLength": 1,
					"maxLength": 100,
				},

				"client_email": bson.M{
					"bsonType":  "string",
					"minLength": 3,
					"maxLength": 254,
				},

				"booking_time": bson.M{
					"bsonType": "date",
				},

				"status": bson.M{
					"bsonType": "string",
					"enum":     statuses,
				},

				"active": bson.M{
					"bsonType": "bool",
				},

				"created_at": bson.M{
					"bsonType": "date",
				},

				"updated_at": bson.M{
					"bsonType": "date",
				},
			},
		},

		// active must mirror status so the partial unique index stays exact.
		"$expr": bson.M{
			"$eq": bson.A{"$active", bson.M{"$ne": bson.A{"$status", "cancelled"}}},
		},
	}
}
