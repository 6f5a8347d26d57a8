package validators

import "go.mongodb.org/mongo-driver/bson"

// ClassValidator restricts status to the configured class statuses.
func ClassValidator(statuses []string) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{
				"name",
				"class_type",
				"instructor",
				"start_time",
				"end_time",
				"capacity",
				"available_spots",
				"timezone",
				"status",
				"created_at",
			},
			"additionalProperties": true,

			"properties": bson.M{
				"_id": bson.M{
					"bsonType": "objectId",
				},

				"name": bson.M{
					"bsonType":  "string",
					"minLength": 1,
					"maxLength": 100,
				},

				"class_type": bson.M{
					"bsonType":  "string",
					"minLength": 1,
					"maxLength": 50,
				},

				"instructor": bson.M{
					"bsonType":  "string",
					"minLength": 1,
					"maxLength": 100,
				},

				"start_time": bson.M{
					"bsonType": "date",
				},

				"end_time": bson.M{
					"bsonType": "date",
				},

				"capacity": bson.M{
					"bsonType": []string{"int", "long"},
					"minimum":  1,
				},

				"available_spots": bson.M{
					"bsonType": []string{"int", "long"},
					"minimum":  0,
				},

				"timezone": bson.M{
					"bsonType":  "string",
					"maxLength": 64,
				},

				"created_by": bson.M{
					"bsonType": "string",
				},

				"status": bson.M{
					"bsonType": "string",
					"enum":     statuses,
				},

				"created_at": bson.M{
					"bsonType": "date",
				},

				"updated_at": bson.M{
					"bsonType": "date",
				},
			},
		},

		// available_spots never leaves [0, capacity] and classes end after they start.
		"$expr": bson.M{
			"$and": bson.A{
				bson.M{"$gte": bson.A{"$available_spots", 0}},
				bson.M{"$lte": bson.A{"$available_spots", "$capacity"}},
				bson.M{"$gt": bson.A{"$end_time", "$start_time"}},
			},
		},
	}
}
