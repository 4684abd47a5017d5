package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"client_id",
			"title",
			"start_time",
			"end_time",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"client_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
