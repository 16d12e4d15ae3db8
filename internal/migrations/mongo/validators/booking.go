package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"tenant_id",
			"client_email",
			"client_name",
			"status",
			"slot_held",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"tenant_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			// Date mode: calendar day in the tenant's timezone.
			"date": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{4}-\\d{2}-\\d{2}$",
			},

			// Timeslot mode.
			"service_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"start_time": bson.M{
				"bsonType": "date",
			},
			"end_time": bson.M{
				"bsonType": "date",
			},
			"client_timezone": bson.M{
				"bsonType": "string",
			},

			"client_email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"client_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"paid",
					"cancelled",
					"refunded",
					"fulfilled",
				},
			},

			"slot_held": bson.M{
				"bsonType": "bool",
			},

			"cancelled_at": bson.M{
				"bsonType": "date",
			},

			"cancelled_by": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
