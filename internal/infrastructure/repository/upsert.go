package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// upsertUpdate builds the update document for a keyed upsert: every field of
// doc is overwritten via $set, while created_at is stamped only when the
// upsert inserts a new row. Callers must zero the doc's CreatedAt so it is
// omitted from $set and cannot conflict with the $setOnInsert path.
func upsertUpdate(doc interface{}) bson.M {
	return bson.M{
		"$set":         doc,
		"$setOnInsert": bson.M{"created_at": time.Now()},
	}
}
