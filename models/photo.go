package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Photo is a gallery image stored under the Gallery prefix. Photos are never announced.
type Photo struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title      string             `bson:"title" json:"title"`
	ObjectName string             `bson:"object_name" json:"object_name"`
	Size       int64              `bson:"size" json:"size"`
	SHA1Hash   string             `bson:"sha1_hash,omitempty" json:"sha1_hash,omitempty"`
	UploadedBy string             `bson:"uploaded_by" json:"uploaded_by"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
