package domain

import "time"

// Shop represents a connected Shopify store and its installation credential.
// The access token is the secret issued during OAuth and must never leave the
// process boundary in responses or logs.
type Shop struct {
	ID          string     `json:"id" bson:"_id"`
	Domain      string     `json:"shop_domain" bson:"shop_domain"`
	AccessToken string     `json:"-" bson:"access_token"`
	Scope       string     `json:"scope" bson:"scope"`
	LastSyncAt  *time.Time `json:"last_sync_at" bson:"last_sync_at"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}
