// internal/domain/models/asset.go
package models

// AssetRef describes an object held by the object store. Uploads return it
// and deletes require it. The JSON names match the store's own response
// shape so a client can post the descriptor back unchanged.
type AssetRef struct {
	Bucket   string `bson:"bucket" json:"Bucket"`
	Key      string `bson:"key" json:"Key"`
	Location string `bson:"location,omitempty" json:"Location,omitempty"`
	ETag     string `bson:"etag,omitempty" json:"ETag,omitempty"`
}

// IsZero reports whether the descriptor names no object.
func (a *AssetRef) IsZero() bool {
	return a == nil || a.Bucket == "" || a.Key == ""
}
