package models

// StylistProfile is the read-model slice of a stylist record the booking
// engine needs: pricing and a push target. Profile management itself lives
// outside this service.
type StylistProfile struct {
	ID          string             `bson:"id" json:"id"`
	DisplayName string             `bson:"display_name" json:"displayName"`
	Rates       map[string]float64 `bson:"rates" json:"rates"` // keyed by booking type
	Currency    string             `bson:"currency" json:"currency"`
	FCMToken    string             `bson:"fcm_token,omitempty" json:"-"`
}

// UserProfile is the read-model slice of a user record the engine needs.
type UserProfile struct {
	ID          string `bson:"id" json:"id"`
	DisplayName string `bson:"display_name" json:"displayName"`
	FCMToken    string `bson:"fcm_token,omitempty" json:"-"`
}
