package models

import "time"

// Postcard status values.
const (
	StatusTraveling = "traveling"
	StatusStopped   = "stopped"
	StatusCollected = "collected"
)

// User represents a registered user profile
type User struct {
	ID              string    `json:"user_id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	ProfileImageURL string    `json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// PublicProfile is the subset of User visible to other users
type PublicProfile struct {
	ID              string `json:"user_id"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Public returns the public view of a user
func (u *User) Public() *PublicProfile {
	return &PublicProfile{
		ID:              u.ID,
		Username:        u.Username,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// Position is a geographic coordinate pair. Lat/Lon are Coordinates
// rather than plain floats because positions written by the location
// worker may come back from storage as numeric strings.
type Position struct {
	Lat Coordinate `json:"lat"`
	Lon Coordinate `json:"lon"`
}

// Postcard represents a geotagged image+text post
type Postcard struct {
	ID              string    `json:"postcard_id"`
	AuthorID        string    `json:"author_id"`
	ImageURL        string    `json:"image_url"`
	Text            string    `json:"text"`
	Status          string    `json:"status"`
	CurrentPosition Position  `json:"current_position"`
	NextDestination Position  `json:"next_destination"`
	LikesCount      int       `json:"likes_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PathPoint is one stop on a postcard's journey
type PathPoint struct {
	PostcardID  string    `json:"-"`
	Prefecture  string    `json:"prefecture"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	ArrivalTime time.Time `json:"arrival_time"`
}

// CollectionItem is a postcard in a user's collection
type CollectionItem struct {
	PostcardID  string    `json:"postcard_id"`
	ImageURL    string    `json:"image_url"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	AuthorID    string    `json:"author_id"`
	LikesCount  int       `json:"likes_count"`
	CollectedAt time.Time `json:"collected_at"`
}

// PushSubscription is a stored web-push subscription for a user
type PushSubscription struct {
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}
