package users

import "time"

// User is the stored identity behind a JWT subject (e.g. "google:<sub>").
// Guest callers identified by X-Guest-Id are never written here; their
// generations and quota key off the transient guest id alone.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	PictureURL string    `json:"pictureUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
