package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Site validation errors.
var (
	ErrEmptySiteID        = errors.New("site ID cannot be empty")
	ErrSiteWithoutOwner   = errors.New("site must belong to a user")
	ErrEmptySiteName      = errors.New("site name cannot be empty")
	ErrLatitudeOutOfRange = errors.New("latitude must be between -90 and 90")
	ErrLongitudeOutOfRange = errors.New("longitude must be between -180 and 180")
)

// Site is a geographic location PV systems are installed at.
type Site struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude"` // meters above sea level
	Timezone  string    `json:"timezone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSite creates a Site with a fresh ID and timestamps.
func NewSite(userID uuid.UUID, name string, latitude, longitude, altitude float64) (*Site, error) {
	now := time.Now().UTC()
	site := &Site{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
		Altitude:  altitude,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return site, nil
}

// Validate checks field constraints.
func (s *Site) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySiteID
	}
	if s.UserID == uuid.Nil {
		return ErrSiteWithoutOwner
	}
	if s.Name == "" {
		return ErrEmptySiteName
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return ErrLatitudeOutOfRange
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return ErrLongitudeOutOfRange
	}
	return nil
}
