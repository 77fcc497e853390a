package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewSite(t *testing.T) {
	userID := uuid.New()

	site, err := NewSite(userID, "Boulder Array", 40.015, -105.27, 1650)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if site.ID == uuid.Nil {
		t.Error("Expected non-nil UUID")
	}
	if site.UserID != userID {
		t.Error("Expected owner to be set")
	}
	if site.CreatedAt.IsZero() || site.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}
}

func TestSiteValidation(t *testing.T) {
	userID := uuid.New()

	cases := []struct {
		name     string
		siteName string
		lat, lon float64
		wantErr  error
	}{
		{"empty name", "", 40, -105, ErrEmptySiteName},
		{"latitude too high", "s", 91, -105, ErrLatitudeOutOfRange},
		{"latitude too low", "s", -91, -105, ErrLatitudeOutOfRange},
		{"longitude too high", "s", 40, 181, ErrLongitudeOutOfRange},
		{"longitude too low", "s", 40, -181, ErrLongitudeOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSite(userID, tc.siteName, tc.lat, tc.lon, 0)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}

	site := Site{ID: uuid.New(), Name: "s", Latitude: 40, Longitude: -105}
	if err := site.Validate(); !errors.Is(err, ErrSiteWithoutOwner) {
		t.Errorf("Expected %v, got %v", ErrSiteWithoutOwner, err)
	}
}
