package services

import (
	"context"
	"strings"

	"lodging/src/models"
	"lodging/src/types"
)

// CheckpointGate stores check-in and check-out evidence photos and answers
// whether a reservation has enough of them to progress.
type CheckpointGate struct {
	*deps
}

// MinCheckoutPhotos is the number of checkout photos completion requires.
const MinCheckoutPhotos = 1

func (g *CheckpointGate) AddPhoto(ctx context.Context, callerID, reservationID uint, url string, kind types.PhotoKind) (*models.CheckpointPhoto, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidPhotoKind
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrInvalidPhotoURL
	}
	r, err := g.loadOwned(ctx, callerID, reservationID, false)
	if err != nil {
		return nil, err
	}
	if r.State.IsTerminal() {
		return nil, reject(KindInvalidStateForTransition, "cannot add photos to a %s reservation", r.State)
	}

	photo := g.newPhoto(r.ID, callerID, url, kind)
	if err := g.photos.Create(ctx, photo); err != nil {
		return nil, err
	}
	g.log.Info("checkpoint photo added", "reservation_id", r.ID, "kind", kind)
	return photo, nil
}

func (g *CheckpointGate) CountPhotos(ctx context.Context, reservationID uint, kind types.PhotoKind) (int, error) {
	if !kind.IsValid() {
		return 0, ErrInvalidPhotoKind
	}
	return g.photos.Count(ctx, reservationID, kind)
}

// ListPhotos is open to the guest and the property owner. An empty kind
// lists both kinds.
func (g *CheckpointGate) ListPhotos(ctx context.Context, callerID, reservationID uint, kind types.PhotoKind) ([]models.CheckpointPhoto, error) {
	if kind != "" && !kind.IsValid() {
		return nil, ErrInvalidPhotoKind
	}
	r, err := g.loadOwned(ctx, callerID, reservationID, true)
	if err != nil {
		return nil, err
	}
	return g.photos.List(ctx, r.ID, kind)
}

func (g *CheckpointGate) newPhoto(reservationID, uploader uint, url string, kind types.PhotoKind) *models.CheckpointPhoto {
	return &models.CheckpointPhoto{
		ReservationID: reservationID,
		URL:           url,
		Kind:          kind,
		UploadedBy:    uploader,
		UploadedAt:    g.now().UTC(),
	}
}

func (g *CheckpointGate) photosFromURLs(reservationID, uploader uint, urls []string, kind types.PhotoKind) ([]*models.CheckpointPhoto, error) {
	photos := make([]*models.CheckpointPhoto, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			return nil, ErrInvalidPhotoURL
		}
		photos = append(photos, g.newPhoto(reservationID, uploader, u, kind))
	}
	return photos, nil
}
