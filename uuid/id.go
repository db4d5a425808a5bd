package uuid

import (
	"github.com/google/uuid"
	"github.com/lukasz-zimnoch/ladder"
)

// IDService issues random UUIDs. Their canonical form is 36 characters,
// which is the longest orderLinkId the exchange accepts.
type IDService struct{}

func (ids *IDService) NewID() ladder.ID {
	return uuid.New()
}

func (ids *IDService) NewIDFromString(id string) (ladder.ID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	return parsed, nil
}
