// Package avatar resolves avatar identifiers (email addresses) to image
// URLs via gravatar.
package avatar

import (
	"errors"

	"github.com/drexedam/gravatar"
)

// ErrEmptyIdentifier is returned when there is nothing to resolve; callers
// fall back to a placeholder image.
var ErrEmptyIdentifier = errors.New("avatar: empty identifier")

// Gravatar builds gravatar URLs sized and rated the way the chat client
// expects: 140px, any rating, mystery-man fallback.
type Gravatar struct {
	size int
}

func NewGravatar() *Gravatar {
	return &Gravatar{size: 140}
}

func (g *Gravatar) Resolve(identifier string) (string, error) {
	if identifier == "" {
		return "", ErrEmptyIdentifier
	}

	url := gravatar.New(identifier).
		Size(g.size).
		Rating(gravatar.X).
		Default(gravatar.MysteryMan).
		AvatarURL()
	return url, nil
}
