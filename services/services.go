// Package services holds the domain operations behind the HTTP handlers.
// Services return apperr-classified errors and publish feed events after
// the store write succeeds.
package services

import (
	"errors"

	"broadcast/apperr"
	"broadcast/database"
)

// Post lifecycle events delivered to feed rooms.
const (
	EventNewPost     = "newPost"
	EventUpdatePost  = "updatePost"
	EventDeletePost  = "deletePost"
	EventRestorePost = "restorePost"
)

// FeedPublisher delivers an event to the room of a post scope. Publishing is
// fire-and-forget.
type FeedPublisher interface {
	Publish(levelType, levelValue, event string, payload interface{})
}

// RegionResolver expands a location scope into the names it contains.
type RegionResolver interface {
	Related(levelType, levelValue string) []string
}

// storeErr classifies a store failure. notFound is the message used when
// the document does not exist.
func storeErr(err error, notFound string) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, database.ErrDuplicate):
		return apperr.Validation("Duplicate value")
	}
	return apperr.Internal("store failure", err)
}
