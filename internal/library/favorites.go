package library

import (
	"context"
	"errors"
	"fmt"

	"amsvault/internal/apperr"
	"amsvault/internal/catalog"
	"amsvault/internal/logger"
	"amsvault/internal/store"
)

// AddToFavorites bookmarks the candidate for the signed-in user. A candidate
// that only exists in an external catalog is first stored as a new story whose
// mal_id is the provider id. An empty status picks the default for the source.
func (s *Service) AddToFavorites(ctx context.Context, c catalog.Candidate, status store.BookmarkStatus) (int64, error) {
	u, err := s.requireUser()
	if err != nil {
		return 0, err
	}
	if c.Source == "" {
		c.Source = store.SourceAnime
	}
	if status != "" && !status.ValidFor(c.Source) {
		return 0, apperr.Validation(fmt.Sprintf("Status %q is not available for %s", status, c.Source))
	}

	storyID := c.LocalID
	created := storyID == 0
	if created {
		storyID, err = s.store.CreateStory(ctx, c.StoryInput())
		if err != nil {
			return 0, apperr.FromStore(err, "Story")
		}
		logger.LogMsg(logger.LogInfo, "Stored %s %q (external id %d) as story %d", c.Source, c.Name, c.ExternalID, storyID)
	}

	id, err := s.store.CreateBookmark(ctx, store.BookmarkInput{UserID: u.ID, StoryID: storyID, Status: status})
	if err != nil {
		if created {
			s.dropStory(ctx, storyID)
		}
		return 0, apperr.FromStore(err, missingResource(err))
	}
	logger.LogMsg(logger.LogInfo, "User %d bookmarked story %d as bookmark %d", u.ID, storyID, id)
	return id, nil
}

// dropStory removes a story stored for a bookmark that could not be created.
func (s *Service) dropStory(ctx context.Context, id int64) {
	if err := s.store.DeleteStory(context.WithoutCancel(ctx), id); err != nil {
		logger.LogMsg(logger.LogWarning, "Story %d left without bookmarks: %v", id, err)
		return
	}
	logger.LogMsg(logger.LogInfo, "Dropped story %d after failed bookmark", id)
}

func missingResource(err error) string {
	if errors.Is(err, store.ErrUserNotFound) {
		return "User"
	}
	return "Story"
}

// AddFavorite is AddToFavorites followed by removing the item from results.
func (s *Service) AddFavorite(ctx context.Context, results *Results, c catalog.Candidate, status store.BookmarkStatus) (int64, error) {
	id, err := s.AddToFavorites(ctx, c, status)
	if err != nil {
		return 0, err
	}
	if results != nil {
		results.Remove(c)
	}
	return id, nil
}

// RemoveFavorite deletes one of the signed-in user's bookmarks.
func (s *Service) RemoveFavorite(ctx context.Context, bookmarkID int64) error {
	b, _, err := s.ownedBookmark(ctx, bookmarkID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBookmark(ctx, b.ID); err != nil {
		return apperr.FromStore(err, "Bookmark")
	}
	return nil
}

// Bookmarks lists the signed-in user's bookmarks, most recently updated first.
func (s *Service) Bookmarks(ctx context.Context) ([]store.BookmarkWithStory, error) {
	u, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	list, err := s.store.GetBookmarksByUser(ctx, u.ID)
	if err != nil {
		return nil, apperr.FromStore(err, "Bookmark")
	}
	return list, nil
}
