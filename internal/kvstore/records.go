package kvstore

import (
	"time"

	"amsvault/internal/store"
)

// Persisted shapes. Field names follow the relational schema so exports of
// either backend read the same.

type userRecord struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type storyRecord struct {
	ID                int64     `json:"id"`
	MalID             *int64    `json:"mal_id,omitempty"`
	Name              string    `json:"name"`
	Source            string    `json:"source"`
	Description       string    `json:"description"`
	TotalSeason       int       `json:"total_season"`
	TotalEpisode      int       `json:"total_episode"`
	TotalVolume       int       `json:"total_volume"`
	TotalChapter      int       `json:"total_chapter"`
	Status            string    `json:"status"`
	MainPictureMedium string    `json:"main_picture_medium,omitempty"`
	MainPictureLarge  string    `json:"main_picture_large,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type bookmarkRecord struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	StoryID        int64     `json:"story_id"`
	Status         string    `json:"status"`
	CurrentSeason  int       `json:"current_season"`
	CurrentEpisode int       `json:"current_episode"`
	CurrentVolume  int       `json:"current_volume"`
	CurrentChapter int       `json:"current_chapter"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type releaseRecord struct {
	StoryID   int64     `json:"story_id"`
	SeenTotal int       `json:"seen_total"`
	CheckedAt time.Time `json:"checked_at"`
}

func (r userRecord) toUser() store.User {
	return store.User{ID: r.ID, Name: r.Name, Email: r.Email, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

func (r storyRecord) toStory() store.Story {
	return store.Story{
		ID:           r.ID,
		MalID:        r.MalID,
		Name:         r.Name,
		Source:       store.Source(r.Source),
		Description:  r.Description,
		TotalSeason:  r.TotalSeason,
		TotalEpisode: r.TotalEpisode,
		TotalVolume:  r.TotalVolume,
		TotalChapter: r.TotalChapter,
		Status:       store.StoryStatus(r.Status),
		MainPicture:  store.Picture{Medium: r.MainPictureMedium, Large: r.MainPictureLarge},
		CreatedAt:    r.CreatedAt,
	}
}

func newStoryRecord(id int64, in store.StoryInput, now time.Time) storyRecord {
	return storyRecord{
		ID:                id,
		MalID:             in.MalID,
		Name:              in.Name,
		Source:            string(in.Source),
		Description:       in.Description,
		TotalSeason:       in.TotalSeason,
		TotalEpisode:      in.TotalEpisode,
		TotalVolume:       in.TotalVolume,
		TotalChapter:      in.TotalChapter,
		Status:            string(in.Status),
		MainPictureMedium: in.MainPicture.Medium,
		MainPictureLarge:  in.MainPicture.Large,
		CreatedAt:         now,
	}
}

func (r bookmarkRecord) toBookmark() store.Bookmark {
	return store.Bookmark{
		ID:             r.ID,
		UserID:         r.UserID,
		StoryID:        r.StoryID,
		Status:         store.BookmarkStatus(r.Status),
		CurrentSeason:  r.CurrentSeason,
		CurrentEpisode: r.CurrentEpisode,
		CurrentVolume:  r.CurrentVolume,
		CurrentChapter: r.CurrentChapter,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (r *bookmarkRecord) apply(u store.BookmarkUpdate) {
	b := r.toBookmark()
	u.Apply(&b)
	r.Status = string(b.Status)
	r.CurrentSeason = b.CurrentSeason
	r.CurrentEpisode = b.CurrentEpisode
	r.CurrentVolume = b.CurrentVolume
	r.CurrentChapter = b.CurrentChapter
}
