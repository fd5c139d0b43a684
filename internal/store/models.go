package store

import (
	"strings"
	"time"
)

// Source is the catalog category a story belongs to.
type Source string

const (
	SourceAnime  Source = "anime"
	SourceManga  Source = "manga"
	SourceManhwa Source = "manhwa"
	SourceSeries Source = "series"
)

// IsReadable reports whether progress for the source is counted in chapters and volumes.
func (s Source) IsReadable() bool {
	return s == SourceManga || s == SourceManhwa
}

// StoryStatus is the publication/airing state of a story.
type StoryStatus string

const (
	StoryOngoing   StoryStatus = "ongoing"
	StoryCompleted StoryStatus = "completed"
	StoryUpcoming  StoryStatus = "upcoming"
	StoryUnknown   StoryStatus = "unknown"
)

// BookmarkStatus is the user's personal tracking state for a story.
type BookmarkStatus string

const (
	StatusWatching  BookmarkStatus = "watching"
	StatusReading   BookmarkStatus = "reading"
	StatusCompleted BookmarkStatus = "completed"
	StatusDropped   BookmarkStatus = "dropped"
	StatusPlan      BookmarkStatus = "plan"
)

// DefaultBookmarkStatus returns the status a new bookmark gets when none is supplied.
func DefaultBookmarkStatus(source Source) BookmarkStatus {
	if source.IsReadable() {
		return StatusReading
	}
	return StatusWatching
}

// ValidFor reports whether the status belongs to the vocabulary of the given source.
// Anything that is not manga/manhwa uses the watching vocabulary.
func (s BookmarkStatus) ValidFor(source Source) bool {
	switch s {
	case StatusCompleted, StatusDropped, StatusPlan:
		return true
	case StatusReading:
		return source.IsReadable()
	case StatusWatching:
		return !source.IsReadable()
	}
	return false
}

// Picture holds cover image URLs. Either may be empty.
type Picture struct {
	Medium string
	Large  string
}

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Story is a catalog entry, independent of any user.
type Story struct {
	ID           int64
	MalID        *int64
	Name         string
	Source       Source
	Description  string
	TotalSeason  int
	TotalEpisode int
	TotalVolume  int
	TotalChapter int
	Status       StoryStatus
	MainPicture  Picture
	CreatedAt    time.Time
}

// ReleaseTotal is the counter the release watch compares against: chapters for
// readable sources, episodes otherwise.
func (s Story) ReleaseTotal() int {
	if s.Source.IsReadable() {
		return s.TotalChapter
	}
	return s.TotalEpisode
}

// StoryInput carries the fields for CreateStory.
type StoryInput struct {
	MalID        *int64
	Name         string
	Source       Source
	Description  string
	TotalSeason  int
	TotalEpisode int
	TotalVolume  int
	TotalChapter int
	Status       StoryStatus
	MainPicture  Picture
}

// Normalize applies the creation defaults and rejects inputs that cannot be stored.
func (in StoryInput) Normalize() (StoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ErrInvalid
	}
	if in.Source == "" {
		in.Source = SourceSeries
	}
	if in.Status == "" {
		in.Status = StoryOngoing
	}
	in.TotalSeason = max(in.TotalSeason, 0)
	in.TotalEpisode = max(in.TotalEpisode, 0)
	in.TotalVolume = max(in.TotalVolume, 0)
	in.TotalChapter = max(in.TotalChapter, 0)
	return in, nil
}

type Bookmark struct {
	ID             int64
	UserID         int64
	StoryID        int64
	Status         BookmarkStatus
	CurrentSeason  int
	CurrentEpisode int
	CurrentVolume  int
	CurrentChapter int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BookmarkInput carries the fields for CreateBookmark. An empty Status is
// replaced by the default for the story's source.
type BookmarkInput struct {
	UserID         int64
	StoryID        int64
	Status         BookmarkStatus
	CurrentSeason  int
	CurrentEpisode int
	CurrentVolume  int
	CurrentChapter int
}

// Normalize fills the status default for source and clamps counters at zero.
func (in BookmarkInput) Normalize(source Source) BookmarkInput {
	if in.Status == "" {
		in.Status = DefaultBookmarkStatus(source)
	}
	in.CurrentSeason = max(in.CurrentSeason, 0)
	in.CurrentEpisode = max(in.CurrentEpisode, 0)
	in.CurrentVolume = max(in.CurrentVolume, 0)
	in.CurrentChapter = max(in.CurrentChapter, 0)
	return in
}

// BookmarkUpdate is a partial update; nil fields are left untouched.
type BookmarkUpdate struct {
	Status         *BookmarkStatus
	CurrentSeason  *int
	CurrentEpisode *int
	CurrentVolume  *int
	CurrentChapter *int
}

// IsEmpty reports whether no field is set.
func (u BookmarkUpdate) IsEmpty() bool {
	return u.Status == nil && u.CurrentSeason == nil && u.CurrentEpisode == nil &&
		u.CurrentVolume == nil && u.CurrentChapter == nil
}

// Validate rejects negative counters and empty statuses.
func (u BookmarkUpdate) Validate() error {
	if u.Status != nil && *u.Status == "" {
		return ErrInvalid
	}
	for _, v := range []*int{u.CurrentSeason, u.CurrentEpisode, u.CurrentVolume, u.CurrentChapter} {
		if v != nil && *v < 0 {
			return ErrInvalid
		}
	}
	return nil
}

// Apply copies the set fields onto b.
func (u BookmarkUpdate) Apply(b *Bookmark) {
	if u.Status != nil {
		b.Status = *u.Status
	}
	if u.CurrentSeason != nil {
		b.CurrentSeason = *u.CurrentSeason
	}
	if u.CurrentEpisode != nil {
		b.CurrentEpisode = *u.CurrentEpisode
	}
	if u.CurrentVolume != nil {
		b.CurrentVolume = *u.CurrentVolume
	}
	if u.CurrentChapter != nil {
		b.CurrentChapter = *u.CurrentChapter
	}
}

// BookmarkWithStory is the joined projection returned by GetBookmarksByUser.
type BookmarkWithStory struct {
	Bookmark
	Story Story
}

// TrackedStory is a story with an external reference together with the users
// who bookmarked it.
type TrackedStory struct {
	Story
	Owners []int64
}
