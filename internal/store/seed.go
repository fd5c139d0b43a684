package store

import (
	"context"
	"fmt"
)

const (
	SeedUserName     = "Test User"
	SeedUserEmail    = "test@example.com"
	SeedUserPassword = "123456"
)

var seedStories = []StoryInput{
	{
		Name: "One Piece", Source: SourceAnime,
		Description: "Monkey D. Luffy sails in search of the One Piece",
		TotalSeason: 1, TotalEpisode: 1000, Status: StoryOngoing,
		MainPicture: Picture{
			Medium: "https://cdn.myanimelist.net/images/anime/6/73245.jpg",
			Large:  "https://cdn.myanimelist.net/images/anime/6/73245l.jpg",
		},
	},
	{
		Name: "Naruto", Source: SourceManga,
		Description: "The story of Naruto Uzumaki",
		TotalVolume: 72, TotalChapter: 700, Status: StoryCompleted,
		MainPicture: Picture{
			Medium: "https://cdn.myanimelist.net/images/manga/3/117681.jpg",
			Large:  "https://cdn.myanimelist.net/images/manga/3/117681l.jpg",
		},
	},
	{
		Name: "Attack on Titan", Source: SourceAnime,
		Description: "Humanity fights for survival against the titans",
		TotalSeason: 4, TotalEpisode: 87, Status: StoryCompleted,
		MainPicture: Picture{
			Medium: "https://cdn.myanimelist.net/images/anime/10/47347.jpg",
			Large:  "https://cdn.myanimelist.net/images/anime/10/47347l.jpg",
		},
	},
	{
		Name: "Death Note", Source: SourceAnime,
		Description: "Light Yagami finds a notebook that kills",
		TotalSeason: 1, TotalEpisode: 37, Status: StoryCompleted,
		MainPicture: Picture{
			Medium: "https://cdn.myanimelist.net/images/anime/9/9453.jpg",
			Large:  "https://cdn.myanimelist.net/images/anime/9/9453l.jpg",
		},
	},
	{
		Name: "Breaking Bad", Source: SourceSeries,
		Description: "A chemistry teacher turns to cooking methamphetamine",
		TotalSeason: 5, TotalEpisode: 62, Status: StoryCompleted,
		MainPicture: Picture{
			Medium: "https://image.tmdb.org/t/p/w500/ggFHVNu6YYI5L9pCfOacjizRGt.jpg",
			Large:  "https://image.tmdb.org/t/p/original/ggFHVNu6YYI5L9pCfOacjizRGt.jpg",
		},
	},
	{
		Name: "Game of Thrones", Source: SourceSeries,
		Description: "Noble houses fight for the Iron Throne",
		TotalSeason: 8, TotalEpisode: 73, Status: StoryCompleted,
		MainPicture: Picture{
			Medium: "https://image.tmdb.org/t/p/w500/u3bZgnGQ9T01sWNhyveQz0wH0Hl.jpg",
			Large:  "https://image.tmdb.org/t/p/original/u3bZgnGQ9T01sWNhyveQz0wH0Hl.jpg",
		},
	},
	{
		Name: "Berserk", Source: SourceManga,
		Description: "Guts, the Black Swordsman, seeks revenge",
		TotalVolume: 41, TotalChapter: 370, Status: StoryOngoing,
		MainPicture: Picture{
			Medium: "https://cdn.myanimelist.net/images/manga/1/157897.jpg",
			Large:  "https://cdn.myanimelist.net/images/manga/1/157897l.jpg",
		},
	},
	{
		Name: "Tokyo Ghoul", Source: SourceManga,
		Description: "Kaneki becomes a half-ghoul after an accident",
		TotalVolume: 14, TotalChapter: 143, Status: StoryCompleted,
		MainPicture: Picture{
			Medium: "https://cdn.myanimelist.net/images/manga/3/54525.jpg",
			Large:  "https://cdn.myanimelist.net/images/manga/3/54525l.jpg",
		},
	},
}

// SeedInitialData inserts a default user and a handful of sample stories.
// It does nothing when the store already has users. Returns whether data was written.
func SeedInitialData(ctx context.Context, s Store) (bool, error) {
	n, err := s.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, SeedUserName, SeedUserEmail, SeedUserPassword); err != nil {
		return false, fmt.Errorf("seed user: %w", err)
	}
	for _, in := range seedStories {
		if _, err := s.CreateStory(ctx, in); err != nil {
			return false, fmt.Errorf("seed story %q: %w", in.Name, err)
		}
	}
	return true, nil
}
