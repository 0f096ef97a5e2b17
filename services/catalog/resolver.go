package catalog

import (
	"context"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/lazymap"

	"github.com/garmanaz/vidaria/models"
)

type genreStore interface {
	GetGenre(ctx context.Context, id int64) (*models.Genre, error)
	GetOrCreateGenre(ctx context.Context, id int64, name string) (*models.Genre, error)
}

// GenreResolver resolves TMDB genre ids to persisted Genre rows, memoizing
// results so one sync run hits the database once per genre. A persistence
// failure yields an absent reference rather than failing the caller.
type GenreResolver struct {
	store  genreStore
	genres *lazymap.LazyMap[*models.Genre]
}

func NewGenreResolver(store genreStore) *GenreResolver {
	return &GenreResolver{
		store: store,
		genres: lazymap.New[*models.Genre](&lazymap.Config{
			Expire:      10 * time.Minute,
			ErrorExpire: 10 * time.Second,
		}),
	}
}

// Lookup returns the genre for a known id, or nil when the id is unknown
// or the lookup fails.
func (s *GenreResolver) Lookup(ctx context.Context, id int64) *models.Genre {
	genre, err := s.genres.Get(strconv.FormatInt(id, 10), func() (*models.Genre, error) {
		return s.store.GetGenre(ctx, id)
	})
	if err != nil {
		log.WithError(err).Warnf("failed to look up genre %v", id)
		return nil
	}
	return genre
}

// Resolve finds or creates the genre. Returns nil when persistence fails;
// the referencing item proceeds without the genre.
func (s *GenreResolver) Resolve(ctx context.Context, id int64, name string) *models.Genre {
	genre, err := s.genres.Get(strconv.FormatInt(id, 10), func() (*models.Genre, error) {
		return s.store.GetOrCreateGenre(ctx, id, name)
	})
	if err != nil {
		log.WithError(err).Warnf("failed to resolve genre %v (%v)", id, name)
		return nil
	}
	if genre == nil {
		// Lookup for the same id may have memoized an absent row.
		genre, err = s.store.GetOrCreateGenre(ctx, id, name)
		if err != nil {
			log.WithError(err).Warnf("failed to resolve genre %v (%v)", id, name)
			return nil
		}
	}
	return genre
}
