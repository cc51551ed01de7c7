package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmrate/internal/domain"
	"filmrate/internal/service"
	"filmrate/internal/store"
)

// countingFilmGenres counts per-film versus batched association lookups so
// tests can assert the bulk hydration contract.
type countingFilmGenres struct {
	store.FilmGenreStore
	perFilmCalls int
	batchCalls   int
}

func (c *countingFilmGenres) GetForFilm(ctx context.Context, filmID int64) ([]domain.Genre, error) {
	c.perFilmCalls++
	return c.FilmGenreStore.GetForFilm(ctx, filmID)
}

func (c *countingFilmGenres) GetForFilms(ctx context.Context, filmIDs []int64) (map[int64][]domain.Genre, error) {
	c.batchCalls++
	return c.FilmGenreStore.GetForFilms(ctx, filmIDs)
}

func (c *countingFilmGenres) GetAllGroupedByFilm(ctx context.Context) (map[int64][]domain.Genre, error) {
	c.batchCalls++
	return c.FilmGenreStore.GetAllGroupedByFilm(ctx)
}

// fakePopularCache is an in-memory PopularCache recording invalidations.
type fakePopularCache struct {
	entries     map[int][]domain.Film
	invalidated int
}

func newFakePopularCache() *fakePopularCache {
	return &fakePopularCache{entries: map[int][]domain.Film{}}
}

func (c *fakePopularCache) Get(ctx context.Context, count int) ([]domain.Film, error) {
	films, ok := c.entries[count]
	if !ok {
		return nil, store.ErrCacheMiss
	}
	return films, nil
}

func (c *fakePopularCache) Set(ctx context.Context, count int, films []domain.Film) error {
	c.entries[count] = films
	return nil
}

func (c *fakePopularCache) Invalidate(ctx context.Context) {
	c.invalidated++
	c.entries = map[int][]domain.Film{}
}

// lostWriteFilms accepts writes but reports every read as missing,
// simulating a store that loses rows between insert and read-back.
type lostWriteFilms struct{ store.FilmStore }

func (s lostWriteFilms) GetByID(ctx context.Context, id int64) (*domain.Film, error) {
	return nil, store.ErrFilmNotFound
}

type filmFixture struct {
	films      *service.FilmService
	users      *service.UserService
	filmGenres *countingFilmGenres
}

func newFilmFixture(m *store.MemoryStore) *filmFixture {
	return newCachedFilmFixture(m, nil)
}

func newCachedFilmFixture(m *store.MemoryStore, popular service.PopularCache) *filmFixture {
	validate := validator.New()
	logger := testLogger()
	filmGenres := &countingFilmGenres{FilmGenreStore: m.FilmGenres()}
	return &filmFixture{
		films: service.NewFilmService(
			m.Films(), m.Mpa(), m.Genres(), filmGenres, m.Users(), m.Likes(),
			popular, validate, logger),
		users:      service.NewUserService(m.Users(), m.Friends(), popular, validate, logger),
		filmGenres: filmGenres,
	}
}

func testFilm(name string) *domain.Film {
	return &domain.Film{
		Name:        name,
		Description: "a film about " + name,
		ReleaseDate: domain.NewDate(1999, time.October, 15),
		Duration:    120,
	}
}

func (f *filmFixture) mustAddFilm(t *testing.T, film *domain.Film) *domain.Film {
	t.Helper()
	created, err := f.films.Add(context.Background(), film)
	require.NoError(t, err)
	return created
}

func (f *filmFixture) mustAddUser(t *testing.T, login string) *domain.User {
	t.Helper()
	u, err := f.users.Add(context.Background(), testUser(login))
	require.NoError(t, err)
	return u
}

func TestFilmService_AddHydratesGenresAndMpa(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())

	film := testFilm("alpha")
	film.Mpa = &domain.Mpa{ID: 3}
	film.Genres = []domain.Genre{{ID: 1}, {ID: 4}}

	created := f.mustAddFilm(t, film)
	assert.NotZero(t, created.ID)
	require.NotNil(t, created.Mpa)
	assert.Equal(t, 3, created.Mpa.ID)
	require.Len(t, created.Genres, 2)
	assert.Equal(t, "Comedy", created.Genres[0].Name)
	assert.Equal(t, "Thriller", created.Genres[1].Name)
	assert.Equal(t, 0, created.Rate)
}

func TestFilmService_AddValidation(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	longDescription := make([]byte, 201)
	for i := range longDescription {
		longDescription[i] = 'x'
	}

	cases := []struct {
		name   string
		mutate func(*domain.Film)
		field  string
	}{
		{"blank name", func(fl *domain.Film) { fl.Name = "" }, "name"},
		{"description too long", func(fl *domain.Film) { fl.Description = string(longDescription) }, "description"},
		{"zero duration", func(fl *domain.Film) { fl.Duration = 0 }, "duration"},
		{"negative duration", func(fl *domain.Film) { fl.Duration = -5 }, "duration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			film := testFilm("bad")
			tc.mutate(film)
			_, err := f.films.Add(ctx, film)
			var validationErr *service.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestFilmService_AddUnknownGenreIsRejectedWithoutPartialInsert(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	film := testFilm("alpha")
	film.Genres = []domain.Genre{{ID: 1}, {ID: 99}}

	_, err := f.films.Add(ctx, film)
	var notFoundErr *service.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, service.EntityGenre, notFoundErr.Entity)
	assert.Equal(t, int64(99), notFoundErr.ID)

	all, err := f.films.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "failed precondition must not leave a film row behind")
}

func TestFilmService_AddUnknownMpa(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())

	film := testFilm("alpha")
	film.Mpa = &domain.Mpa{ID: 77}

	_, err := f.films.Add(context.Background(), film)
	var notFoundErr *service.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, service.EntityMpa, notFoundErr.Entity)
	assert.Equal(t, int64(77), notFoundErr.ID)
}

func TestFilmService_UpdateReplacesGenreSet(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	film := testFilm("alpha")
	film.Genres = []domain.Genre{{ID: 1}, {ID: 2}}
	created := f.mustAddFilm(t, film)

	created.Genres = []domain.Genre{{ID: 5}}
	updated, err := f.films.Update(ctx, created)
	require.NoError(t, err)
	require.Len(t, updated.Genres, 1)
	assert.Equal(t, 5, updated.Genres[0].ID)

	fetched, err := f.films.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Genres, fetched.Genres)
}

func TestFilmService_UpdateNotFound(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())

	film := testFilm("ghost")
	film.ID = 42
	_, err := f.films.Update(context.Background(), film)
	var notFoundErr *service.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, service.EntityFilm, notFoundErr.Entity)
}

func TestFilmService_UpdateRoundTripRecomputesRate(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	created := f.mustAddFilm(t, testFilm("alpha"))
	u := f.mustAddUser(t, "ada")
	require.NoError(t, f.films.AddLike(ctx, created.ID, u.ID))

	created.Name = "alpha directors cut"
	created.Rate = 999 // client-supplied rate must be ignored
	updated, err := f.films.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "alpha directors cut", updated.Name)
	assert.Equal(t, 1, updated.Rate)
}

func TestFilmService_LikesAreIdempotent(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	film := f.mustAddFilm(t, testFilm("alpha"))
	u := f.mustAddUser(t, "ada")

	require.NoError(t, f.films.AddLike(ctx, film.ID, u.ID))
	require.NoError(t, f.films.AddLike(ctx, film.ID, u.ID))

	fetched, err := f.films.GetByID(ctx, film.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.Rate)

	require.NoError(t, f.films.RemoveLike(ctx, film.ID, u.ID))
	// Removing an absent like is not an error.
	require.NoError(t, f.films.RemoveLike(ctx, film.ID, u.ID))

	fetched, err = f.films.GetByID(ctx, film.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fetched.Rate)
}

func TestFilmService_AddLikeMissingReferences(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	film := f.mustAddFilm(t, testFilm("alpha"))
	u := f.mustAddUser(t, "ada")

	var notFoundErr *service.NotFoundError
	err := f.films.AddLike(ctx, 99, u.ID)
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, service.EntityFilm, notFoundErr.Entity)

	err = f.films.AddLike(ctx, film.ID, 99)
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, service.EntityUser, notFoundErr.Entity)
}

func TestFilmService_GetCommonFilmsOrderedByRate(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	u1 := f.mustAddUser(t, "u1")
	u2 := f.mustAddUser(t, "u2")
	u3 := f.mustAddUser(t, "u3")

	low := f.mustAddFilm(t, testFilm("low"))
	high := f.mustAddFilm(t, testFilm("high"))
	onlyU1 := f.mustAddFilm(t, testFilm("solo"))

	// high: liked by all three. low: liked by u1 and u2. solo: u1 only.
	for _, u := range []*domain.User{u1, u2, u3} {
		require.NoError(t, f.films.AddLike(ctx, high.ID, u.ID))
	}
	require.NoError(t, f.films.AddLike(ctx, low.ID, u1.ID))
	require.NoError(t, f.films.AddLike(ctx, low.ID, u2.ID))
	require.NoError(t, f.films.AddLike(ctx, onlyU1.ID, u1.ID))

	common, err := f.films.GetCommonFilms(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	require.Len(t, common, 2)
	assert.Equal(t, high.ID, common[0].ID)
	assert.Equal(t, low.ID, common[1].ID)
}

func TestFilmService_GetFilmsLikedByUser(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	u := f.mustAddUser(t, "ada")
	liked := testFilm("liked")
	liked.Genres = []domain.Genre{{ID: 2}}
	likedFilm := f.mustAddFilm(t, liked)
	f.mustAddFilm(t, testFilm("ignored"))

	require.NoError(t, f.films.AddLike(ctx, likedFilm.ID, u.ID))

	films, err := f.films.GetFilmsLikedByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, films, 1)
	assert.Equal(t, likedFilm.ID, films[0].ID)
	require.Len(t, films[0].Genres, 1)
	assert.Equal(t, "Drama", films[0].Genres[0].Name)
}

func TestFilmService_GetAllUsesBatchedGenreHydration(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	withGenres := testFilm("alpha")
	withGenres.Genres = []domain.Genre{{ID: 1}, {ID: 6}}
	first := f.mustAddFilm(t, withGenres)
	second := f.mustAddFilm(t, testFilm("beta"))
	third := f.mustAddFilm(t, testFilm("gamma"))

	f.filmGenres.batchCalls = 0
	f.filmGenres.perFilmCalls = 0

	films, err := f.films.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, films, 3)

	assert.Equal(t, 1, f.filmGenres.batchCalls, "genre hydration must be one batched call")
	assert.Zero(t, f.filmGenres.perFilmCalls, "no per-film association lookups")

	byID := map[int64]domain.Film{}
	for _, film := range films {
		byID[film.ID] = film
	}
	assert.Len(t, byID[first.ID].Genres, 2)
	assert.NotNil(t, byID[second.ID].Genres)
	assert.Empty(t, byID[second.ID].Genres)
	assert.Empty(t, byID[third.ID].Genres)
}

func TestFilmService_GetMostPopular(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	u1 := f.mustAddUser(t, "u1")
	u2 := f.mustAddUser(t, "u2")

	quiet := f.mustAddFilm(t, testFilm("quiet"))
	hit := f.mustAddFilm(t, testFilm("hit"))

	require.NoError(t, f.films.AddLike(ctx, hit.ID, u1.ID))
	require.NoError(t, f.films.AddLike(ctx, hit.ID, u2.ID))
	require.NoError(t, f.films.AddLike(ctx, quiet.ID, u1.ID))

	top, err := f.films.GetMostPopular(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, hit.ID, top[0].ID)
	assert.Equal(t, 2, top[0].Rate)

	_, err = f.films.GetMostPopular(ctx, 0)
	var validationErr *service.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestFilmService_GetMostPopularUsesCache(t *testing.T) {
	cache := newFakePopularCache()
	f := newCachedFilmFixture(store.NewMemoryStore(), cache)
	ctx := context.Background()

	u := f.mustAddUser(t, "ada")
	film := f.mustAddFilm(t, testFilm("alpha"))
	require.NoError(t, f.films.AddLike(ctx, film.ID, u.ID))

	top, err := f.films.GetMostPopular(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Contains(t, cache.entries, 5, "ranking is written through to the cache")

	// A second read is served from the cache verbatim.
	cache.entries[5] = []domain.Film{{ID: 777, Name: "cached"}}
	cached, err := f.films.GetMostPopular(ctx, 5)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, int64(777), cached[0].ID)

	// Any like mutation drops every cached ranking.
	require.NoError(t, f.films.RemoveLike(ctx, film.ID, u.ID))
	assert.Empty(t, cache.entries)
}

func TestFilmService_UserRemovalInvalidatesPopularRanking(t *testing.T) {
	cache := newFakePopularCache()
	f := newCachedFilmFixture(store.NewMemoryStore(), cache)
	ctx := context.Background()

	u := f.mustAddUser(t, "ada")
	film := f.mustAddFilm(t, testFilm("alpha"))
	require.NoError(t, f.films.AddLike(ctx, film.ID, u.ID))

	top, err := f.films.GetMostPopular(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].Rate)

	// Removing the user cascades their like away; the cached ranking must
	// not survive it.
	invalidationsBefore := cache.invalidated
	require.NoError(t, f.users.Remove(ctx, u.ID))
	assert.Greater(t, cache.invalidated, invalidationsBefore)
	assert.Empty(t, cache.entries)

	top, err = f.films.GetMostPopular(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 0, top[0].Rate, "ranking is recomputed from the surviving likes")
}

func TestFilmService_AddLostWriteIsCreateFailed(t *testing.T) {
	m := store.NewMemoryStore()
	validate := validator.New()
	logger := testLogger()
	films := service.NewFilmService(
		lostWriteFilms{m.Films()}, m.Mpa(), m.Genres(), m.FilmGenres(), m.Users(), m.Likes(),
		nil, validate, logger)

	_, err := films.Add(context.Background(), testFilm("alpha"))
	var createFailedErr *service.CreateFailedError
	require.ErrorAs(t, err, &createFailedErr)
	assert.Equal(t, service.EntityFilm, createFailedErr.Entity)
}

func TestFilmService_RemoveTwice(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	film := f.mustAddFilm(t, testFilm("alpha"))
	require.NoError(t, f.films.Remove(ctx, film.ID))

	err := f.films.Remove(ctx, film.ID)
	var notFoundErr *service.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestFilmService_ReferenceData(t *testing.T) {
	f := newFilmFixture(store.NewMemoryStore())
	ctx := context.Background()

	genres, err := f.films.GetAllGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 6)

	genre, err := f.films.GetGenreByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Drama", genre.Name)

	_, err = f.films.GetGenreByID(ctx, 99)
	var notFoundErr *service.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, service.EntityGenre, notFoundErr.Entity)

	mpas, err := f.films.GetAllMpa(ctx)
	require.NoError(t, err)
	assert.Len(t, mpas, 5)

	mpa, err := f.films.GetMpaByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "NC-17", mpa.Name)

	_, err = f.films.GetMpaByID(ctx, 99)
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, service.EntityMpa, notFoundErr.Entity)
}
