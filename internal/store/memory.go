package store

import (
	"context"
	"sort"
	"sync"

	"filmrate/internal/domain"
)

// MemoryStore is a single in-memory backing implementing every store
// interface, for tests and local development without Postgres. All maps are
// guarded by one RWMutex; values are copied on the way in and out so callers
// cannot mutate internal state through returned pointers.
type MemoryStore struct {
	mu sync.RWMutex

	userSeq int64
	filmSeq int64

	users  map[int64]domain.User
	films  map[int64]domain.Film
	mpas   map[int]domain.Mpa
	genres map[int]domain.Genre

	filmGenres map[int64][]domain.Genre
	friends    map[int64]map[int64]struct{} // userID -> set of friendIDs
	likes      map[int64]map[int64]struct{} // filmID -> set of userIDs
}

// NewMemoryStore returns an empty store pre-seeded with the same MPA
// ratings and genres the Postgres schema seeds.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		users:      make(map[int64]domain.User),
		films:      make(map[int64]domain.Film),
		mpas:       make(map[int]domain.Mpa),
		genres:     make(map[int]domain.Genre),
		filmGenres: make(map[int64][]domain.Genre),
		friends:    make(map[int64]map[int64]struct{}),
		likes:      make(map[int64]map[int64]struct{}),
	}
	for _, mpa := range seedMpas {
		m.mpas[mpa.ID] = mpa
	}
	for _, g := range seedGenres {
		m.genres[g.ID] = g
	}
	return m
}

// Facet accessors. The port interfaces share method names (List, GetByID)
// with differing signatures, so MemoryStore cannot implement them all on
// one receiver; each accessor wraps the store in a thin adapter satisfying
// exactly one port.

func (m *MemoryStore) Users() UserStore           { return memoryUsers{m} }
func (m *MemoryStore) Friends() FriendStore       { return m }
func (m *MemoryStore) Films() FilmStore           { return memoryFilms{m} }
func (m *MemoryStore) Mpa() MpaStore              { return memoryMpa{m} }
func (m *MemoryStore) Genres() GenreStore         { return memoryGenres{m} }
func (m *MemoryStore) FilmGenres() FilmGenreStore { return m }
func (m *MemoryStore) Likes() LikeStore           { return m }

type memoryUsers struct{ m *MemoryStore }

func (s memoryUsers) List(ctx context.Context) ([]domain.User, error) {
	return s.m.ListUsers(ctx)
}

func (s memoryUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.m.GetUserByID(ctx, id)
}

func (s memoryUsers) Create(ctx context.Context, user *domain.User) (int64, error) {
	return s.m.CreateUser(ctx, user)
}

func (s memoryUsers) Update(ctx context.Context, user *domain.User) (bool, error) {
	return s.m.UpdateUser(ctx, user)
}

func (s memoryUsers) Delete(ctx context.Context, id int64) (bool, error) {
	return s.m.DeleteUser(ctx, id)
}

type memoryFilms struct{ m *MemoryStore }

func (s memoryFilms) List(ctx context.Context) ([]domain.Film, error) {
	return s.m.ListFilms(ctx)
}

func (s memoryFilms) GetByID(ctx context.Context, id int64) (*domain.Film, error) {
	return s.m.GetFilmByID(ctx, id)
}

func (s memoryFilms) Create(ctx context.Context, film *domain.Film) (int64, error) {
	return s.m.CreateFilm(ctx, film)
}

func (s memoryFilms) Update(ctx context.Context, film *domain.Film) (bool, error) {
	return s.m.UpdateFilm(ctx, film)
}

func (s memoryFilms) Delete(ctx context.Context, id int64) (bool, error) {
	return s.m.DeleteFilm(ctx, id)
}

func (s memoryFilms) ListLikedBy(ctx context.Context, userID int64) ([]domain.Film, error) {
	return s.m.ListLikedBy(ctx, userID)
}

func (s memoryFilms) ListCommon(ctx context.Context, userID, friendID int64) ([]domain.Film, error) {
	return s.m.ListCommon(ctx, userID, friendID)
}

func (s memoryFilms) ListTopByRate(ctx context.Context, count int) ([]domain.Film, error) {
	return s.m.ListTopByRate(ctx, count)
}

type memoryMpa struct{ m *MemoryStore }

func (s memoryMpa) List(ctx context.Context) ([]domain.Mpa, error) {
	return s.m.ListMpa(ctx)
}

func (s memoryMpa) GetByID(ctx context.Context, id int) (*domain.Mpa, error) {
	return s.m.GetMpaByID(ctx, id)
}

type memoryGenres struct{ m *MemoryStore }

func (s memoryGenres) List(ctx context.Context) ([]domain.Genre, error) {
	return s.m.ListGenres(ctx)
}

func (s memoryGenres) GetByID(ctx context.Context, id int) (*domain.Genre, error) {
	return s.m.GetGenreByID(ctx, id)
}

func (s memoryGenres) GetByIDs(ctx context.Context, ids []int) (map[int]domain.Genre, error) {
	return s.m.GetGenresByIDs(ctx, ids)
}

// ----- users -----

func (m *MemoryStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *domain.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userSeq++
	u := *user
	u.ID = m.userSeq
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user *domain.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return false, nil
	}
	m.users[user.ID] = *user
	return true, nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)
	// Cascade, same as the FK constraints in Postgres.
	delete(m.friends, id)
	for _, set := range m.friends {
		delete(set, id)
	}
	for _, set := range m.likes {
		delete(set, id)
	}
	return true, nil
}

// ----- friends -----

func (m *MemoryStore) AddFriend(ctx context.Context, userID, friendID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.friends[userID]
	if !ok {
		set = make(map[int64]struct{})
		m.friends[userID] = set
	}
	if _, exists := set[friendID]; exists {
		return false, nil
	}
	set[friendID] = struct{}{}
	return true, nil
}

func (m *MemoryStore) RemoveFriend(ctx context.Context, userID, friendID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.friends[userID]
	if !ok {
		return false, nil
	}
	if _, exists := set[friendID]; !exists {
		return false, nil
	}
	delete(set, friendID)
	return true, nil
}

func (m *MemoryStore) ListFriends(ctx context.Context, userID int64) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usersFromSet(m.friends[userID]), nil
}

func (m *MemoryStore) ListCommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	common := make(map[int64]struct{})
	other := m.friends[otherID]
	for id := range m.friends[userID] {
		if _, ok := other[id]; ok {
			common[id] = struct{}{}
		}
	}
	return m.usersFromSet(common), nil
}

func (m *MemoryStore) usersFromSet(ids map[int64]struct{}) []domain.User {
	users := make([]domain.User, 0, len(ids))
	for id := range ids {
		if u, ok := m.users[id]; ok {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// ----- films -----

func (m *MemoryStore) ListFilms(ctx context.Context) ([]domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	films := make([]domain.Film, 0, len(m.films))
	for id := range m.films {
		films = append(films, m.filmWithRate(id))
	}
	sort.Slice(films, func(i, j int) bool { return films[i].ID < films[j].ID })
	return films, nil
}

func (m *MemoryStore) GetFilmByID(ctx context.Context, id int64) (*domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.films[id]; !ok {
		return nil, ErrFilmNotFound
	}
	f := m.filmWithRate(id)
	return &f, nil
}

func (m *MemoryStore) CreateFilm(ctx context.Context, film *domain.Film) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filmSeq++
	f := *film
	f.ID = m.filmSeq
	f.Genres = nil
	f.Rate = 0
	m.films[f.ID] = f
	return f.ID, nil
}

func (m *MemoryStore) UpdateFilm(ctx context.Context, film *domain.Film) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.films[film.ID]; !ok {
		return false, nil
	}
	f := *film
	f.Genres = nil
	f.Rate = 0
	m.films[f.ID] = f
	return true, nil
}

func (m *MemoryStore) DeleteFilm(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.films[id]; !ok {
		return false, nil
	}
	delete(m.films, id)
	delete(m.filmGenres, id)
	delete(m.likes, id)
	return true, nil
}

func (m *MemoryStore) ListLikedBy(ctx context.Context, userID int64) ([]domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var films []domain.Film
	for filmID, userSet := range m.likes {
		if _, ok := userSet[userID]; ok {
			films = append(films, m.filmWithRate(filmID))
		}
	}
	sort.Slice(films, func(i, j int) bool { return films[i].ID < films[j].ID })
	return films, nil
}

func (m *MemoryStore) ListCommon(ctx context.Context, userID, friendID int64) ([]domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var films []domain.Film
	for filmID, userSet := range m.likes {
		_, byUser := userSet[userID]
		_, byFriend := userSet[friendID]
		if byUser && byFriend {
			films = append(films, m.filmWithRate(filmID))
		}
	}
	sort.SliceStable(films, func(i, j int) bool { return films[i].Rate > films[j].Rate })
	return films, nil
}

func (m *MemoryStore) ListTopByRate(ctx context.Context, count int) ([]domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	films := make([]domain.Film, 0, len(m.films))
	for id := range m.films {
		films = append(films, m.filmWithRate(id))
	}
	sort.SliceStable(films, func(i, j int) bool { return films[i].Rate > films[j].Rate })
	if count < len(films) {
		films = films[:count]
	}
	return films, nil
}

// filmWithRate returns a copy with Rate recomputed and the MPA name
// resolved, mirroring what the Postgres join produces; callers hold the lock.
func (m *MemoryStore) filmWithRate(id int64) domain.Film {
	f := m.films[id]
	if f.Mpa != nil {
		if full, ok := m.mpas[f.Mpa.ID]; ok {
			f.Mpa = &full
		} else {
			mpa := *f.Mpa
			f.Mpa = &mpa
		}
	}
	f.Rate = len(m.likes[id])
	return f
}

// ----- mpa -----

func (m *MemoryStore) ListMpa(ctx context.Context) ([]domain.Mpa, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mpas := make([]domain.Mpa, 0, len(m.mpas))
	for _, mpa := range m.mpas {
		mpas = append(mpas, mpa)
	}
	sort.Slice(mpas, func(i, j int) bool { return mpas[i].ID < mpas[j].ID })
	return mpas, nil
}

func (m *MemoryStore) GetMpaByID(ctx context.Context, id int) (*domain.Mpa, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mpa, ok := m.mpas[id]
	if !ok {
		return nil, ErrMpaNotFound
	}
	return &mpa, nil
}

// ----- genres -----

func (m *MemoryStore) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	genres := make([]domain.Genre, 0, len(m.genres))
	for _, g := range m.genres {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].ID < genres[j].ID })
	return genres, nil
}

func (m *MemoryStore) GetGenreByID(ctx context.Context, id int) (*domain.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.genres[id]
	if !ok {
		return nil, ErrGenreNotFound
	}
	return &g, nil
}

func (m *MemoryStore) GetGenresByIDs(ctx context.Context, ids []int) (map[int]domain.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	found := make(map[int]domain.Genre, len(ids))
	for _, id := range ids {
		if g, ok := m.genres[id]; ok {
			found[id] = g
		}
	}
	return found, nil
}

// ----- film-genre associations -----

func (m *MemoryStore) ReplaceForFilm(ctx context.Context, filmID int64, genres []domain.Genre) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.filmGenres, filmID)
	if len(genres) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(genres))
	stored := make([]domain.Genre, 0, len(genres))
	for _, g := range genres {
		if _, dup := seen[g.ID]; dup {
			continue
		}
		seen[g.ID] = struct{}{}
		if full, ok := m.genres[g.ID]; ok {
			stored = append(stored, full)
		} else {
			stored = append(stored, g)
		}
	}
	m.filmGenres[filmID] = stored
	return nil
}

func (m *MemoryStore) DeleteForFilm(ctx context.Context, filmID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.filmGenres, filmID)
	return nil
}

func (m *MemoryStore) GetForFilm(ctx context.Context, filmID int64) ([]domain.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	genres := m.filmGenres[filmID]
	out := make([]domain.Genre, len(genres))
	copy(out, genres)
	return out, nil
}

func (m *MemoryStore) GetForFilms(ctx context.Context, filmIDs []int64) (map[int64][]domain.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	grouped := make(map[int64][]domain.Genre)
	for _, id := range filmIDs {
		if genres, ok := m.filmGenres[id]; ok {
			out := make([]domain.Genre, len(genres))
			copy(out, genres)
			grouped[id] = out
		}
	}
	return grouped, nil
}

func (m *MemoryStore) GetAllGroupedByFilm(ctx context.Context) (map[int64][]domain.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	grouped := make(map[int64][]domain.Genre, len(m.filmGenres))
	for id, genres := range m.filmGenres {
		out := make([]domain.Genre, len(genres))
		copy(out, genres)
		grouped[id] = out
	}
	return grouped, nil
}

// ----- likes -----

func (m *MemoryStore) AddLike(ctx context.Context, filmID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.likes[filmID]
	if !ok {
		set = make(map[int64]struct{})
		m.likes[filmID] = set
	}
	if _, exists := set[userID]; exists {
		return false, nil
	}
	set[userID] = struct{}{}
	return true, nil
}

func (m *MemoryStore) RemoveLike(ctx context.Context, filmID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.likes[filmID]
	if !ok {
		return false, nil
	}
	if _, exists := set[userID]; !exists {
		return false, nil
	}
	delete(set, userID)
	return true, nil
}
