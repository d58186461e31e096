package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/genre"
)

type bookRepository struct {
	store *Store
}

// NewBookRepository 创建图书仓储
func NewBookRepository(store *Store) book.Repository {
	return &bookRepository{store: store}
}

// withGenre 填充分类Tag,相当于Preload("Genre")
func (r *bookRepository) withGenre(b book.Book) *book.Book {
	b.Genre = r.store.t.genres[b.GenreID].Tag
	return &b
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	defer r.store.lock(ctx)()
	t := r.store.t
	now := time.Now()
	b.ID = t.nextID("books")
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
	stored := *b
	stored.Genre = ""
	t.books[b.ID] = stored
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	defer r.store.lock(ctx)()
	b, ok := r.store.t.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return r.withGenre(b), nil
}

func (r *bookRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*book.Book, error) {
	defer r.store.lock(ctx)()
	result := make(map[uint]*book.Book, len(ids))
	for _, id := range ids {
		if b, ok := r.store.t.books[id]; ok {
			result[id] = r.withGenre(b)
		}
	}
	return result, nil
}

func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	defer r.store.lock(ctx)()
	existing, ok := r.store.t.books[b.ID]
	if !ok {
		return nil
	}
	updated := *b
	updated.Genre = ""
	updated.CreatedAt = existing.CreatedAt
	updated.Stock = existing.Stock
	r.store.t.books[b.ID] = updated
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.t.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.store.t.books, id)
	return nil
}

func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	params.Normalize()
	defer r.store.lock(ctx)()

	kw := strings.ToLower(strings.TrimSpace(params.Keyword))
	matched := make([]*book.Book, 0)
	for _, b := range r.store.t.books {
		if params.GenreID != 0 && b.GenreID != params.GenreID {
			continue
		}
		if kw != "" &&
			!strings.Contains(strings.ToLower(b.Title), kw) &&
			!strings.Contains(strings.ToLower(b.Author), kw) {
			continue
		}
		matched = append(matched, r.withGenre(b))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch params.SortBy {
		case book.SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case book.SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case book.SortRating:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		case book.SortTitle:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})

	start, end := paginate(len(matched), params.Page, params.PageSize)
	return matched[start:end], int64(len(matched)), nil
}

func (r *bookRepository) CountByGenre(ctx context.Context, genreID uint) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for _, b := range r.store.t.books {
		if b.GenreID == genreID {
			n++
		}
	}
	return n, nil
}

// LockByID 事务本身已串行化,等同于FindByID
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *bookRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	defer r.store.lock(ctx)()
	b, ok := r.store.t.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.Stock+delta < 0 {
		return b.InsufficientStock(-delta)
	}
	b.Stock += delta
	b.UpdatedAt = time.Now()
	r.store.t.books[id] = b
	return nil
}

type genreRepository struct {
	store *Store
}

// NewGenreRepository 创建分类仓储
func NewGenreRepository(store *Store) genre.Repository {
	return &genreRepository{store: store}
}

func (r *genreRepository) Create(ctx context.Context, g *genre.Genre) error {
	defer r.store.lock(ctx)()
	t := r.store.t
	for _, existing := range t.genres {
		if strings.EqualFold(existing.Tag, g.Tag) {
			return genre.ErrGenreDuplicate
		}
	}
	g.ID = t.nextID("genres")
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	t.genres[g.ID] = *g
	return nil
}

func (r *genreRepository) FindByID(ctx context.Context, id uint) (*genre.Genre, error) {
	defer r.store.lock(ctx)()
	g, ok := r.store.t.genres[id]
	if !ok {
		return nil, genre.ErrGenreNotFound
	}
	return &g, nil
}

func (r *genreRepository) FindByTag(ctx context.Context, tag string) (*genre.Genre, error) {
	defer r.store.lock(ctx)()
	for _, g := range r.store.t.genres {
		if strings.EqualFold(g.Tag, tag) {
			return &g, nil
		}
	}
	return nil, genre.ErrGenreNotFound
}

func (r *genreRepository) List(ctx context.Context) ([]*genre.Genre, error) {
	defer r.store.lock(ctx)()
	genres := make([]*genre.Genre, 0, len(r.store.t.genres))
	for _, g := range r.store.t.genres {
		genres = append(genres, &g)
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].Tag < genres[j].Tag })
	return genres, nil
}

func (r *genreRepository) Delete(ctx context.Context, id uint) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.t.genres[id]; !ok {
		return genre.ErrGenreNotFound
	}
	delete(r.store.t.genres, id)
	return nil
}
