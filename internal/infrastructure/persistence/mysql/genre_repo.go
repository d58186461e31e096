package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookrec/internal/domain/genre"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

type genreRepository struct {
	baseRepo
}

// NewGenreRepository 创建分类仓储
func NewGenreRepository(db *gorm.DB) genre.Repository {
	return &genreRepository{baseRepo{db: db}}
}

func (r *genreRepository) Create(ctx context.Context, g *genre.Genre) error {
	model := &GenreModel{Tag: g.Tag, CreatedAt: g.CreatedAt}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return genre.ErrGenreDuplicate
		}
		return apperrors.Wrap(err, "创建分类失败")
	}
	g.ID = model.ID
	return nil
}

func (r *genreRepository) FindByID(ctx context.Context, id uint) (*genre.Genre, error) {
	var model GenreModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, genre.ErrGenreNotFound
		}
		return nil, apperrors.Wrap(err, "查询分类失败")
	}
	return toGenreEntity(&model), nil
}

func (r *genreRepository) FindByTag(ctx context.Context, tag string) (*genre.Genre, error) {
	var model GenreModel
	if err := r.getDB(ctx).Where("LOWER(tag) = LOWER(?)", tag).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, genre.ErrGenreNotFound
		}
		return nil, apperrors.Wrap(err, "查询分类失败")
	}
	return toGenreEntity(&model), nil
}

func (r *genreRepository) List(ctx context.Context) ([]*genre.Genre, error) {
	var models []GenreModel
	if err := r.getDB(ctx).Order("tag ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分类列表失败")
	}
	genres := make([]*genre.Genre, len(models))
	for i := range models {
		genres[i] = toGenreEntity(&models[i])
	}
	return genres, nil
}

func (r *genreRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&GenreModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除分类失败")
	}
	if result.RowsAffected == 0 {
		return genre.ErrGenreNotFound
	}
	return nil
}

func toGenreEntity(m *GenreModel) *genre.Genre {
	return &genre.Genre{ID: m.ID, Tag: m.Tag, CreatedAt: m.CreatedAt}
}
