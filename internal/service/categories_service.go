package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/internal/repository"
	"github.com/limbo/worklog/pkg/entity"
)

type CategoriesService struct {
	repo repository.CategoriesRepositoryI
}

func NewCategoriesService(categoriesRepo repository.CategoriesRepositoryI) *CategoriesService {
	if categoriesRepo == nil {
		log.Fatal("provided nil categoriesRepo")
	}
	return &CategoriesService{
		repo: categoriesRepo,
	}
}

func (cs *CategoriesService) Create(ctx context.Context, uid uuid.UUID, req CreateCategoryRequest) (*entity.Category, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errors.Join(errorvalues.ErrValidation, err)
	}
	id, err := cs.repo.Create(ctx, &entity.Category{
		UserID: uid,
		Name:   req.Name,
		Color:  req.Color,
		Icon:   req.Icon,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("categories repository error: " + err.Error())
	}
	category, err := cs.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("categories repository error: " + err.Error())
	}
	return category, nil
}

func (cs *CategoriesService) List(ctx context.Context, uid uuid.UUID) ([]*entity.Category, error) {
	categories, err := cs.repo.GetByUserID(ctx, uid)
	if err != nil {
		return nil, errors.New("categories repository error: " + err.Error())
	}
	return categories, nil
}

func (cs *CategoriesService) Get(ctx context.Context, id, uid uuid.UUID) (*entity.Category, error) {
	category, err := cs.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, errors.New("categories repository error: " + err.Error())
	}
	if category.UserID != uid {
		return nil, errorvalues.ErrWrongOwner
	}
	return category, nil
}

func (cs *CategoriesService) Update(ctx context.Context, id, uid uuid.UUID, req UpdateCategoryRequest) (*entity.Category, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errors.Join(errorvalues.ErrValidation, err)
	}
	category, err := cs.Get(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	err = cs.repo.Update(ctx, category)
	if err != nil {
		if errors.Is(err, errorvalues.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, errors.New("categories repository error: " + err.Error())
	}
	return category, nil
}

func (cs *CategoriesService) Delete(ctx context.Context, id, uid uuid.UUID) error {
	_, err := cs.Get(ctx, id, uid)
	if err != nil {
		return err
	}
	err = cs.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrCategoryNotFound) {
			return err
		}
		return errors.New("categories repository error: " + err.Error())
	}
	return nil
}

func (cs *CategoriesService) Reorder(ctx context.Context, uid uuid.UUID, ids []uuid.UUID) ([]*entity.Category, error) {
	if len(ids) == 0 {
		return nil, errors.Join(errorvalues.ErrValidation, errors.New("empty category id list"))
	}
	err := cs.repo.Reorder(ctx, uid, ids)
	if err != nil {
		if errors.Is(err, errorvalues.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, errors.New("categories repository error: " + err.Error())
	}
	return cs.List(ctx, uid)
}
