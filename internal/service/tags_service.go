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

type TagsService struct {
	repo repository.TagsRepositoryI
}

func NewTagsService(tagsRepo repository.TagsRepositoryI) *TagsService {
	if tagsRepo == nil {
		log.Fatal("provided nil tagsRepo")
	}
	return &TagsService{
		repo: tagsRepo,
	}
}

func (ts *TagsService) Create(ctx context.Context, uid uuid.UUID, req CreateTagRequest) (*entity.Tag, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errors.Join(errorvalues.ErrValidation, err)
	}
	id, err := ts.repo.Create(ctx, &entity.Tag{
		UserID: uid,
		Name:   req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrTagExists), errors.Is(err, errorvalues.ErrUserNotFound):
			return nil, err
		}
		return nil, errors.New("tags repository error: " + err.Error())
	}
	tag, err := ts.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("tags repository error: " + err.Error())
	}
	return tag, nil
}

func (ts *TagsService) List(ctx context.Context, uid uuid.UUID) ([]*entity.Tag, error) {
	tags, err := ts.repo.GetByUserID(ctx, uid)
	if err != nil {
		return nil, errors.New("tags repository error: " + err.Error())
	}
	return tags, nil
}

func (ts *TagsService) Delete(ctx context.Context, id, uid uuid.UUID) error {
	tag, err := ts.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTagNotFound) {
			return err
		}
		return errors.New("tags repository error: " + err.Error())
	}
	if tag.UserID != uid {
		return errorvalues.ErrWrongOwner
	}
	err = ts.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTagNotFound) {
			return err
		}
		return errors.New("tags repository error: " + err.Error())
	}
	return nil
}
