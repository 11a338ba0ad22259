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

type AnnouncementsService struct {
	repo repository.AnnouncementsRepositoryI
}

func NewAnnouncementsService(announcementsRepo repository.AnnouncementsRepositoryI) *AnnouncementsService {
	if announcementsRepo == nil {
		log.Fatal("provided nil announcementsRepo")
	}
	return &AnnouncementsService{
		repo: announcementsRepo,
	}
}

func (as *AnnouncementsService) List(ctx context.Context, uid uuid.UUID) ([]*entity.Announcement, error) {
	announcements, err := as.repo.ListPublished(ctx, uid)
	if err != nil {
		return nil, errors.New("announcements repository error: " + err.Error())
	}
	return announcements, nil
}

func (as *AnnouncementsService) MarkRead(ctx context.Context, uid, announcementID uuid.UUID) error {
	_, err := as.repo.GetByID(ctx, announcementID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrAnnouncementNotFound) {
			return err
		}
		return errors.New("announcements repository error: " + err.Error())
	}
	err = as.repo.MarkRead(ctx, uid, announcementID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrAnnouncementNotFound) {
			return err
		}
		return errors.New("announcements repository error: " + err.Error())
	}
	return nil
}
