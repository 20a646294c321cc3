package service

import (
	"context"
	"log"

	"github.com/gofrs/uuid"

	"taskflow/internal/repository"
)

// AuditService appends activity records. Recording is fire-and-forget: a
// failed write is logged and never fails the operation being audited.
type AuditService struct {
	repo *repository.ActivityRepository
}

func NewAuditService(repo *repository.ActivityRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Record(ctx context.Context, actorID uuid.UUID, action, details string, taskID *uuid.UUID) {
	if err := s.repo.Create(ctx, actorID, action, details, taskID); err != nil {
		log.Printf("activity log: %v", err)
	}
}
