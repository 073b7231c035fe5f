package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/linkcomment/pkg/core/domain"
	"github.com/wadjakorntonsri/linkcomment/pkg/ports"
)

type LinkCommentService struct {
	repo  ports.LinkCommentRepository
	now   func() time.Time
	newID func() string
}

func NewLinkCommentService(repo ports.LinkCommentRepository) *LinkCommentService {
	return &LinkCommentService{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create stores a new link comment owned by owner and returns its id.
func (s *LinkCommentService) Create(ctx context.Context, owner, url, comment string) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}

	lc := &domain.LinkComment{
		ID:        s.newID(),
		Link:      url,
		Comment:   comment,
		Owner:     owner,
		CreatedAt: epochSeconds(s.now()),
		UpdatedAt: nil,
	}

	return s.repo.Insert(ctx, lc)
}

// List returns the owner's link comments in store order.
func (s *LinkCommentService) List(ctx context.Context, owner string) ([]domain.LinkComment, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}

	items, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.LinkComment{}
	}
	return items, nil
}

// Delete removes the owner's link comment with the given id. Deleting an id
// that does not exist or belongs to someone else is not an error; the id is
// echoed back either way.
func (s *LinkCommentService) Delete(ctx context.Context, owner, id string) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}
	if id == "" {
		return "", fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}

	if err := s.repo.DeleteByOwnerAndID(ctx, owner, id); err != nil {
		return "", err
	}
	return id, nil
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
