package ports

import (
	"context"

	"github.com/wadjakorntonsri/linkcomment/pkg/core/domain"
)

// LinkCommentRepository defines storage operations for link comments.
// Every read and delete is scoped to an owner.
type LinkCommentRepository interface {
	Insert(ctx context.Context, lc *domain.LinkComment) (string, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.LinkComment, error)
	DeleteByOwnerAndID(ctx context.Context, owner, id string) error
}

// LinkCommentService defines the business logic operations
type LinkCommentService interface {
	Create(ctx context.Context, owner, url, comment string) (string, error)
	List(ctx context.Context, owner string) ([]domain.LinkComment, error)
	Delete(ctx context.Context, owner, id string) (string, error)
}

// TokenVerifier turns a raw Authorization header into a verified identity.
// Errors are *domain.AuthError.
type TokenVerifier interface {
	Verify(ctx context.Context, authorizationHeader string) (domain.Identity, error)
}
