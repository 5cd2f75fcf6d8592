package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
)

type SessionOutput struct {
	UserID    int64
	Identity  string
	Role      string
	Method    string
	State     string
	StepUp    bool
	ExpiresAt time.Time
}

func (s *Usecase) Session(ctx context.Context) (*SessionOutput, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	return &SessionOutput{
		UserID:    clm.UserID,
		Identity:  clm.UserEmail,
		Role:      clm.Role,
		Method:    clm.Method,
		State:     clm.State(),
		StepUp:    clm.StepUp,
		ExpiresAt: clm.ExpiresAt.Time,
	}, nil
}
