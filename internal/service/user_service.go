package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/plataform/plataform-api/internal/dto"
	"github.com/plataform/plataform-api/internal/models"
	appErrors "github.com/plataform/plataform-api/pkg/errors"
)

type profileUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type profileRanker interface {
	RankOf(ctx context.Context, userID string) (int, error)
}

// UserService serves user profiles: the full view for the owner, a
// public-safe subset for everyone else.
type UserService struct {
	users   profileUserReader
	ranking profileRanker
	logger  *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users profileUserReader, ranking profileRanker, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, ranking: ranking, logger: logger}
}

const memberSinceLayout = "02-01-2006"

// Profile returns the profile of the requested user. callerID is empty
// for anonymous requests. Only the subject sees the full profile, and
// rank is computed only for the full profile of a student.
func (s *UserService) Profile(ctx context.Context, callerID, subjectID string) (interface{}, error) {
	user, err := s.users.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if callerID != "" && callerID == user.ID {
		return s.fullProfile(ctx, user), nil
	}
	return s.publicProfile(ctx, user), nil
}

func (s *UserService) fullProfile(ctx context.Context, user *models.User) *dto.FullProfile {
	profile := &dto.FullProfile{
		ID:              user.ID,
		Email:           user.Email,
		Username:        user.Username,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Role:            user.Role,
		Aura:            user.Aura,
		Specialty:       user.Specialty,
		ExperienceYears: user.ExperienceYears,
		Verified:        user.Verified,
		HourlyRate:      user.HourlyRate,
		MemberSince:     user.JoinedAt.Format(memberSinceLayout),
	}
	if user.Birthday != nil {
		birthday := user.Birthday.Format("2006-01-02")
		profile.Birthday = &birthday
	}
	if user.Role == models.RoleStudent {
		profile.Ranking = s.rankOf(ctx, user.ID)
	}
	return profile
}

func (s *UserService) publicProfile(ctx context.Context, user *models.User) *dto.PublicProfile {
	return &dto.PublicProfile{
		ID:          user.ID,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		FullName:    user.FullName(),
		Aura:        user.Aura,
		Specialty:   user.Specialty,
		MemberSince: user.JoinedAt.Format(memberSinceLayout),
	}
}

func (s *UserService) rankOf(ctx context.Context, userID string) *int {
	rank, err := s.ranking.RankOf(ctx, userID)
	if err != nil {
		// Non-students and freshly created accounts are simply unranked.
		return nil
	}
	return &rank
}
