package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type stubSubjectRepo struct {
	subjects []models.Subject
}

func (s *stubSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	return s.subjects, len(s.subjects), nil
}

func (s *stubSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	for _, subject := range s.subjects {
		if subject.ID == id {
			found := subject
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	for _, existing := range s.subjects {
		if existing.Code == subject.Code {
			return appErrors.Clone(appErrors.ErrDuplicateRecord, "")
		}
	}
	subject.ID = "sub-" + subject.Code
	s.subjects = append(s.subjects, *subject)
	return nil
}

func TestSubjectServiceCreateNormalisesCode(t *testing.T) {
	repo := &stubSubjectRepo{}
	svc := NewSubjectService(repo, nil, nil)
	ctx := context.Background()

	subject, err := svc.Create(ctx, dto.CreateSubjectRequest{Code: " math ", Name: "Mathematics"})
	require.NoError(t, err)
	assert.Equal(t, "MATH", subject.Code)

	_, err = svc.Create(ctx, dto.CreateSubjectRequest{Code: "MATH", Name: "Maths again"})
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateRecord))

	_, err = svc.Create(ctx, dto.CreateSubjectRequest{Name: "No code"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	list, total, err := svc.List(ctx, models.SubjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	_, err = svc.Get(ctx, "sub-unknown")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
