package teacher

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mikobi/darasa/core"
)

var (
	// errors
	ErrNotFound        = errors.New("teacher not found")
	ErrTeacherIDExists = errors.New("a teacher with this ID already exists")
	ErrAuthFailed      = errors.New("invalid credentials")
)

type (
	Repository interface {
		CreateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		GetTeacherByTeacherID(ctx context.Context, teacherID string) (Teacher, error)
		UpdateTeacherPassword(ctx context.Context, teacherID string, hash []byte) error
	}

	Service interface {
		Create(ctx context.Context, nt NewTeacher) (Teacher, error)
		GetByTeacherID(ctx context.Context, teacherID string) (Teacher, error)
		Authenticate(ctx context.Context, teacherID, pwd string) (Teacher, error)
		SetPassword(ctx context.Context, teacherID, pwd string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	now := time.Now().UTC()
	tch := Teacher{
		TeacherID: nt.TeacherID,
		Name:      nt.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tch.SetPassword(nt.Password); err != nil {
		return Teacher{}, err
	}
	return svc.repo.CreateTeacher(ctx, tch)
}

func (svc *service) GetByTeacherID(ctx context.Context, teacherID string) (Teacher, error) {
	return svc.repo.GetTeacherByTeacherID(ctx, core.CleanString(teacherID, true /* lower */))
}

// Authenticate mirrors student.Service.Authenticate: unknown ID and wrong
// password are indistinguishable to the caller's user.
func (svc *service) Authenticate(ctx context.Context, teacherID, pwd string) (Teacher, error) {
	tch, err := svc.GetByTeacherID(ctx, teacherID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Teacher{}, ErrAuthFailed
		}
		return Teacher{}, errors.Wrap(err, "finding teacher by ID")
	}
	if err = tch.CheckPassword(pwd); err != nil {
		return Teacher{}, ErrAuthFailed
	}
	return tch, nil
}

func (svc *service) SetPassword(ctx context.Context, teacherID, pwd string) error {
	tch := Teacher{}
	if err := tch.SetPassword(pwd); err != nil {
		return err
	}
	return svc.repo.UpdateTeacherPassword(ctx, core.CleanString(teacherID, true /* lower */), tch.PasswordHash)
}
