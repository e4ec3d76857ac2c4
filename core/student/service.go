package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mikobi/darasa/core"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrStudentIDExists = errors.New("a student with this ID already exists")
	// ErrAuthFailed covers both an unknown ID and a wrong password; callers
	// must present the same message for either so neither can be probed.
	ErrAuthFailed = errors.New("invalid credentials")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByStudentID(ctx context.Context, studentID string) (Student, error)
		CountStudents(ctx context.Context) (int, error)
		// TopStudentsByScore returns at most limit entries ordered by score
		// descending, ties broken by student_id ascending.
		TopStudentsByScore(ctx context.Context, limit int) ([]RankEntry, error)
		UpdateStudentPassword(ctx context.Context, studentID string, hash []byte) error
	}

	Service interface {
		Create(ctx context.Context, ns NewStudent) (Student, error)
		GetByStudentID(ctx context.Context, studentID string) (Student, error)
		Authenticate(ctx context.Context, studentID, pwd string) (Student, error)
		Leaderboard(ctx context.Context, limit int) ([]RankEntry, error)
		Count(ctx context.Context) (int, error)
		SetPassword(ctx context.Context, studentID, pwd string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		StudentID: ns.StudentID,
		Name:      ns.Name,
		Score:     ns.Score,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ns.Email != "" {
		std.Email.SetValid(ns.Email)
	}
	if err := std.SetPassword(ns.Password); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *service) GetByStudentID(ctx context.Context, studentID string) (Student, error) {
	return svc.repo.GetStudentByStudentID(ctx, core.CleanString(studentID, true /* lower */))
}

// Authenticate checks the given credentials against the stored bcrypt hash.
// Unknown ID and password mismatch both come back as ErrAuthFailed; lookup
// failures are returned wrapped so the boundary can log them while showing
// the same message.
func (svc *service) Authenticate(ctx context.Context, studentID, pwd string) (Student, error) {
	std, err := svc.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Student{}, ErrAuthFailed
		}
		return Student{}, errors.Wrap(err, "finding student by ID")
	}
	if err = std.CheckPassword(pwd); err != nil {
		return Student{}, ErrAuthFailed
	}
	return std, nil
}

func (svc *service) Leaderboard(ctx context.Context, limit int) ([]RankEntry, error) {
	entries, err := svc.repo.TopStudentsByScore(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying leaderboard")
	}
	if entries == nil {
		entries = []RankEntry{}
	}
	return entries, nil
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountStudents(ctx)
}

func (svc *service) SetPassword(ctx context.Context, studentID, pwd string) error {
	std := Student{}
	if err := std.SetPassword(pwd); err != nil {
		return err
	}
	return svc.repo.UpdateStudentPassword(ctx, core.CleanString(studentID, true /* lower */), std.PasswordHash)
}
