package upload

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/mikobi/darasa/core"
	"github.com/mikobi/darasa/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("upload not found")
	// ErrNotPending rejects a review of a row that already left `pending`;
	// reviewed rows are terminal.
	ErrNotPending = errors.New("upload has already been reviewed")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateUpload(ctx context.Context, up Upload) (Upload, error)
		GetUpload(ctx context.Context, id string) (Upload, error)
		// QueryUploads applies AND on the filter's set fields; default
		// ordering is creation time, newest first.
		QueryUploads(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Upload, error)
		CountUploads(ctx context.Context, status string) (int, error)
		// ReviewUpload transitions the row out of `pending` and adds points
		// to the owning student's score as one atomic unit. The transition
		// is conditional on the row still being `pending`: a concurrent
		// review wins at most once. Returns ErrNotFound or ErrNotPending.
		ReviewUpload(ctx context.Context, id, status string, points int) (Upload, error)
	}

	Service interface {
		Submit(ctx context.Context, std student.Student, nu NewUpload) (Upload, error)
		ListByStudent(ctx context.Context, studentID string) ([]Upload, error)
		ListPending(ctx context.Context, ordering ...core.DBOrdering) ([]Upload, error)
		Review(ctx context.Context, id string, dec ReviewDecision) (Upload, error)
		Stats(ctx context.Context) (Stats, error)
	}

	service struct {
		repo    Repository
		stdRepo student.Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, stdRepo student.Repository, mailSvc core.EmailService, logger core.Logger) Service {
	return &service{
		repo:    repo,
		stdRepo: stdRepo,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

// Submit validates a photo submission and stores it as a pending Upload
// tagged with the date-only upload date and the week number.
func (svc *service) Submit(ctx context.Context, std student.Student, nu NewUpload) (Upload, error) {
	if err := nu.Validate(); err != nil {
		return Upload{}, err
	}
	now := NowFunc().UTC()
	up := Upload{
		StudentID:   std.StudentID,
		StudentName: std.Name,
		ImageURL:    nu.dataURL(),
		Status:      StatusPending,
		UploadDate:  now.Format("2006-01-02"),
		WeekNumber:  WeekNumber(now),
		CreatedAt:   now,
	}
	up, err := svc.repo.CreateUpload(ctx, up)
	if err != nil {
		return Upload{}, errors.Wrap(err, "inserting upload")
	}
	return up, nil
}

func (svc *service) ListByStudent(ctx context.Context, studentID string) ([]Upload, error) {
	return svc.query(ctx, QueryFilter{StudentID: studentID})
}

func (svc *service) ListPending(ctx context.Context, ordering ...core.DBOrdering) ([]Upload, error) {
	return svc.query(ctx, QueryFilter{Status: StatusPending}, ordering...)
}

func (svc *service) query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Upload, error) {
	ups, err := svc.repo.QueryUploads(ctx, filter, ordering...)
	if err != nil {
		return nil, errors.Wrap(err, "querying uploads")
	}
	if ups == nil {
		ups = []Upload{}
	}
	return ups, nil
}

// Review applies a teacher's decision. Only `pending` rows may transition;
// approving adds the decision's points (DefaultReviewPoints when omitted) to
// the student's score in the same transaction as the status write.
func (svc *service) Review(ctx context.Context, id string, dec ReviewDecision) (Upload, error) {
	var points int
	switch dec.Decision {
	case StatusApproved:
		points = dec.Points
		if points == 0 {
			points = DefaultReviewPoints
		}
	case StatusRejected:
		points = 0
	default:
		return Upload{}, core.NewValidationError(
			errors.New("invalid decision"),
			core.FieldError{Field: "decision", Error: "must be approved or rejected"},
		)
	}

	up, err := svc.repo.ReviewUpload(ctx, id, dec.Decision, points)
	if err != nil {
		return Upload{}, err
	}

	svc.notifyStudent(ctx, up, points)
	return up, nil
}

// notifyStudent emails the decision to the student when an email is on
// file. Best effort: failures are logged, never returned.
func (svc *service) notifyStudent(ctx context.Context, up Upload, points int) {
	std, err := svc.stdRepo.GetStudentByStudentID(ctx, up.StudentID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("loading student %s for review notification", up.StudentID), err)
		return
	}
	if !std.Email.Valid {
		return
	}

	text := fmt.Sprintf("Your photo submitted on %s (week %d) was %s.", up.UploadDate, up.WeekNumber, up.Status)
	if up.Status == StatusApproved {
		text += fmt.Sprintf(" %d points were added to your score.", points)
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: std.Name, Address: std.Email.String}},
		Subject:     "Your weekly photo has been reviewed",
		TextContent: text,
	})
}

// Stats runs the three dashboard counts independently; a failed count is
// logged and reported as 0 so the others still display. A missing backend
// handle is the one failure that does block: there is nothing to degrade to.
func (svc *service) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	if n, err := svc.stdRepo.CountStudents(ctx); err != nil {
		if errors.Cause(err) == core.ErrNotConfigured {
			return Stats{}, err
		}
		svc.logger.Error("counting students", err)
	} else {
		st.TotalStudents = n
	}
	if n, err := svc.repo.CountUploads(ctx, StatusPending); err != nil {
		svc.logger.Error("counting pending uploads", err)
	} else {
		st.Pending = n
	}
	if n, err := svc.repo.CountUploads(ctx, StatusApproved); err != nil {
		svc.logger.Error("counting approved uploads", err)
	} else {
		st.Approved = n
	}
	return st, nil
}
