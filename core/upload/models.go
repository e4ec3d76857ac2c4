package upload

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mikobi/darasa/core"
)

// Upload statuses. pending is the only non-terminal status: a row moves out
// of it exactly once and is never re-reviewed.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// MaxImageSize is the submission size cap: 5 MiB.
const MaxImageSize = 5 << 20

// DefaultReviewPoints is added to the student's score when an approval does
// not specify an amount.
const DefaultReviewPoints = 10

type Upload struct {
	ID          string    `json:"id" db:"id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	StudentName string    `json:"student_name" db:"student_name"` // denormalized copy
	ImageURL    string    `json:"image_url" db:"image_url"`       // data-URL encoded image payload
	Status      string    `json:"status" db:"status"`
	UploadDate  string    `json:"upload_date" db:"upload_date"` // date-only ISO
	WeekNumber  int       `json:"week_number" db:"week_number"`
	ReviewedAt  null.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

func (u Upload) IsPending() bool {
	return u.Status == StatusPending
}

// NewUpload is a photo submission before it is stored.
type NewUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

var (
	errFileMissing = errors.New("no file was submitted")
	errNotAnImage  = errors.New("only image files are accepted")
	errFileTooBig  = errors.New("image may not exceed 5 MiB")
)

// Validate runs the submission checks in order; the first failing check
// wins and nothing past it runs.
func (nu *NewUpload) Validate() error {
	if len(nu.Data) == 0 {
		return core.NewValidationError(errFileMissing, core.FieldError{Field: "photo", Error: errFileMissing.Error()})
	}
	if !strings.HasPrefix(nu.ContentType, "image/") {
		return core.NewValidationError(errNotAnImage, core.FieldError{Field: "photo", Error: errNotAnImage.Error()})
	}
	if len(nu.Data) > MaxImageSize {
		return core.NewValidationError(errFileTooBig, core.FieldError{Field: "photo", Error: errFileTooBig.Error()})
	}
	return nil
}

// dataURL embeds the image bytes as a data-URL string, the storage format
// for image payloads (there is no file storage engine).
func (nu NewUpload) dataURL() string {
	return "data:" + nu.ContentType + ";base64," + base64.StdEncoding.EncodeToString(nu.Data)
}

// WeekNumber computes the week-of-year tag for a submission date.
//
// This is intentionally NOT the ISO-8601 week number: the first day of the
// year is weekday-indexed with Sunday as 0 and the first (partial) week
// counts as week 1. Historical rows were tagged with this formula, so it
// must stay bit-exact: ceil((pastDays + weekday(Jan 1) + 1) / 7).
func WeekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	pastDays := t.YearDay() - 1
	return (pastDays + int(jan1.Weekday()) + 1 + 6) / 7
}

// ReviewDecision is a teacher's verdict on a pending Upload.
type ReviewDecision struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	// Points to add to the student's score on approval; DefaultReviewPoints
	// when omitted. Ignored on rejection.
	Points int `json:"points" validate:"omitempty,min=0"`
}

func (rd *ReviewDecision) Validate(validate *validator.Validate) error {
	rd.Decision = core.CleanString(rd.Decision, true /* lower */)
	return validate.Struct(rd)
}

// QueryFilter narrows an Upload listing. Zero values mean "any".
type QueryFilter struct {
	StudentID string `query:"student_id"`
	Status    string `query:"status"`
}

// Stats is the teacher dashboard summary.
type Stats struct {
	TotalStudents int `json:"total_students"`
	Pending       int `json:"pending"`
	Approved      int `json:"approved"`
}
