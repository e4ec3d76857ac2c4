package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mikobi/darasa/core"
	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/core/teacher"
	"github.com/mikobi/darasa/core/upload"
)

// NewValidator returns a validator and translator set up the way the apps
// do it at startup.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	return validate, translator
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	studentID, name, email, pwd string,
	score int,
) student.Student {
	t.Helper()

	now := time.Now().UTC()
	std := student.Student{
		StudentID: studentID,
		Name:      name,
		Score:     score,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if email != "" {
		std.Email.SetValid(email)
	}
	if pwd != "" {
		if err := std.SetPassword(pwd); err != nil {
			t.Fatalf("CreateStudent(): %v", err)
		}
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return std
}

func CreateTeacher(
	t *testing.T,
	repo teacher.Repository,
	teacherID, name, pwd string,
) teacher.Teacher {
	t.Helper()

	now := time.Now().UTC()
	tch := teacher.Teacher{
		TeacherID: teacherID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := tch.SetPassword(pwd); err != nil {
			t.Fatalf("CreateTeacher(): %v", err)
		}
	}
	tch, err := repo.CreateTeacher(context.Background(), tch)
	if err != nil {
		t.Fatalf("CreateTeacher(): %v", err)
	}
	return tch
}

func CreateUpload(
	t *testing.T,
	repo upload.Repository,
	std student.Student,
	status string,
	createdAt ...time.Time,
) upload.Upload {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	up := upload.Upload{
		StudentID:   std.StudentID,
		StudentName: std.Name,
		ImageURL:    "data:image/png;base64,",
		Status:      status,
		UploadDate:  tstamp.Format("2006-01-02"),
		WeekNumber:  upload.WeekNumber(tstamp),
		CreatedAt:   tstamp,
	}
	up, err := repo.CreateUpload(context.Background(), up)
	if err != nil {
		t.Fatalf("CreateUpload(): %v", err)
	}
	return up
}

// NopLogger drops everything; it keeps service noise out of test output.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}
