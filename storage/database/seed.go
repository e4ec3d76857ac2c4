package database

import (
	"context"
	"encoding/base64"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/core/teacher"
	"github.com/mikobi/darasa/core/upload"
)

// Fixed sample credentials, matching the documented test accounts.
var (
	SampleStudents = []student.NewStudent{
		{StudentID: "student123", Name: "Zhang San", Password: "123456"},
		{StudentID: "student456", Name: "Li Si", Password: "123456", Score: 80},
		{StudentID: "student789", Name: "Wang Wu", Password: "123456", Score: 150},
	}
	SampleTeachers = []teacher.NewTeacher{
		{TeacherID: "teacher123", Name: "Teacher Li", Password: "123456"},
	}

	// a 1x1 transparent PNG
	samplePNG, _ = base64.StdEncoding.DecodeString(
		"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")
)

// Seed ensures the students and teachers tables contain the sample rows.
// Idempotent by tolerance, not by upsert: a duplicate-key failure on re-run
// is swallowed and the existing row is left untouched (scores are NOT
// reset); any other failure aborts before the sample uploads are inserted.
func Seed(ctx context.Context, stdSvc student.Service, tchSvc teacher.Service, upSvc upload.Service) error {
	for _, nt := range SampleTeachers {
		if _, err := tchSvc.Create(ctx, nt); err != nil && !IsDuplicateKeyErr(err) {
			return errors.Wrap(err, "seeding teacher "+nt.TeacherID)
		}
	}
	for _, ns := range SampleStudents {
		if _, err := stdSvc.Create(ctx, ns); err != nil && !IsDuplicateKeyErr(err) {
			return errors.Wrap(err, "seeding student "+ns.StudentID)
		}
	}
	return seedUploads(ctx, stdSvc, upSvc)
}

// seedUploads adds one pending sample submission so the review screen has
// something to show. Re-runs pile up extra rows; that is fine for test data.
func seedUploads(ctx context.Context, stdSvc student.Service, upSvc upload.Service) error {
	std, err := stdSvc.GetByStudentID(ctx, "student456")
	if err != nil {
		return errors.Wrap(err, "loading sample student")
	}
	ups, err := upSvc.ListByStudent(ctx, std.StudentID)
	if err != nil {
		return errors.Wrap(err, "listing sample uploads")
	}
	if len(ups) > 0 {
		return nil
	}
	_, err = upSvc.Submit(ctx, std, upload.NewUpload{
		Filename:    "sample.png",
		ContentType: "image/png",
		Data:        samplePNG,
	})
	return errors.Wrap(err, "seeding sample upload")
}

// IsDuplicateKeyErr reports whether err is a unique-constraint violation,
// from postgres or from the in-memory repositories.
func IsDuplicateKeyErr(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}
	cause := errors.Cause(err)
	return cause == student.ErrStudentIDExists || cause == teacher.ErrTeacherIDExists
}
