// Package unconfigured provides repository stand-ins used when no backend
// credentials are available at startup. Every operation fails with
// core.ErrNotConfigured so callers surface a clear message instead of
// panicking on a nil handle.
package unconfigured

import (
	"context"

	"github.com/mikobi/darasa/core"
	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/core/teacher"
	"github.com/mikobi/darasa/core/upload"
)

type (
	StudentRepository struct{}
	TeacherRepository struct{}
	UploadRepository  struct{}
)

var (
	_ student.Repository = (*StudentRepository)(nil)
	_ teacher.Repository = (*TeacherRepository)(nil)
	_ upload.Repository  = (*UploadRepository)(nil)
)

func (StudentRepository) CreateStudent(context.Context, student.Student) (student.Student, error) {
	return student.Student{}, core.ErrNotConfigured
}
func (StudentRepository) GetStudentByStudentID(context.Context, string) (student.Student, error) {
	return student.Student{}, core.ErrNotConfigured
}
func (StudentRepository) CountStudents(context.Context) (int, error) {
	return 0, core.ErrNotConfigured
}
func (StudentRepository) TopStudentsByScore(context.Context, int) ([]student.RankEntry, error) {
	return nil, core.ErrNotConfigured
}
func (StudentRepository) UpdateStudentPassword(context.Context, string, []byte) error {
	return core.ErrNotConfigured
}

func (TeacherRepository) CreateTeacher(context.Context, teacher.Teacher) (teacher.Teacher, error) {
	return teacher.Teacher{}, core.ErrNotConfigured
}
func (TeacherRepository) GetTeacherByTeacherID(context.Context, string) (teacher.Teacher, error) {
	return teacher.Teacher{}, core.ErrNotConfigured
}
func (TeacherRepository) UpdateTeacherPassword(context.Context, string, []byte) error {
	return core.ErrNotConfigured
}

func (UploadRepository) CreateUpload(context.Context, upload.Upload) (upload.Upload, error) {
	return upload.Upload{}, core.ErrNotConfigured
}
func (UploadRepository) GetUpload(context.Context, string) (upload.Upload, error) {
	return upload.Upload{}, core.ErrNotConfigured
}
func (UploadRepository) QueryUploads(context.Context, upload.QueryFilter, ...core.DBOrdering) ([]upload.Upload, error) {
	return nil, core.ErrNotConfigured
}
func (UploadRepository) CountUploads(context.Context, string) (int, error) {
	return 0, core.ErrNotConfigured
}
func (UploadRepository) ReviewUpload(context.Context, string, string, int) (upload.Upload, error) {
	return upload.Upload{}, core.ErrNotConfigured
}
