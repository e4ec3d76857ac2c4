package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mikobi/darasa/core"
	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/core/teacher"
	"github.com/mikobi/darasa/core/upload"
	emailsvc "github.com/mikobi/darasa/services/email"
	dummydb "github.com/mikobi/darasa/storage/database/dummy"
	testutil "github.com/mikobi/darasa/tests"
)

var (
	stdRepo student.Repository
	tchRepo teacher.Repository
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	// set up DB & repos
	db := dummydb.Open()
	stdRepo = dummydb.NewStudentRepository(db)
	tchRepo = dummydb.NewTeacherRepository(db)
	upRepo := dummydb.NewUploadRepository(db)

	conf := &core.Config{
		AppName:  "Darasa",
		Database: core.DatabaseConfig{Engine: "postgres"},
	}
	validate, _ := testutil.NewValidator()

	// start CLI with in-memory services; openDB is never reached
	cli := &commandLine{
		conf:     conf,
		store:    core.NewConfigStore(filepath.Join(t.TempDir(), "backend.yaml")),
		validate: validate,
		stdSvc:   student.NewService(stdRepo),
		tchSvc:   teacher.NewService(tchRepo),
		upSvc:    upload.NewService(upRepo, stdRepo, emailsvc.NewConsoleServiceMock(conf), testutil.NopLogger{}),
	}
	cli.store.OnSave(func(s core.ConnSettings) {
		cli.conf.Database.URL = s.URL
		cli.conf.Database.Key = s.Key
		cli.reset()
	})
	return cli
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	extra   interface{}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_help(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate without subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "configure without flags", args: []string{"configure"}, wantErr: errHelp},
		{name: "configure missing key", args: []string{"configure", "-url", "postgres://db.example.com/darasa"}, wantErr: errHelp},
		{name: "addstudent without flags", args: []string{"addstudent"}, wantErr: errHelp},
		{name: "addteacher missing name", args: []string{"addteacher", "-id", "teacher123"}, wantErr: errHelp},
		{name: "resetpassword without id", args: []string{"resetpassword"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_configure(t *testing.T) {
	cli := setup(t)

	pingFunc = func(*sqlx.DB) error { return nil }

	args := []string{"admin", "configure", "-url", "postgres://app@db.example.com:5432/darasa", "-key", "s3cret"}
	if err := cli.run(args); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}

	settings, err := cli.store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.URL != "postgres://app@db.example.com:5432/darasa" || settings.Key != "s3cret" {
		t.Errorf("Load() = %+v", settings)
	}

	// the OnSave hook applied the settings right away
	if cli.conf.Database.URL != "postgres://app@db.example.com:5432/darasa" || cli.conf.Database.Key != "s3cret" {
		t.Errorf("conf.Database = %+v", cli.conf.Database)
	}
}

func Test_commandLine_addStudent(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "no password", args: []string{"addstudent", "-id", "student123", "-name", "Zhang San"}, extra: "", wantErr: errHelp},
		{name: "created", args: []string{"addstudent", "-id", "student123", "-name", "Zhang San"}, extra: "123456"},
		{name: "duplicate ID", args: []string{"addstudent", "-id", "student123", "-name", "Zhang San Again"}, extra: "123456", wantErr: student.ErrStudentIDExists},
		{name: "with email and score", args: []string{"addstudent", "-id", "student456", "-name", "Li Si", "-email", "lisi@test.cd", "-score", "80"}, extra: "123456"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		mockPassword(tt.extra.(string))

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// the records landed with working credentials
	std, err := cli.stdSvc.Authenticate(ctx, "student123", "123456")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if std.Name != "Zhang San" {
		t.Errorf("name = %q, want the first registration kept", std.Name)
	}

	std, err = cli.stdSvc.GetByStudentID(ctx, "student456")
	if err != nil {
		t.Fatalf("GetByStudentID() error = %v", err)
	}
	if std.Score != 80 || std.Email.String != "lisi@test.cd" {
		t.Errorf("student456 = %+v", std)
	}
}

func Test_commandLine_addStudent_invalid(t *testing.T) {
	cli := setup(t)

	mockPassword("123456")

	tests := []cliTest{
		{name: "short ID", args: []string{"addstudent", "-id", "s1", "-name", "Zhang San"}},
		{name: "ID with spaces", args: []string{"addstudent", "-id", "student 123", "-name", "Zhang San"}},
		{name: "bad email", args: []string{"addstudent", "-id", "student123", "-name", "Zhang San", "-email", "nope"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err == nil {
				t.Error("cli.run() expected a validation error, got nil")
			}
		})
	}
}

func Test_commandLine_addTeacher(t *testing.T) {
	cli := setup(t)

	mockPassword("123456")

	if err := cli.run([]string{"admin", "addteacher", "-id", "teacher123", "-name", "Teacher Li"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}
	if err := cli.run([]string{"admin", "addteacher", "-id", "teacher123", "-name", "Twin"}); errors.Cause(err) != teacher.ErrTeacherIDExists {
		t.Errorf("cli.run() error = %v, wantErr %v", err, teacher.ErrTeacherIDExists)
	}

	if _, err := cli.tchSvc.Authenticate(context.Background(), "teacher123", "123456"); err != nil {
		t.Errorf("Authenticate() error = %v", err)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	testutil.CreateStudent(t, stdRepo, "student123", "Zhang San", "", "123456", 0)
	testutil.CreateTeacher(t, tchRepo, "teacher123", "Teacher Li", "123456")

	tests := []cliTest{
		{name: "no password", args: []string{"resetpassword", "-id", "student123"}, extra: "", wantErr: errHelp},
		{name: "student not found", args: []string{"resetpassword", "-id", "ghost404"}, extra: "n3wpass", wantErr: student.ErrNotFound},
		{name: "teacher not found", args: []string{"resetpassword", "-id", "ghost404", "-teacher"}, extra: "n3wpass", wantErr: teacher.ErrNotFound},
		{name: "reset student", args: []string{"resetpassword", "-id", "student123"}, extra: "n3wpass"},
		{name: "reset teacher", args: []string{"resetpassword", "-id", "teacher123", "-teacher"}, extra: "n3wpass"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		mockPassword(tt.extra.(string))

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := cli.stdSvc.Authenticate(ctx, "student123", "n3wpass"); err != nil {
		t.Errorf("Authenticate() with new student password error = %v", err)
	}
	if _, err := cli.tchSvc.Authenticate(ctx, "teacher123", "n3wpass"); err != nil {
		t.Errorf("Authenticate() with new teacher password error = %v", err)
	}
}
