package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/mikobi/darasa/core"
	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/core/teacher"
	"github.com/mikobi/darasa/core/upload"
	emailsvc "github.com/mikobi/darasa/services/email"
	logsvc "github.com/mikobi/darasa/services/logger"
	"github.com/mikobi/darasa/storage/database"
	sqlxrepos "github.com/mikobi/darasa/storage/database/sqlx"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	pingFunc         = database.Ping     // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf     *core.Config
	store    *core.ConfigStore
	validate *validator.Validate

	// lazily initialized on first use
	db     *sqlx.DB
	stdSvc student.Service
	tchSvc teacher.Service
	upSvc  upload.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  configure -url URL -key KEY - save the backend connection credentials")
	fmt.Println("  initdb - create, migrate and seed the database")
	fmt.Println("  migrate COMMAND [ARGS] - run a migration command (up|down|status|version|...)")
	fmt.Println("  addstudent -id ID -name NAME [-email EMAIL] [-score N] - register a student")
	fmt.Println("  addteacher -id ID -name NAME - register a teacher")
	fmt.Println("  resetpassword -id ID [-teacher] - reset a student's (or teacher's) password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	configureCmd := flag.NewFlagSet("configure", flag.ExitOnError)
	configureURL := configureCmd.String("url", "", "The backend connection URL.")
	configureKey := configureCmd.String("key", "", "The backend access key.")

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentID := addStudentCmd.String("id", "", "The student's login ID.")
	addStudentName := addStudentCmd.String("name", "", "The student's display name.")
	addStudentEmail := addStudentCmd.String("email", "", "The student's email address (optional).")
	addStudentScore := addStudentCmd.Int("score", 0, "The student's starting score (optional).")

	addTeacherCmd := flag.NewFlagSet("addteacher", flag.ExitOnError)
	addTeacherID := addTeacherCmd.String("id", "", "The teacher's login ID.")
	addTeacherName := addTeacherCmd.String("name", "", "The teacher's display name.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordID := resetPasswordCmd.String("id", "", "The student's or teacher's login ID. The password will be prompted next.")
	resetPasswordTeacher := resetPasswordCmd.Bool("teacher", false, "Reset a teacher's password instead of a student's.")

	switch args[1] {
	case "configure":
		if err := configureCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *configureURL == "" || *configureKey == "" {
			configureCmd.Usage()
			return errHelp
		}
		return cli.configure(*configureURL, *configureKey)
	case "initdb":
		return cli.initDB()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentID == "" || *addStudentName == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*addStudentID, *addStudentName, *addStudentEmail, string(pwd), *addStudentScore)
	case "addteacher":
		if err := addTeacherCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTeacherID == "" || *addTeacherName == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addTeacherCmd.Usage()
			return errHelp
		}
		return cli.addTeacher(*addTeacherID, *addTeacherName, string(pwd))
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordID == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordID, string(pwd), *resetPasswordTeacher)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() ([]byte, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	return pwd, err
}

func (cli *commandLine) openDB() (*sqlx.DB, error) {
	if cli.db != nil {
		return cli.db, nil
	}
	db, err := database.Open(cli.conf)
	if err != nil {
		return nil, err
	}
	if err = pingFunc(db); err != nil {
		return nil, err
	}
	cli.db = db
	return db, nil
}

// services builds the domain services on first use. Tests pre-populate the
// service fields with in-memory repositories instead.
func (cli *commandLine) services() (student.Service, teacher.Service, upload.Service, error) {
	if cli.stdSvc != nil && cli.tchSvc != nil && cli.upSvc != nil {
		return cli.stdSvc, cli.tchSvc, cli.upSvc, nil
	}

	db, err := cli.openDB()
	if err != nil {
		return nil, nil, nil, err
	}
	stdRepo := sqlxrepos.NewStudentRepository(db)
	tchRepo := sqlxrepos.NewTeacherRepository(db)
	upRepo := sqlxrepos.NewUploadRepository(db)

	applog := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags), cli.conf)
	applog.Enable(false)

	cli.stdSvc = student.NewService(stdRepo)
	cli.tchSvc = teacher.NewService(tchRepo)
	cli.upSvc = upload.NewService(upRepo, stdRepo, emailsvc.NewConsoleService(cli.conf), applog)
	return cli.stdSvc, cli.tchSvc, cli.upSvc, nil
}

// reset drops the cached handle and services, forcing a reconnect with the
// current credentials.
func (cli *commandLine) reset() {
	if cli.db != nil {
		_ = cli.db.Close()
	}
	cli.db = nil
	cli.stdSvc = nil
	cli.tchSvc = nil
	cli.upSvc = nil
}
