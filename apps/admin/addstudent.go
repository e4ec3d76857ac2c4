package main

import (
	"context"
	"fmt"

	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/storage/database"
)

func (cli *commandLine) addStudent(id, name, email, pwd string, score int) error {
	stdSvc, _, _, err := cli.services()
	if err != nil {
		return err
	}

	ns := student.NewStudent{
		StudentID: id,
		Name:      name,
		Email:     email,
		Password:  pwd,
		Score:     score,
	}
	if err := ns.Validate(cli.validate); err != nil {
		return err
	}

	if _, err := stdSvc.Create(context.Background(), ns); err != nil {
		if database.IsDuplicateKeyErr(err) {
			return student.ErrStudentIDExists
		}
		return err
	}
	fmt.Printf("student %q created\n", ns.StudentID)
	return nil
}
