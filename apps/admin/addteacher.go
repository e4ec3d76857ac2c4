package main

import (
	"context"
	"fmt"

	"github.com/mikobi/darasa/core/teacher"
	"github.com/mikobi/darasa/storage/database"
)

func (cli *commandLine) addTeacher(id, name, pwd string) error {
	_, tchSvc, _, err := cli.services()
	if err != nil {
		return err
	}

	nt := teacher.NewTeacher{
		TeacherID: id,
		Name:      name,
		Password:  pwd,
	}
	if err := nt.Validate(cli.validate); err != nil {
		return err
	}

	if _, err := tchSvc.Create(context.Background(), nt); err != nil {
		if database.IsDuplicateKeyErr(err) {
			return teacher.ErrTeacherIDExists
		}
		return err
	}
	fmt.Printf("teacher %q created\n", nt.TeacherID)
	return nil
}
