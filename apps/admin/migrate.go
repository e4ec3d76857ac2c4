package main

import (
	"github.com/pressly/goose/v3"

	appfs "github.com/mikobi/darasa/fs"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	db, err := cli.openDB()
	if err != nil {
		return err
	}

	goose.SetBaseFS(appfs.FS)
	if err = goose.SetDialect("postgres"); err != nil {
		return err
	}

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], db.DB, "migrations", arguments...)
}
