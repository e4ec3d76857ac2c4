package main

import (
	"context"
	"fmt"

	"github.com/mikobi/darasa/storage/database"
)

// initDB provisions the database from scratch: role and database creation,
// schema migration, then the sample rows. Safe to re-run; existing sample
// rows are left untouched.
func (cli *commandLine) initDB() error {
	if err := database.CreateIfNotExist(cli.conf); err != nil {
		return err
	}

	db, err := cli.openDB()
	if err != nil {
		return err
	}
	if err = database.Migrate(db); err != nil {
		return err
	}

	stdSvc, tchSvc, upSvc, err := cli.services()
	if err != nil {
		return err
	}
	if err = database.Seed(context.Background(), stdSvc, tchSvc, upSvc); err != nil {
		return err
	}
	fmt.Println("database initialized")
	return nil
}
