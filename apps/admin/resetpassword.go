package main

import (
	"context"
)

func (cli *commandLine) resetPassword(id, pwd string, isTeacher bool) error {
	stdSvc, tchSvc, _, err := cli.services()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if isTeacher {
		return tchSvc.SetPassword(ctx, id, pwd)
	}
	return stdSvc.SetPassword(ctx, id, pwd)
}
