package main

import (
	"fmt"
)

// configure persists the backend credentials, then verifies them by opening
// and pinging a fresh handle. Credential format errors are caught by Save;
// an unreachable backend is reported but the credentials stay saved so a
// later `initdb` can retry.
func (cli *commandLine) configure(connURL, key string) error {
	if err := cli.store.Save(connURL, key); err != nil {
		return err
	}
	fmt.Println("backend credentials saved")

	// openDB pings, so this verifies the new credentials end to end
	if _, err := cli.openDB(); err != nil {
		return err
	}
	fmt.Println("backend reachable")
	return nil
}
