package main

import (
	"github.com/schoolorganizer/organizer/storage/database"
)

var gooseRunFunc = database.RunMigration // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.conf.Database.Engine != database.EnginePostgres {
		return errNotSQLDB
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}
