package main

import (
	"github.com/urfave/cli"
)

func configure(app *cli.App) {
	serveCMD := makeServeCMD()
	syncCMD := makeSyncCMD()
	migrationCMD := makePGMigrationCMD()
	app.Commands = []cli.Command{serveCMD, syncCMD, migrationCMD}
}
