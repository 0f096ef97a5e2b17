package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/garmanaz/vidaria/services/catalog"
	"github.com/garmanaz/vidaria/services/tmdb"

	"github.com/pkg/errors"
)

func makeSyncCMD() cli.Command {
	syncCMD := cli.Command{
		Name:    "sync",
		Aliases: []string{"sc"},
		Usage:   "Performs a one-off catalog sync and exits",
		Action:  sync,
	}
	configureSync(&syncCMD)
	return syncCMD
}

func configureSync(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = tmdb.RegisterFlags(c.Flags)
	c.Flags = catalog.RegisterFlags(c.Flags)
}

func sync(c *cli.Context) error {
	// Setting HTTP Client
	cl := http.DefaultClient

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Migrations
	err := pgMigrate(c)
	if err != nil {
		return err
	}

	// Setting TMDB Api
	api := tmdb.New(c, cl)
	if api == nil {
		return errors.New("tmdb api key is required for sync")
	}

	// Setting Syncer
	syncer := catalog.NewSyncer(api, catalog.NewStore(pg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = syncer.SyncAll(ctx, c.Int(catalog.SyncStartPageFlag), c.Int(catalog.SyncTargetFlag))
	if err != nil {
		log.WithError(err).Error("catalog sync failed")
	}
	return err
}
