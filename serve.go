package main

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/garmanaz/vidaria/handlers/movie"
	"github.com/garmanaz/vidaria/handlers/serie"
	"github.com/garmanaz/vidaria/services/catalog"
	"github.com/garmanaz/vidaria/services/tmdb"
	w "github.com/garmanaz/vidaria/services/web"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web server",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = cs.RegisterPprofFlags(c.Flags)
	c.Flags = cs.RegisterRedisClientFlags(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = tmdb.RegisterFlags(c.Flags)
	c.Flags = catalog.RegisterFlags(c.Flags)
}

func serve(c *cli.Context) error {
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

	var servers []cs.Servable
	// Setting Probe
	probe := cs.NewProbe(c)
	if probe != nil {
		servers = append(servers, probe)
		defer probe.Close()
	}

	// Setting Pprof
	pprof := cs.NewPprof(c)
	if pprof != nil {
		servers = append(servers, pprof)
		defer pprof.Close()
	}

	// Setting Redis
	redis := cs.NewRedisClient(c)
	defer redis.Close()

	// Setting Gin
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"content-type"},
	}))

	// Setting Store
	store := catalog.NewStore(pg)

	// Setting Cache
	cache := catalog.NewCache(redis, store)

	// Setting TMDB Api
	api := tmdb.New(c, cl)

	// Setting Syncer
	var syncer *catalog.Syncer
	if api != nil {
		syncer = catalog.NewSyncer(api, store)
	} else {
		log.Warn("tmdb api key not set, catalog sync disabled")
	}

	// Setting MovieHandler
	movie.RegisterHandler(r, pg, cache, syncer)

	// Setting SerieHandler
	serie.RegisterHandler(r, pg, cache, syncer)

	if syncer != nil {
		if err := syncer.SyncTaxonomy(context.Background()); err != nil {
			log.WithError(err).Warn("taxonomy sync incomplete")
		}
		if c.Bool(catalog.SyncOnStartFlag) {
			go func() {
				err := syncer.SyncAll(context.Background(), c.Int(catalog.SyncStartPageFlag), c.Int(catalog.SyncTargetFlag))
				if err != nil {
					log.WithError(err).Error("startup catalog sync failed")
				}
			}()
		}
	}

	// Setting Web
	web := w.New(c, r)
	servers = append(servers, web)
	defer web.Close()

	// Setting Serve
	serve := cs.NewServe(servers...)

	// And SERVE!
	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}
