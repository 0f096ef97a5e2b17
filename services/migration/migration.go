package migration

import (
	"github.com/go-pg/migrations/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	cs "github.com/webtor-io/common-services"
)

// PGMigration applies the SQL migrations shipped under migrations/.
type PGMigration struct {
	pg  *cs.PG
	col *migrations.Collection
}

func NewPGMigration(pg *cs.PG) *PGMigration {
	return &PGMigration{
		pg:  pg,
		col: migrations.NewCollection(),
	}
}

func (s *PGMigration) Run(a ...string) error {
	db := s.pg.Get()
	if db == nil {
		log.Infof("db not initialized, skipping migration")
		return nil
	}
	if err := s.col.DiscoverSQLMigrations("migrations"); err != nil {
		return errors.Wrap(err, "failed to discover sql migrations")
	}
	if _, _, err := s.col.Run(db, "init"); err != nil {
		return errors.Wrap(err, "failed to init migrations")
	}
	oldVersion, newVersion, err := s.col.Run(db, a...)
	if err != nil {
		return errors.Wrapf(err, "failed to migrate from %v to %v", oldVersion, newVersion)
	}
	if newVersion != oldVersion {
		log.Infof("db migrated from version %d to %d", oldVersion, newVersion)
	} else {
		log.Infof("db migration version is %d", oldVersion)
	}
	return nil
}
