package models

import (
	"time"
)

// Season is owned by exactly one Serie and is never addressed on its own.
type Season struct {
	tableName struct{} `pg:"season"`

	ID           int64      `pg:"season_id,pk" json:"id"`
	SerieID      int64      `pg:"serie_id,notnull" json:"-"`
	Name         string     `pg:"name" json:"name"`
	AirDate      *time.Time `pg:"air_date" json:"air_date"`
	EpisodeCount *int64     `pg:"episode_count" json:"episode_count"`
	SeasonNumber *int64     `pg:"season_number" json:"season_number"`
	Poster       string     `pg:"poster" json:"poster"`
}
