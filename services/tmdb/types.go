package tmdb

// Wire types for the TMDB v3 API. Only the fields the sync pipeline reads
// are declared.

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

type MovieSummary struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	ReleaseDate  string   `json:"release_date"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	Popularity   *float64 `json:"popularity"`
	GenreIDs     []int64  `json:"genre_ids"`
}

type moviePageResponse struct {
	Page    int            `json:"page"`
	Results []MovieSummary `json:"results"`
}

type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type MovieDetails struct {
	ID          int64    `json:"id"`
	Runtime     *int64   `json:"runtime"`
	VoteAverage *float64 `json:"vote_average"`
	Credits     struct {
		Crew []CrewMember `json:"crew"`
	} `json:"credits"`
}

// Director returns the first credited director, if any.
func (d *MovieDetails) Director() string {
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			return c.Name
		}
	}
	return ""
}

type SeriesSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Overview string `json:"overview"`
}

type seriesPageResponse struct {
	Page    int             `json:"page"`
	Results []SeriesSummary `json:"results"`
}

type SeasonInfo struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	AirDate      string `json:"air_date"`
	EpisodeCount *int64 `json:"episode_count"`
	SeasonNumber *int64 `json:"season_number"`
	PosterPath   string `json:"poster_path"`
}

type SeriesDetails struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name"`
	Overview         string       `json:"overview"`
	Genres           []Genre      `json:"genres"`
	CreatedBy        []CrewMember `json:"created_by"`
	FirstAirDate     string       `json:"first_air_date"`
	PosterPath       string       `json:"poster_path"`
	BackdropPath     string       `json:"backdrop_path"`
	VoteAverage      *float64     `json:"vote_average"`
	Popularity       *float64     `json:"popularity"`
	NumberOfSeasons  *int64       `json:"number_of_seasons"`
	NumberOfEpisodes *int64       `json:"number_of_episodes"`
	Status           string       `json:"status"`
	Seasons          []SeasonInfo `json:"seasons"`
}

type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type videoListResponse struct {
	Results []Video `json:"results"`
}
