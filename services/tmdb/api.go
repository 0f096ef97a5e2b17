package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	tmdbApiKeyFlag   = "tmdb-api-key"
	tmdbApiURLFlag   = "tmdb-api-url"
	tmdbImageURLFlag = "tmdb-image-url"

	maxRetries = 2
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   tmdbApiKeyFlag,
			Usage:  "tmdb api key",
			Value:  "",
			EnvVar: "TMDB_API_KEY",
		},
		cli.StringFlag{
			Name:   tmdbApiURLFlag,
			Usage:  "tmdb api base url",
			Value:  "https://api.themoviedb.org/3",
			EnvVar: "TMDB_API_URL",
		},
		cli.StringFlag{
			Name:   tmdbImageURLFlag,
			Usage:  "tmdb image base url",
			Value:  "https://image.tmdb.org/t/p/w500",
			EnvVar: "TMDB_IMAGE_URL",
		},
	)
}

// Kind selects between the movie and tv surfaces of the API.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

var errNotFound = errors.New("tmdb resource not found")

type Api struct {
	url            string
	imageURL       string
	cl             *http.Client
	prepareRequest func(r *http.Request) (*http.Request, error)
}

func New(c *cli.Context, cl *http.Client) *Api {
	key := c.String(tmdbApiKeyFlag)
	if key == "" {
		return nil
	}
	u := c.String(tmdbApiURLFlag)
	prepareRequest := func(r *http.Request) (*http.Request, error) {
		q := r.URL.Query()
		q.Set("api_key", key)
		r.URL.RawQuery = q.Encode()
		return r, nil
	}
	log.Infof("tmdb api endpoint %v", u)
	return &Api{
		url:            u,
		imageURL:       c.String(tmdbImageURLFlag),
		cl:             cl,
		prepareRequest: prepareRequest,
	}
}

// ImageURL is the base prefix for poster and backdrop paths.
func (api *Api) ImageURL() string {
	return api.imageURL
}

// MovieCategoryPath maps a logical category name onto its API endpoint.
// Unknown names are a configuration error, not transient unavailability.
func MovieCategoryPath(name string) (string, error) {
	switch name {
	case "popular":
		return "/movie/popular", nil
	case "top_rated":
		return "/movie/top_rated", nil
	case "upcoming":
		return "/movie/upcoming", nil
	case "now_playing":
		return "/movie/now_playing", nil
	case "trending":
		return "/trending/movie/day", nil
	}
	return "", errors.Errorf("unknown movie category: %v", name)
}

func SeriesTypePath(name string) (string, error) {
	switch name {
	case "popular", "top_rated", "airing_today", "on_the_air":
		return "/tv/" + name, nil
	}
	return "", errors.Errorf("unknown series type: %v", name)
}

func (api *Api) MovieGenres(ctx context.Context) ([]Genre, error) {
	var res genreListResponse
	if err := api.getJSON(ctx, "/genre/movie/list", nil, &res); err != nil {
		return nil, err
	}
	return res.Genres, nil
}

func (api *Api) TVGenres(ctx context.Context) ([]Genre, error) {
	var res genreListResponse
	if err := api.getJSON(ctx, "/genre/tv/list", nil, &res); err != nil {
		return nil, err
	}
	return res.Genres, nil
}

// MoviePage fetches one page of summaries for the given logical category.
func (api *Api) MoviePage(ctx context.Context, category string, page int) ([]MovieSummary, error) {
	path, err := MovieCategoryPath(category)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	var res moviePageResponse
	if err := api.getJSON(ctx, path, q, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

// MovieDetails returns nil without error when the id is unknown upstream.
func (api *Api) MovieDetails(ctx context.Context, id int64) (*MovieDetails, error) {
	q := url.Values{}
	q.Set("append_to_response", "credits")
	var res MovieDetails
	err := api.getJSON(ctx, fmt.Sprintf("/movie/%v", id), q, &res)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (api *Api) TVPage(ctx context.Context, seriesType string, page int) ([]SeriesSummary, error) {
	path, err := SeriesTypePath(seriesType)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	var res seriesPageResponse
	if err := api.getJSON(ctx, path, q, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

func (api *Api) TVDetails(ctx context.Context, id int64) (*SeriesDetails, error) {
	var res SeriesDetails
	err := api.getJSON(ctx, fmt.Sprintf("/tv/%v", id), nil, &res)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Trailer returns the key of the first related video of type "Trailer", or
// an empty string when none exists.
func (api *Api) Trailer(ctx context.Context, kind Kind, id int64) (string, error) {
	var res videoListResponse
	err := api.getJSON(ctx, fmt.Sprintf("/%v/%v/videos", kind, id), nil, &res)
	if errors.Is(err, errNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return PickTrailer(res.Results), nil
}

func PickTrailer(videos []Video) string {
	for _, v := range videos {
		if v.Type == "Trailer" {
			return v.Key
		}
	}
	return ""
}

// getJSON performs one GET with bounded exponential backoff. A 404 is
// permanent and surfaces as errNotFound so callers can report absence
// instead of failure.
func (api *Api) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	op := func() error {
		err := api.doJSON(ctx, path, query, out)
		if errors.Is(err, errNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(op, b)
}

func (api *Api) doJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", api.url+path, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	q := req.URL.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	req.URL.RawQuery = q.Encode()

	req, err = api.prepareRequest(req)
	if err != nil {
		return errors.Wrap(err, "prepare request")
	}

	resp, err := api.cl.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("tmdb returned status %v for %v", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
