package ci

import (
	"cibot/internal/core/domain"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const unknownError = "unknown error"

// Drone provides a wrapper for the Drone CI API.
type Drone struct {
	host   string
	token  string
	client *http.Client
}

func NewDrone(host, token string) *Drone {
	return &Drone{
		host:   strings.TrimSuffix(host, "/"),
		token:  token,
		client: &http.Client{},
	}
}

type buildResponse struct {
	Number      int64  `json:"number"`
	After       string `json:"after"`
	Commit      string `json:"commit"`
	AuthorEmail string `json:"author_email"`
	Ref         string `json:"ref"`
	Branch      string `json:"branch"`
	Event       string `json:"event"`
	Message     string `json:"message"`
}

func (b *buildResponse) toDomain() *domain.Build {
	build := &domain.Build{
		Number:      b.Number,
		Commit:      b.Commit,
		AuthorEmail: b.AuthorEmail,
		Branch:      b.Branch,
		Event:       b.Event,
		Message:     b.Message,
	}

	// drone 1.x reports the commit as "after" and the full ref instead of "branch"
	if build.Commit == "" {
		build.Commit = b.After
	}
	if build.Branch == "" {
		build.Branch = b.Ref
	}

	return build
}

// errorResponse also matches build payloads, which carry their own "error" field when a build errored.
type errorResponse struct {
	Number  int64  `json:"number"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (d *Drone) LatestBuild(ctx context.Context, repo string) (*domain.Build, error) {
	body, err := d.do(ctx, http.MethodGet, fmt.Sprintf("/api/repos/%s/builds", repo))
	if err != nil {
		return nil, err
	}

	var builds []buildResponse
	if err := json.Unmarshal(body, &builds); err != nil {
		return nil, fmt.Errorf("drone: %w", &domain.ServiceError{Message: unknownError})
	}

	if len(builds) == 0 {
		return nil, domain.ErrNoBuilds
	}

	return builds[0].toDomain(), nil
}

func (d *Drone) Build(ctx context.Context, repo, id string) (*domain.Build, error) {
	return d.build(ctx, http.MethodGet, repo, id)
}

func (d *Drone) Rebuild(ctx context.Context, repo, id string) (*domain.Build, error) {
	return d.build(ctx, http.MethodPost, repo, id)
}

func (d *Drone) build(ctx context.Context, method, repo, id string) (*domain.Build, error) {
	body, err := d.do(ctx, method, fmt.Sprintf("/api/repos/%s/builds/%s", repo, id))
	if err != nil {
		return nil, err
	}

	var result buildResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("drone: %w", &domain.ServiceError{Message: unknownError})
	}

	return result.toDomain(), nil
}

// do executes an authenticated request and returns the body of a successful response. Error payloads and
// bodies that are not JSON are returned as a *domain.ServiceError.
func (d *Drone) do(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, d.host+path, nil)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("error creating request for drone")
		return nil, err
	}

	req.Header.Add("Authorization", "Bearer "+d.token)
	req.Header.Add("Accept", "application/json")

	res, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing drone request: %w", err)
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading drone response: %w", err)
	}

	log.Debug().Str("method", method).Str("path", path).Int("status", res.StatusCode).Msg("drone response")

	if !json.Valid(body) {
		return nil, fmt.Errorf("drone: %w", &domain.ServiceError{Message: unknownError})
	}

	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" && payload.Number == 0 {
			return nil, fmt.Errorf("drone: %w", &domain.ServiceError{Message: payload.Error})
		}
		if res.StatusCode >= http.StatusBadRequest && payload.Message != "" {
			return nil, fmt.Errorf("drone: %w", &domain.ServiceError{Message: payload.Message})
		}
	}

	if res.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("drone: %w", &domain.ServiceError{Message: unknownError})
	}

	return body, nil
}
