package vcs

import (
	"cibot/internal/core/domain"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// GitLab resolves projects, commits and tags on a GitLab instance.
type GitLab struct {
	client *gitlab.Client
}

// NewGitLab creates a client for the instance at host. An empty host targets gitlab.com.
func NewGitLab(host, token string) (*GitLab, error) {
	var (
		client *gitlab.Client
		err    error
	)

	if host == "" {
		client, err = gitlab.NewClient(token)
	} else {
		client, err = gitlab.NewClient(token, gitlab.WithBaseURL(strings.TrimSuffix(host, "/")+"/api/v4"))
	}
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	return &GitLab{client: client}, nil
}

func (g *GitLab) Project(ctx context.Context, path string) (*domain.Repository, error) {
	project, resp, err := g.client.Projects.GetProject(path, nil, gitlab.WithContext(ctx))
	if isNotFound(resp) {
		return nil, domain.ErrUnknownRepo
	}
	if err != nil {
		return nil, fmt.Errorf("fetching project from gitlab: %w", err)
	}

	return &domain.Repository{ID: project.ID, Path: project.PathWithNamespace}, nil
}

func (g *GitLab) CommitInfo(ctx context.Context, repo *domain.Repository, ref string) (*domain.Commit, error) {
	commit, resp, err := g.client.Commits.GetCommit(repo.ID, ref, nil, gitlab.WithContext(ctx))
	if isNotFound(resp) {
		return nil, domain.ErrUnknownRef
	}
	if err != nil {
		return nil, fmt.Errorf("fetching commit from gitlab: %w", err)
	}

	return &domain.Commit{
		ID:      commit.ID,
		Author:  domain.FormatAuthor(commit.AuthorName, commit.AuthorEmail),
		Message: commit.Message,
	}, nil
}

// UpdateTag deletes an existing tag of the same name, if any, and creates it again at ref.
func (g *GitLab) UpdateTag(ctx context.Context, repo *domain.Repository, name, ref string) error {
	resp, err := g.client.Tags.DeleteTag(repo.ID, name, gitlab.WithContext(ctx))
	switch {
	case isNotFound(resp):
		log.Debug().Str("repo", repo.Path).Str("tag", name).Msg("no existing tag to delete")
	case err != nil:
		return fmt.Errorf("deleting tag on gitlab: %w", err)
	}

	_, _, err = g.client.Tags.CreateTag(repo.ID, &gitlab.CreateTagOptions{
		TagName: gitlab.Ptr(name),
		Ref:     gitlab.Ptr(ref),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("creating tag on gitlab: %w", err)
	}

	return nil
}

func isNotFound(resp *gitlab.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}
