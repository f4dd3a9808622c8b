package port

import (
	"cibot/internal/core/domain"
	"context"
)

type RepositoryService interface {
	// Project resolves a repository by its path, returning domain.ErrUnknownRepo when it does not exist.
	Project(ctx context.Context, path string) (*domain.Repository, error)
	// CommitInfo fetches the commit a reference points to.
	CommitInfo(ctx context.Context, repo *domain.Repository, ref string) (*domain.Commit, error)
	// UpdateTag creates the tag at ref, replacing an existing tag of the same name.
	UpdateTag(ctx context.Context, repo *domain.Repository, name, ref string) error
}

type BuildService interface {
	// LatestBuild returns the most recent build of a repository.
	LatestBuild(ctx context.Context, repo string) (*domain.Build, error)
	// Build returns a build by its number.
	Build(ctx context.Context, repo, id string) (*domain.Build, error)
	// Rebuild requests a new run of the given build and returns the enqueued build.
	Rebuild(ctx context.Context, repo, id string) (*domain.Build, error)
}
