package command

import (
	"cibot/internal/core/domain"
	"context"

	"github.com/stretchr/testify/mock"
)

type mockTextSender struct {
	replyCalls []string
	replyErr   error
}

func (m *mockTextSender) Reply(_ context.Context, _ *domain.Message, text string) error {
	m.replyCalls = append(m.replyCalls, text)
	return m.replyErr
}

type MockRepositoryService struct {
	mock.Mock
}

func (m *MockRepositoryService) Project(ctx context.Context, path string) (*domain.Repository, error) {
	args := m.Called(ctx, path)
	repo, _ := args.Get(0).(*domain.Repository)
	return repo, args.Error(1)
}

func (m *MockRepositoryService) CommitInfo(ctx context.Context, repo *domain.Repository, ref string) (*domain.Commit, error) {
	args := m.Called(ctx, repo, ref)
	commit, _ := args.Get(0).(*domain.Commit)
	return commit, args.Error(1)
}

func (m *MockRepositoryService) UpdateTag(ctx context.Context, repo *domain.Repository, name, ref string) error {
	args := m.Called(ctx, repo, name, ref)
	return args.Error(0)
}

type MockBuildService struct {
	mock.Mock
}

func (m *MockBuildService) LatestBuild(ctx context.Context, repo string) (*domain.Build, error) {
	args := m.Called(ctx, repo)
	build, _ := args.Get(0).(*domain.Build)
	return build, args.Error(1)
}

func (m *MockBuildService) Build(ctx context.Context, repo, id string) (*domain.Build, error) {
	args := m.Called(ctx, repo, id)
	build, _ := args.Get(0).(*domain.Build)
	return build, args.Error(1)
}

func (m *MockBuildService) Rebuild(ctx context.Context, repo, id string) (*domain.Build, error) {
	args := m.Called(ctx, repo, id)
	build, _ := args.Get(0).(*domain.Build)
	return build, args.Error(1)
}

func newMessage(payload ...string) *domain.Message {
	return &domain.Message{
		RequestID: "req-1",
		Channel:   "C1",
		User:      "U2",
		Payload:   payload,
		Session: &domain.Session{
			Identity: domain.Identity{UserID: "U1", Nickname: "cibot", CallSigns: []string{"cibot", "<@U1>"}},
		},
	}
}
