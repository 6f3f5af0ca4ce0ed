package application_test

import (
	"context"
	"strings"
	"sync"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// --- Mock implementations ---

type statusCall struct {
	Repo   model.Repository
	SHA    string
	Status model.CommitStatus
}

type mockPlatform struct {
	mu sync.Mutex

	collaborators     map[string]driven.CollaboratorStatus // login -> status; missing means NotCollaborator
	collaboratorCalls []string

	statuses  []statusCall
	statusErr map[string]error // sha -> error

	createHook  func(hook model.Hook) (model.Hook, error)
	createCalls int
	hooks       []model.Hook
	listErr     error
	listCalls   int
	deleteErr   error
	deleteCalls []int64
	editCalls   []int64

	openPRs   []model.PullRequest
	prCommits map[int][]model.Commit
	prErr     map[int]error
}

func newMockPlatform() *mockPlatform {
	return &mockPlatform{
		collaborators: map[string]driven.CollaboratorStatus{},
		statusErr:     map[string]error{},
		prCommits:     map[int][]model.Commit{},
		prErr:         map[int]error{},
	}
}

func (m *mockPlatform) CheckCollaborator(_ context.Context, _ model.Repository, login string) driven.CollaboratorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collaboratorCalls = append(m.collaboratorCalls, login)
	if s, ok := m.collaborators[login]; ok {
		return s
	}
	return driven.NotCollaborator
}

func (m *mockPlatform) CreateHook(_ context.Context, _ model.Repository, hook model.Hook) (model.Hook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	return m.createHook(hook)
}

func (m *mockPlatform) ListHooks(_ context.Context, _ model.Repository) ([]model.Hook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	return m.hooks, m.listErr
}

func (m *mockPlatform) EditHook(_ context.Context, _ model.Repository, id int64, hook model.Hook) (model.Hook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editCalls = append(m.editCalls, id)
	hook.ID = id
	return hook, nil
}

func (m *mockPlatform) DeleteHook(_ context.Context, _ model.Repository, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, id)
	return m.deleteErr
}

func (m *mockPlatform) CreateStatus(_ context.Context, repo model.Repository, sha string, status model.CommitStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.statusErr[sha]; err != nil {
		return err
	}
	m.statuses = append(m.statuses, statusCall{Repo: repo, SHA: sha, Status: status})
	return nil
}

func (m *mockPlatform) ListOpenPullRequests(_ context.Context, _ model.Repository) ([]model.PullRequest, error) {
	return m.openPRs, nil
}

func (m *mockPlatform) ListPullRequestCommits(_ context.Context, _ model.Repository, number int) ([]model.Commit, error) {
	if err := m.prErr[number]; err != nil {
		return nil, err
	}
	return m.prCommits[number], nil
}

func (m *mockPlatform) ListAdminRepositories(_ context.Context) ([]model.Repository, error) {
	return nil, nil
}

// statusBySHA returns the recorded statuses keyed by sha.
func (m *mockPlatform) statusBySHA() map[string]model.CommitStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.CommitStatus, len(m.statuses))
	for _, s := range m.statuses {
		out[s.SHA] = s.Status
	}
	return out
}

type mockComplianceStore struct {
	agreement      *model.Agreement
	agreementErr   error
	agreementCalls int
	users          []model.User
	userErr        map[string]error // lookup key -> error
	signed         map[int64]bool   // user id -> signed the agreement
	findUserCalls  []string
}

func (m *mockComplianceStore) FindAgreement(_ context.Context, owner, repo string) (*model.Agreement, error) {
	m.agreementCalls++
	if m.agreementErr != nil {
		return nil, m.agreementErr
	}
	if m.agreement == nil || m.agreement.Owner != owner || m.agreement.Repo != repo {
		return nil, nil
	}
	return m.agreement, nil
}

func (m *mockComplianceStore) FindUser(_ context.Context, loginOrEmail string) (*model.User, error) {
	m.findUserCalls = append(m.findUserCalls, loginOrEmail)
	if err := m.userErr[loginOrEmail]; err != nil {
		return nil, err
	}
	for i := range m.users {
		if m.users[i].Login == loginOrEmail {
			return &m.users[i], nil
		}
	}
	key := strings.ToLower(strings.TrimSpace(loginOrEmail))
	for i := range m.users {
		if m.users[i].Email != "" && strings.ToLower(m.users[i].Email) == key {
			return &m.users[i], nil
		}
	}
	return nil, nil
}

func (m *mockComplianceStore) HasSignature(_ context.Context, userID, agreementID int64) (bool, error) {
	if m.agreement == nil || agreementID != m.agreement.ID {
		return false, nil
	}
	return m.signed[userID], nil
}

type mockClientSource struct {
	client driven.PlatformClient
	err    error
	calls  []int64
}

func (m *mockClientSource) ForUser(_ context.Context, userID int64) (driven.PlatformClient, error) {
	m.calls = append(m.calls, userID)
	if m.err != nil {
		return nil, m.err
	}
	return m.client, nil
}

type mockAgreementStore struct {
	byRepo    map[string]*model.Agreement
	createErr error
	nextID    int64
	hookIDs   map[int64]int64
	updates   []string
}

func newMockAgreementStore() *mockAgreementStore {
	return &mockAgreementStore{byRepo: map[string]*model.Agreement{}, hookIDs: map[int64]int64{}}
}

func (m *mockAgreementStore) Create(_ context.Context, a model.Agreement) (*model.Agreement, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	key := a.Owner + "/" + a.Repo
	if _, ok := m.byRepo[key]; ok {
		return nil, driven.ErrAgreementExists
	}
	m.nextID++
	a.ID = m.nextID
	m.byRepo[key] = &a
	return &a, nil
}

func (m *mockAgreementStore) FindByRepository(_ context.Context, owner, repo string) (*model.Agreement, error) {
	return m.byRepo[owner+"/"+repo], nil
}

func (m *mockAgreementStore) Update(_ context.Context, owner, repo, _ string, _ []string) error {
	if _, ok := m.byRepo[owner+"/"+repo]; !ok {
		return driven.ErrAgreementNotFound
	}
	m.updates = append(m.updates, owner+"/"+repo)
	return nil
}

func (m *mockAgreementStore) SetHookID(_ context.Context, agreementID, hookID int64) error {
	for _, a := range m.byRepo {
		if a.ID == agreementID {
			a.HookID = hookID
			m.hookIDs[agreementID] = hookID
			return nil
		}
	}
	return driven.ErrAgreementNotFound
}

func (m *mockAgreementStore) ListAll(_ context.Context) ([]model.Agreement, error) {
	out := make([]model.Agreement, 0, len(m.byRepo))
	for _, a := range m.byRepo {
		out = append(out, *a)
	}
	return out, nil
}

type mockSignatureStore struct {
	signed map[[2]int64]bool
}

func newMockSignatureStore() *mockSignatureStore {
	return &mockSignatureStore{signed: map[[2]int64]bool{}}
}

func (m *mockSignatureStore) Create(_ context.Context, userID, agreementID int64) (*model.Signature, error) {
	key := [2]int64{userID, agreementID}
	if m.signed[key] {
		return nil, driven.ErrSignatureExists
	}
	m.signed[key] = true
	return &model.Signature{ID: int64(len(m.signed)), UserID: userID, AgreementID: agreementID}, nil
}

func (m *mockSignatureStore) Exists(_ context.Context, userID, agreementID int64) (bool, error) {
	return m.signed[[2]int64{userID, agreementID}], nil
}

func (m *mockSignatureStore) ListByAgreement(_ context.Context, _ int64) ([]model.Signature, error) {
	return nil, nil
}

// --- Fixtures ---

var widgets = model.Repository{Owner: "acme", Name: "widgets"}

func widgetsAgreement() *model.Agreement {
	return &model.Agreement{ID: 10, UserID: 1, Owner: "acme", Repo: "widgets", Text: "CLA"}
}

func ident(login, email string) *model.Identity {
	return &model.Identity{Login: login, Name: login, Email: email}
}
