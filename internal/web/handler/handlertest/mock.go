// Package handlertest provides a mocked hub API and a ready-to-serve gin
// engine for page handler tests.
package handlertest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/web/handler"
)

// MockAPI is a testify mock of handler.HubAPI.
type MockAPI struct {
	mock.Mock
}

var _ handler.HubAPI = (*MockAPI)(nil)

func ptr[T any](args mock.Arguments, i int) *T {
	if v := args.Get(i); v != nil {
		return v.(*T)
	}
	return nil
}

func slice[T any](args mock.Arguments, i int) []T {
	if v := args.Get(i); v != nil {
		return v.([]T)
	}
	return nil
}

func (m *MockAPI) GetCSRFToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) GetStats(ctx context.Context) (*hubapi.Stats, error) {
	args := m.Called(ctx)
	return ptr[hubapi.Stats](args, 0), args.Error(1)
}

func (m *MockAPI) GetPackagesUpdates(ctx context.Context) (*hubapi.PackagesUpdates, error) {
	args := m.Called(ctx)
	return ptr[hubapi.PackagesUpdates](args, 0), args.Error(1)
}

func (m *MockAPI) SearchPackages(ctx context.Context, q hubapi.SearchQuery) (*hubapi.SearchResults, error) {
	args := m.Called(ctx, q)
	return ptr[hubapi.SearchResults](args, 0), args.Error(1)
}

func (m *MockAPI) GetPackage(ctx context.Context, ref hubapi.PackageRef) (*hubapi.PackageDetail, error) {
	args := m.Called(ctx, ref)
	return ptr[hubapi.PackageDetail](args, 0), args.Error(1)
}

func (m *MockAPI) GetStars(ctx context.Context, packageID string) (*hubapi.PackageStars, error) {
	args := m.Called(ctx, packageID)
	return ptr[hubapi.PackageStars](args, 0), args.Error(1)
}

func (m *MockAPI) ToggleStar(ctx context.Context, packageID string) error {
	return m.Called(ctx, packageID).Error(0)
}

func (m *MockAPI) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAPI) Register(ctx context.Context, u hubapi.UserRegistration) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockAPI) VerifyEmail(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockAPI) GetUserProfile(ctx context.Context) (*hubapi.Profile, error) {
	args := m.Called(ctx)
	return ptr[hubapi.Profile](args, 0), args.Error(1)
}

func (m *MockAPI) UpdateUserProfile(ctx context.Context, p hubapi.ProfileUpdate) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockAPI) UpdatePassword(ctx context.Context, oldPassword, newPassword string) error {
	return m.Called(ctx, oldPassword, newPassword).Error(0)
}

func (m *MockAPI) SearchRepositories(ctx context.Context, q hubapi.RepositoriesQuery) (*hubapi.RepositoriesPage, error) {
	args := m.Called(ctx, q)
	return ptr[hubapi.RepositoriesPage](args, 0), args.Error(1)
}

func (m *MockAPI) AddRepository(ctx context.Context, r hubapi.Repository, org string) error {
	return m.Called(ctx, r, org).Error(0)
}

func (m *MockAPI) DeleteRepository(ctx context.Context, name, org string) error {
	return m.Called(ctx, name, org).Error(0)
}

func (m *MockAPI) TransferRepository(ctx context.Context, name, fromOrg, toOrg string) error {
	return m.Called(ctx, name, fromOrg, toOrg).Error(0)
}

func (m *MockAPI) ClaimRepositoryOwnership(ctx context.Context, name, org string) error {
	return m.Called(ctx, name, org).Error(0)
}

func (m *MockAPI) GetUserOrganizations(ctx context.Context) ([]hubapi.Organization, error) {
	args := m.Called(ctx)
	return slice[hubapi.Organization](args, 0), args.Error(1)
}

func (m *MockAPI) GetOrganization(ctx context.Context, name string) (*hubapi.Organization, error) {
	args := m.Called(ctx, name)
	return ptr[hubapi.Organization](args, 0), args.Error(1)
}

func (m *MockAPI) AddOrganization(ctx context.Context, org hubapi.Organization) error {
	return m.Called(ctx, org).Error(0)
}

func (m *MockAPI) UpdateOrganization(ctx context.Context, org hubapi.Organization, currentName string) error {
	return m.Called(ctx, org, currentName).Error(0)
}

func (m *MockAPI) DeleteOrganization(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockAPI) ConfirmOrganizationMembership(ctx context.Context, org string) error {
	return m.Called(ctx, org).Error(0)
}

func (m *MockAPI) GetOrganizationMembers(ctx context.Context, org string) ([]hubapi.Member, error) {
	args := m.Called(ctx, org)
	return slice[hubapi.Member](args, 0), args.Error(1)
}

func (m *MockAPI) AddOrganizationMember(ctx context.Context, org, alias string) error {
	return m.Called(ctx, org, alias).Error(0)
}

func (m *MockAPI) DeleteOrganizationMember(ctx context.Context, org, alias string) error {
	return m.Called(ctx, org, alias).Error(0)
}

func (m *MockAPI) GetWebhooks(ctx context.Context, org string) ([]hubapi.Webhook, error) {
	args := m.Called(ctx, org)
	return slice[hubapi.Webhook](args, 0), args.Error(1)
}

func (m *MockAPI) AddWebhook(ctx context.Context, hook hubapi.Webhook, org string) error {
	return m.Called(ctx, hook, org).Error(0)
}

func (m *MockAPI) DeleteWebhook(ctx context.Context, id, org string) error {
	return m.Called(ctx, id, org).Error(0)
}

func (m *MockAPI) TriggerWebhookTest(ctx context.Context, hook hubapi.Webhook) error {
	return m.Called(ctx, hook).Error(0)
}

func (m *MockAPI) GetAPIKeys(ctx context.Context) ([]hubapi.APIKey, error) {
	args := m.Called(ctx)
	return slice[hubapi.APIKey](args, 0), args.Error(1)
}

func (m *MockAPI) AddAPIKey(ctx context.Context, name string) (*hubapi.APIKeyCreated, error) {
	args := m.Called(ctx, name)
	return ptr[hubapi.APIKeyCreated](args, 0), args.Error(1)
}

func (m *MockAPI) DeleteAPIKey(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAPI) CheckAvailability(ctx context.Context, resourceKind, value string) (bool, error) {
	args := m.Called(ctx, resourceKind, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockAPI) GetPackageSubscriptions(ctx context.Context, packageID string) ([]hubapi.Subscription, error) {
	args := m.Called(ctx, packageID)
	return slice[hubapi.Subscription](args, 0), args.Error(1)
}

func (m *MockAPI) GetUserSubscriptions(ctx context.Context) ([]hubapi.Subscription, error) {
	args := m.Called(ctx)
	return slice[hubapi.Subscription](args, 0), args.Error(1)
}

func (m *MockAPI) AddSubscription(ctx context.Context, packageID string, eventKind int) error {
	return m.Called(ctx, packageID, eventKind).Error(0)
}

func (m *MockAPI) DeleteSubscription(ctx context.Context, packageID string, eventKind int) error {
	return m.Called(ctx, packageID, eventKind).Error(0)
}
