package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/notify"
	"github.com/cardona-dev/bean-quick/internal/services"
	"github.com/cardona-dev/bean-quick/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyService_RegistrationAndApproval(t *testing.T) {
	e := newEnv(t)
	notifier := &recordingNotifier{}
	companies := services.NewCompanyService(e.store, nil, notifier)
	ctx := context.Background()

	req := services.CompanyRequest{
		OwnerName:   "Carla",
		Email:       "carla@cafe.example",
		Password:    "secret123",
		CompanyName: "Cafe Carla",
		TaxID:       "900123",
	}
	company, err := companies.RequestRegistration(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.CompanyPending, company.Status)

	owner, err := e.store.Users().GetByEmail(ctx, "carla@cafe.example")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCompany, owner.Role)
	assert.NotEqual(t, "secret123", owner.Password)

	_, err = companies.GetApproved(ctx, company.ID)
	assert.True(t, apperror.IsNotFound(err, "company"))

	pending, err := companies.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	approved, err := companies.Approve(ctx, company.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved())

	var ve *apperror.ValidationError
	_, err = companies.Reject(ctx, company.ID)
	assert.True(t, errors.As(err, &ve))

	visible, err := companies.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)

	mine, err := companies.GetForOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, company.ID, mine.ID)

	require.Equal(t, []notify.EventType{notify.CompanyApproved}, notifier.types())
	assert.Equal(t, "carla@cafe.example", notifier.events[0].Email)
}

func TestCompanyService_RegistrationIsAtomic(t *testing.T) {
	e := newEnv(t)
	companies := services.NewCompanyService(e.store, nil, nil)
	ctx := context.Background()

	existing := e.fx.User("taken", models.RoleCustomer)

	var ve *apperror.ValidationError
	_, err := companies.RequestRegistration(ctx, services.CompanyRequest{
		OwnerName: "Dup", Email: existing.Email, Password: "x", CompanyName: "Dup Co",
	})
	require.True(t, errors.As(err, &ve))

	_, err = companies.RequestRegistration(ctx, services.CompanyRequest{OwnerName: "No name", Email: "n@example.com", Password: "x"})
	require.True(t, errors.As(err, &ve))

	pending, err := companies.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	_, err = e.store.Users().GetByEmail(ctx, "n@example.com")
	assert.True(t, apperror.IsNotFound(err, "user"))
}

var logoPNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}

func TestCompanyService_Profile(t *testing.T) {
	e := newEnv(t)
	dir := t.TempDir()
	files, err := storage.NewLocal(dir, "/uploads")
	require.NoError(t, err)
	companies := services.NewCompanyService(e.store, files, nil)
	ctx := context.Background()

	c1 := e.fx.Company("Cafe")
	require.NoError(t, e.db.Model(&models.Company{}).Where("id = ?", c1.ID).Update("tax_id", "900123").Error)

	updated, err := companies.UpdateProfile(ctx, c1.ID, services.ProfileInput{
		Name:        "  Cafe Central ",
		Address:     "Calle 1",
		Phone:       "555-0101",
		Description: "Espresso bar",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cafe Central", updated.Name)
	assert.Equal(t, "Calle 1", updated.Address)
	assert.Equal(t, "900123", updated.TaxID)
	assert.Equal(t, models.CompanyApproved, updated.Status)

	var ve *apperror.ValidationError
	_, err = companies.UpdateProfile(ctx, c1.ID, services.ProfileInput{Name: " "})
	assert.True(t, errors.As(err, &ve))

	first, err := companies.SetLogo(ctx, c1.ID, logoPNG)
	require.NoError(t, err)
	require.NotEmpty(t, first.LogoPath)
	assert.Equal(t, "Cafe Central", first.Name)
	assert.Equal(t, "/uploads/"+first.LogoPath, companies.LogoURL(first.LogoPath))

	second, err := companies.SetLogo(ctx, c1.ID, logoPNG)
	require.NoError(t, err)
	assert.NotEqual(t, first.LogoPath, second.LogoPath)
	_, err = os.Stat(filepath.Join(dir, first.LogoPath))
	assert.True(t, os.IsNotExist(err), "replaced logo is removed")
	_, err = os.Stat(filepath.Join(dir, second.LogoPath))
	assert.NoError(t, err)

	// a profile edit keeps the logo
	_, err = companies.UpdateProfile(ctx, c1.ID, services.ProfileInput{Name: "Cafe Central"})
	require.NoError(t, err)
	got, err := companies.GetProfile(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, second.LogoPath, got.LogoPath)
	assert.Empty(t, got.Address)

	_, err = companies.SetLogo(ctx, c1.ID, []byte("not an image"))
	assert.Error(t, err)
	got, err = companies.GetProfile(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, second.LogoPath, got.LogoPath)

	_, err = companies.GetProfile(ctx, "missing")
	assert.True(t, apperror.IsNotFound(err, "company"))
}
