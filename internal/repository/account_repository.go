package repository

import (
	"context"

	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/storage"
)

// LegacyAccount is the singleton signup record of the browser-era
// application, password included in plaintext.
type LegacyAccount struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// StoreAccountRepository keeps the registry as one JSON list
type StoreAccountRepository struct {
	store storage.Store
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(store storage.Store) AccountRepository {
	return &StoreAccountRepository{store: store}
}

func (r *StoreAccountRepository) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if _, err := getJSON(ctx, r.store, constants.StorageKeyAccounts, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *StoreAccountRepository) SaveAll(ctx context.Context, accounts []models.Account) error {
	if accounts == nil {
		accounts = []models.Account{}
	}
	return putJSON(ctx, r.store, constants.StorageKeyAccounts, accounts)
}

func (r *StoreAccountRepository) FindLegacy(ctx context.Context) (*LegacyAccount, error) {
	var legacy LegacyAccount
	ok, err := getJSON(ctx, r.store, constants.StorageKeyLegacyAccount, &legacy)
	if err != nil || !ok {
		return nil, err
	}
	return &legacy, nil
}

func (r *StoreAccountRepository) DeleteLegacy(ctx context.Context) error {
	return r.store.Delete(ctx, constants.StorageKeyLegacyAccount)
}
