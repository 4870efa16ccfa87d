package store

import (
	"github.com/jinzhu/gorm"

	"github.com/mymed-inc/mymed-api/schema"
)

// AccountCore - relational mirror of the identity provider accounts
type AccountCore interface {
	Ping() error

	UpsertAccount(userID, email string) (*schema.Account, error)
	GetAccount(userID string) (*schema.Account, error)
	UpdateAccountGeoPosition(userID string, latitude, longitude float64) error
}

// AccountStore is an implementation of AccountCore
type AccountStore struct {
	ormDB *gorm.DB
}

func NewAccountStore(ormDB *gorm.DB) *AccountStore {
	return &AccountStore{
		ormDB: ormDB,
	}
}

// Ping is to check the storage health status
func (s *AccountStore) Ping() error {
	return s.ormDB.DB().Ping()
}
