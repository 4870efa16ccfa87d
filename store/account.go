package store

import (
	"time"

	"github.com/jinzhu/gorm"

	"github.com/mymed-inc/mymed-api/schema"
)

// UpsertAccount records a signed in user, creating it on first sight
func (s *AccountStore) UpsertAccount(userID, email string) (*schema.Account, error) {
	now := time.Now()

	var a schema.Account
	err := s.ormDB.Where("user_id = ?", userID).First(&a).Error
	switch {
	case err == nil:
		a.Email = email
		a.State.LastActiveTime = now
		if err := s.ormDB.Save(&a).Error; err != nil {
			return nil, err
		}
		return &a, nil
	case gorm.IsRecordNotFoundError(err):
		a = schema.Account{
			UserID: userID,
			Email:  email,
			State: schema.ActivityState{
				LastActiveTime: now,
			},
		}
		if err := s.ormDB.Create(&a).Error; err != nil {
			return nil, err
		}
		return &a, nil
	}

	return nil, err
}

// GetAccount returns an account instance of a given user id
func (s *AccountStore) GetAccount(userID string) (*schema.Account, error) {
	var a schema.Account
	if err := s.ormDB.Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAccountGeoPosition records the last reported location of a user
func (s *AccountStore) UpdateAccountGeoPosition(userID string, latitude, longitude float64) error {
	state := schema.ActivityState{
		LastActiveTime: time.Now(),
		LastLocation: &schema.Location{
			Latitude:  latitude,
			Longitude: longitude,
		},
	}

	return s.ormDB.Model(&schema.Account{}).Where("user_id = ?", userID).Update("state", state).Error
}
