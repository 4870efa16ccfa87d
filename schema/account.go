package schema

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Valid reports whether the location is inside the WGS84 range
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

type ActivityState struct {
	LastActiveTime time.Time `json:"last_active_time"`
	LastLocation   *Location `json:"location"`
}

func (u ActivityState) Value() (driver.Value, error) {
	return json.Marshal(u)
}

func (u *ActivityState) Scan(src interface{}) error {
	source, ok := src.([]byte)
	if !ok {
		return errors.New("Type assertion .([]byte) failed.")
	}
	return json.Unmarshal(source, u)
}

// Account mirrors a user registered at the identity provider
type Account struct {
	UserID    string        `json:"user_id" gorm:"primary_key"`
	Email     string        `json:"email" gorm:"unique_index"`
	State     ActivityState `json:"state" gorm:"type:jsonb;not null;default '{}'"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
