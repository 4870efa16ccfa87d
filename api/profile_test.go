package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"

	"github.com/mymed-inc/mymed-api/schema"
	"github.com/mymed-inc/mymed-api/store"
)

var testAccount = &schema.Account{UserID: "uid-1", Email: "anna@example.com"}

func TestGetProfile(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	ts := newTestServer(t, ctl)
	auth := ts.authorized(t, "uid-1")

	age := 30
	ts.accounts.EXPECT().GetAccount("uid-1").Return(testAccount, nil).Times(2)
	ts.mongo.EXPECT().GetProfile(gomock.Any(), "uid-1").
		Return(&schema.Profile{UserID: "uid-1", Name: "Anna", Age: &age}, nil).Times(1)

	w := ts.do("GET", "/api/profile", "", map[string]string{"Authorization": auth})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Anna"`)
	assert.Contains(t, w.Body.String(), `"age":30`)

	ts.mongo.EXPECT().GetProfile(gomock.Any(), "uid-1").Return(nil, store.ErrProfileNotFound).Times(1)

	w = ts.do("GET", "/api/profile", "", map[string]string{"Authorization": auth})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errorProfileNotFound, decodeError(t, w))
}

func TestGetProfileUnknownAccount(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	ts := newTestServer(t, ctl)
	auth := ts.authorized(t, "uid-2")

	ts.accounts.EXPECT().GetAccount("uid-2").Return(nil, gorm.ErrRecordNotFound).Times(1)

	w := ts.do("GET", "/api/profile", "", map[string]string{"Authorization": auth})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errorAccountNotFound, decodeError(t, w))
}

func TestUpdateProfile(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	ts := newTestServer(t, ctl)
	auth := ts.authorized(t, "uid-1")

	ts.accounts.EXPECT().GetAccount("uid-1").Return(testAccount, nil).Times(2)

	w := ts.do("PATCH", "/api/profile", `{"age":151}`, map[string]string{"Authorization": auth})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errorValidation.Code, decodeError(t, w).Code)

	ts.mongo.EXPECT().
		MergeProfile(gomock.Any(), "uid-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, update schema.ProfileUpdate) (*schema.Profile, error) {
			assert.Equal(t, "anna@example.com", *update.Email)
			assert.Equal(t, "Anna", *update.Name)
			assert.Equal(t, schema.GenderFemale, *update.Gender)
			return &schema.Profile{UserID: "uid-1", Email: *update.Email, Name: *update.Name, Gender: *update.Gender}, nil
		}).Times(1)

	w = ts.do("PATCH", "/api/profile", `{"name":" Anna ","gender":"female"}`, map[string]string{"Authorization": auth})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"gender":"female"`)
}
