package util

import (
	"faang_prep_backend/internal/model"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	email := "a@b.c"
	user := &model.User{Email: &email}
	user.ID = "user-1"

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParseJWTExpired(t *testing.T) {
	user := &model.User{}
	user.ID = "user-1"
	token, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestQueryPositiveInt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]int{
		"/x":          5,
		"/x?limit=3":  3,
		"/x?limit=0":  5,
		"/x?limit=-2": 5,
		"/x?limit=ab": 5,
	}
	for url, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", url, nil)
		assert.Equal(t, want, QueryPositiveInt(c, "limit", 5), url)
	}
}
