package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	Init()
}

type credentials struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required,min=6"`
}

func bindForm(t *testing.T, values url.Values) error {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(values.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	var form credentials
	return c.ShouldBind(&form)
}

func TestMessagesUseFormFieldNames(t *testing.T) {
	err := bindForm(t, url.Values{"password": {"secret1"}})
	require.Error(t, err)

	assert.Equal(t, "username is required", FirstMessage(err))
}

func TestMessagesMinLength(t *testing.T) {
	err := bindForm(t, url.Values{"username": {"alice"}, "password": {"short"}})
	require.Error(t, err)

	assert.Equal(t, "password must be at least 6 characters long", FirstMessage(err))
}

func TestMessagesDeclarationOrder(t *testing.T) {
	err := bindForm(t, url.Values{})
	require.Error(t, err)

	msgs := Messages(err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "username is required", msgs[0])
	assert.Equal(t, "password is required", msgs[1])
}

func TestMessagesValidForm(t *testing.T) {
	err := bindForm(t, url.Values{"username": {"alice"}, "password": {"secret1"}})
	assert.NoError(t, err)
	assert.Nil(t, Messages(err))
}

func TestMessagesNonValidationError(t *testing.T) {
	assert.Equal(t, []string{"invalid input"}, Messages(errors.New("boom")))
	assert.Equal(t, "invalid input", FirstMessage(errors.New("boom")))
}
