package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"forge-service/internal/core/domain"
)

func TestRegister(t *testing.T) {
	env := setupRouter()
	env.users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, domain.ErrUserNotFound)
	env.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 11
	}).Return(nil)

	w := env.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":                  "New",
		"email":                 "new@example.com",
		"password":              "password1",
		"password_confirmation": "password1",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(11), resp["id"])
	assert.Equal(t, "new@example.com", resp["email"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_ValidationErrors(t *testing.T) {
	env := setupRouter()

	w := env.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":                  "New",
		"email":                 "not-an-email",
		"password":              "password1",
		"password_confirmation": "password2",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "The email field must be a valid email address. (and 1 more error)", resp["message"])

	errs := resp["errors"].(map[string]interface{})
	assert.Equal(t, []interface{}{"The password field confirmation does not match."}, errs["password_confirmation"])
	assert.Contains(t, errs, "email")
}

func TestRegister_EmailTaken(t *testing.T) {
	env := setupRouter()
	env.users.On("GetByEmail", mock.Anything, "taken@example.com").Return(&domain.User{ID: 2}, nil)

	w := env.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":                  "Taken",
		"email":                 "taken@example.com",
		"password":              "password1",
		"password_confirmation": "password1",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin(t *testing.T) {
	env := setupRouter()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	env.users.On("GetByEmail", mock.Anything, "a@example.com").Return(&domain.User{ID: 4, Email: "a@example.com", Password: string(hash)}, nil)

	w := env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@example.com", "password": "password1", "token_name": "cli"})
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "Bearer", resp["token_type"])
	assert.NotEmpty(t, resp["token"])

	w = env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@example.com", "password": "nope", "token_name": "cli"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	env := setupRouter()
	auth := env.login(t, &domain.User{ID: 9, Name: "Me", Email: "me@example.com"})

	w := env.do(http.MethodGet, "/api/v1/user", auth, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "me@example.com", decode(t, w)["email"])
}

func TestMe_Guest(t *testing.T) {
	env := setupRouter()

	w := env.do(http.MethodGet, "/api/v1/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidToken(t *testing.T) {
	env := setupRouter()

	w := env.do(http.MethodGet, "/api/v1/mods", "Bearer garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, domain.ErrInvalidToken.Error(), decode(t, w)["message"])
}
