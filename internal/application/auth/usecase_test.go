package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

const testSecret = "test-secret"

func newAuth(bootstrapToken string) *auth.AuthUseCase {
	repo := memory.NewUserRepository(memory.NewStore())
	return auth.NewAuthUseCase(repo,
		auth.JWTConfig{Secret: testSecret, ExpMinutes: 5, Issuer: "test"},
		auth.Options{BootstrapToken: bootstrapToken, HashCost: bcrypt.MinCost},
	)
}

func register(t *testing.T, uc *auth.AuthUseCase, email string) *dto.UserResponse {
	t.Helper()
	u, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: email, Password: "password123"})
	require.NoError(t, err)
	return u
}

func TestRegisterUser(t *testing.T) {
	uc := newAuth("")
	u := register(t, uc, "  Ana@Example.com ")

	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.Equal(t, "ana@example.com", u.Name)

	_, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "ana@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_Validaciones(t *testing.T) {
	uc := newAuth("")
	_, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "no-es-email", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "a@b.co", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	uc := newAuth("")
	u := register(t, uc, "ana@example.com")

	resp, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ANA@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)

	claims, err := pkgjwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, entity.RoleUser, claims.Role)
}

// Un login fallido no registra al usuario.
func TestLogin_FallidoNoCreaCuenta(t *testing.T) {
	uc := newAuth("")

	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "nuevo@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "nuevo@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	register(t, uc, "nuevo@example.com")
	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "nuevo@example.com", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestMe(t *testing.T) {
	uc := newAuth("")
	u := register(t, uc, "ana@example.com")

	me, err := uc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, me.Email)

	_, err = uc.Me(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestBootstrapAdmin_PrimerAdminSinToken(t *testing.T) {
	uc := newAuth("")
	first := register(t, uc, "first@example.com")
	second := register(t, uc, "second@example.com")

	resp, err := uc.BootstrapAdmin(context.Background(), first.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, resp.User.Role)
	claims, err := pkgjwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, claims.Role)

	// ya existe un admin: el segundo necesita el token
	_, err = uc.BootstrapAdmin(context.Background(), second.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBootstrapAdmin_ConToken(t *testing.T) {
	uc := newAuth("arranque")
	first := register(t, uc, "first@example.com")
	second := register(t, uc, "second@example.com")
	_, err := uc.BootstrapAdmin(context.Background(), first.ID, "")
	require.NoError(t, err)

	_, err = uc.BootstrapAdmin(context.Background(), second.ID, "incorrecto")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	resp, err := uc.BootstrapAdmin(context.Background(), second.ID, "arranque")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, resp.User.Role)
}
