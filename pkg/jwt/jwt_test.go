package jwt_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Reparaciones-api/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse_ConRoles(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "u-1", []string{"recepcion", "tecnico"}, "reparaciones-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, roles, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, []string{"recepcion", "tecnico"}, roles)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "u-1", []string{"gerencia"}, "reparaciones-test", -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "u-1", nil, "reparaciones-test", 60)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u-1", nil, "x", 60)
	assert.Error(t, err)
}

func sign(t *testing.T, method jwt.SigningMethod, claims pkgjwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func TestParse_AlgoritmoNoPermitido(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS512, pkgjwt.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u-1",
	})
	_, _, err := pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err)
}

func TestParse_SubjectComoUsuario(t *testing.T) {
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	tok := sign(t, jwt.SigningMethodHS256, pkgjwt.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-9", ExpiresAt: exp},
		Roles:            []string{"staff"},
	})
	userID, roles, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-9", userID)
	assert.Equal(t, []string{"staff"}, roles)

	anon := sign(t, jwt.SigningMethodHS256, pkgjwt.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}})
	_, _, err = pkgjwt.Parse(testSecret, anon)
	assert.Error(t, err)
}
