package folio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Reparaciones-api/internal/domain/folio"
)

func TestNext_SinOrdenesEmpiezaEnUno(t *testing.T) {
	assert.Equal(t, "SR-0001-2025", folio.Next(folio.DefaultPrefix, nil, 2025))
}

func TestNext_TomaElMaximoEIgnoraMalFormados(t *testing.T) {
	existing := []string{
		"SR-0003-2025",
		"SR-0010-2025",
		"SR-0002-2025",
		"SR-9999-2024", // otro año
		"SR-12-2025",   // menos de 4 dígitos
		"XX-0050-2025",
		"",
		"SR-00AB-2025",
	}
	assert.Equal(t, "SR-0011-2025", folio.Next(folio.DefaultPrefix, existing, 2025))
}

func TestNext_SecuenciaMayorACuatroDigitos(t *testing.T) {
	got := folio.Next(folio.DefaultPrefix, []string{"SR-9999-2025"}, 2025)
	assert.Equal(t, "SR-10000-2025", got)
	assert.True(t, folio.Valid(folio.DefaultPrefix, got, 2025))
}

func TestValid(t *testing.T) {
	assert.True(t, folio.Valid("SR", "SR-0007-2025", 2025))
	assert.False(t, folio.Valid("SR", "SR-0007-2026", 2025))
	assert.False(t, folio.Valid("SR", "SR-007-2025", 2025))
	assert.Equal(t, "-2025", folio.Suffix(2025))
}
