package entity

import (
	"strings"
	"time"
)

// Customer representa un cliente del taller.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	AltPhone  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasContact indica si hay al menos un dato de contacto identificable (teléfono o email).
func (c *Customer) HasContact() bool {
	return strings.TrimSpace(c.Phone) != "" || strings.TrimSpace(c.Email) != ""
}
