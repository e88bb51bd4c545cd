package entity

import (
	"strings"
	"time"
)

// Device equipo de un cliente. Una orden puede incluir varios equipos.
type Device struct {
	ID             string
	CustomerID     string
	Brand          string
	Model          string
	Serial         string // opcional
	Notes          string // falla reportada / observaciones
	PasswordNotes  string // contraseña o patrón de desbloqueo
	AccessoryNotes string // cargador, funda, etc.
	CreatedAt      time.Time
}

// Label descripción corta: "Dell XPS (ABC-123)".
func (d *Device) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.Brand, d.Model} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if s := strings.TrimSpace(d.Serial); s != "" {
		if len(parts) == 0 {
			return s
		}
		parts = append(parts, "("+s+")")
	}
	if len(parts) == 0 {
		return "Equipo"
	}
	return strings.Join(parts, " ")
}
