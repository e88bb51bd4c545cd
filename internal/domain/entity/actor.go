package entity

// Roles reconocidos en los claims del token.
const (
	RoleSuperuser  = "superuser"
	RoleManager    = "gerencia"
	RoleFrontDesk  = "recepcion"
	RoleTechnician = "tecnico"
	RoleStaff      = "staff"
	RoleSystem     = "sistema"
)

var roleLabels = map[string]string{
	RoleSuperuser:  "Superusuario",
	RoleManager:    "Gerencia",
	RoleFrontDesk:  "Recepcion",
	RoleTechnician: "Tecnico",
	RoleStaff:      "Staff",
	RoleSystem:     "Sistema",
}

// Capabilities se calculan una vez por petición y viajan por valor.
// La máquina de estados nunca consulta al subsistema de autenticación.
type Capabilities struct {
	CanAssign    bool
	CanMarkDone  bool
	CanCancel    bool
	IsTechnician bool
	// AssignedOrderIDs órdenes asignadas al técnico, si el caller ya las conoce.
	AssignedOrderIDs []string
}

// Actor quien ejecuta la operación.
type Actor struct {
	UserID       string
	Role         string
	Capabilities Capabilities
}

// RoleLabel etiqueta que se guarda en el historial.
func (a Actor) RoleLabel() string {
	if l, ok := roleLabels[a.Role]; ok {
		return l
	}
	return roleLabels[RoleStaff]
}

// IsAssignedTo indica si la orden está asignada a este actor.
func (a Actor) IsAssignedTo(o *ServiceOrder) bool {
	if a.UserID != "" && o.AssignedTo == a.UserID {
		return true
	}
	for _, id := range a.Capabilities.AssignedOrderIDs {
		if id == o.ID {
			return true
		}
	}
	return false
}

// NewActor deriva las capacidades a partir de los roles del usuario.
// Un superusuario nunca se trata como técnico.
func NewActor(userID string, roles ...string) Actor {
	has := map[string]bool{}
	for _, r := range roles {
		has[r] = true
	}
	a := Actor{UserID: userID}
	switch {
	case has[RoleSuperuser]:
		a.Role = RoleSuperuser
	case has[RoleManager]:
		a.Role = RoleManager
	case has[RoleFrontDesk]:
		a.Role = RoleFrontDesk
	case has[RoleTechnician]:
		a.Role = RoleTechnician
	default:
		a.Role = RoleStaff
	}
	manager := has[RoleSuperuser] || has[RoleManager]
	a.Capabilities = Capabilities{
		CanAssign:    manager || has[RoleFrontDesk],
		CanMarkDone:  manager || has[RoleFrontDesk],
		CanCancel:    manager,
		IsTechnician: a.Role == RoleTechnician,
	}
	return a
}

// SystemActor actor de las transiciones automáticas (cierre por saldo liquidado).
func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}
