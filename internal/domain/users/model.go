package users

import "time"

// Role define el papel fijo de un usuario en el círculo de cuidado.
// @Enum OWNER, FRIEND
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleFriend Role = "FRIEND"
)

// User es una parte del sistema (dueño o amigo). El rol es inmutable
// después del registro; el canal de contacto puede faltar.
type User struct {
	ID   string
	Name string
	Role Role

	// ContactChannel es el destino de notificaciones (email, chat id, etc.).
	// nil => no hay canal en archivo y toda notificación queda "skipped".
	ContactChannel *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
