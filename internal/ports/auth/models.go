package auth

import "time"

// RoleStaff es el único rol con capacidad de escritura.
const RoleStaff = "staff"

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Role   string

	// TokenID (jti) y ExpiresAt solo vienen con tokens firmados; en modo dev quedan vacíos.
	TokenID   string
	ExpiresAt time.Time
}

func (c Claims) IsStaff() bool {
	return c.Role == RoleStaff
}
