package entity

import "time"

// Customer cliente (tabla users). Se identifica por nombre + teléfono exactos al facturar.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
