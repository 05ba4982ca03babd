package pups

import "time"

// Pup es la mascota cuidada. Tiene exactamente un dueño; el core del
// calendario la lee, nunca la muta.
type Pup struct {
	ID          string
	OwnerUserID string

	Name  string
	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
