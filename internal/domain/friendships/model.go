package friendships

import "time"

// Friendship es el vínculo (pup, amigo) que habilita a un FRIEND a
// interactuar con el calendario de ese pup. A lo sumo un vínculo por par.
type Friendship struct {
	ID string

	PupID        string
	FriendUserID string

	// History es texto libre del dueño sobre la relación ("lo pasea desde 2023").
	History string

	CreatedAt time.Time
}
