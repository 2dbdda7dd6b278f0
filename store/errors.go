package store

import (
	"fmt"

	"github.com/google/uuid"
)

type (
	TaskNotFound struct {
		ID uuid.UUID
	}

	UserNotFound struct {
		Username string
	}

	UsernameTaken struct {
		Username string
	}
)

func (t TaskNotFound) Error() string {
	return fmt.Sprintf("task %v not found", t.ID)
}

func (u UserNotFound) Error() string {
	return fmt.Sprintf("user %v not found", u.Username)
}

func (u UsernameTaken) Error() string {
	return fmt.Sprintf("username %v is already taken", u.Username)
}
