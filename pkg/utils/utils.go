package utils

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	NewSessionID(userID string) (string, error)
}

type utils struct {
	sessionIDPrefix string
}

func New() IUtils {
	return &utils{
		sessionIDPrefix: "banking-session-",
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// NewSessionID builds the provider-scoped session key for one user
// conversation.
func (u *utils) NewSessionID(userID string) (string, error) {
	id, err := u.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return "", err
	}

	if userID == "" {
		return u.sessionIDPrefix + id, nil
	}
	return fmt.Sprintf("%s%s-%s", u.sessionIDPrefix, userID, id), nil
}
