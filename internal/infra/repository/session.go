package repository

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/totegamma/nextgen-portal/internal/domain"
)

const (
	sessionKeyPrefix = "nextgen:session:"
	defaultTTL       = 7 * 24 * time.Hour
)

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

var errSessionNotFound = domain.NotFoundError{Resource: "session"}

// storedSession is the serialized form used by the key-value stores. Unlike
// domain.Session it carries the access token.
type storedSession struct {
	ID          string         `json:"id"`
	AccessToken string         `json:"accessToken,omitempty"`
	Page        domain.Page    `json:"page"`
	AppForm     domain.AppForm `json:"appForm"`
	CDate       time.Time      `json:"cdate"`
	MDate       time.Time      `json:"mdate"`
}

func encodeSession(s domain.Session) ([]byte, error) {
	b, err := json.Marshal(storedSession{
		ID:          s.ID,
		AccessToken: s.AccessToken,
		Page:        s.Page,
		AppForm:     s.AppForm,
		CDate:       s.CDate,
		MDate:       s.MDate,
	})
	return b, errors.Wrap(err, "encode session")
}

func decodeSession(b []byte) (domain.Session, error) {
	var stored storedSession
	if err := json.Unmarshal(b, &stored); err != nil {
		return domain.Session{}, errors.Wrap(err, "decode session")
	}
	if stored.AppForm.Files == nil {
		stored.AppForm.Files = []string{}
	}
	return domain.Session{
		ID:          stored.ID,
		AccessToken: stored.AccessToken,
		Page:        stored.Page,
		AppForm:     stored.AppForm,
		CDate:       stored.CDate,
		MDate:       stored.MDate,
	}, nil
}
