package domain

import "time"

// Session is the per-browser state kept by the portal: the access token
// forwarded to the catalog services and the small UI state the pages share.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"-"`
	HasToken    bool      `json:"hasToken"`
	Page        Page      `json:"page"`
	AppForm     AppForm   `json:"appForm"`
	CDate       time.Time `json:"cdate"`
	MDate       time.Time `json:"mdate"`
}

type Page struct {
	Section  string `json:"section"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type AppForm struct {
	Files []string `json:"files"`
}

// NewSession returns an empty session.
func NewSession(id string, now time.Time) Session {
	return Session{
		ID:      id,
		AppForm: AppForm{Files: []string{}},
		CDate:   now,
		MDate:   now,
	}
}

// Reset clears the UI state. The token is kept.
func (s *Session) Reset() {
	s.Page = Page{}
	s.AppForm = AppForm{Files: []string{}}
}

// Notification is a toast addressed to one session.
type Notification struct {
	SessionID string    `json:"sessionId"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}
