package domain

const (
	SessionIDCtxKey = "ng-sessionId"
)

const (
	SessionCookie = "ng_session"
	SessionHeader = "ng-session-id"
)
