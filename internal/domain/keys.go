package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUsername  CtxKey = "Username"
	KeyUserEmail CtxKey = "Email"
	KeyRequestID CtxKey = "RequestID"
)
