package model

// Identity is the verified caller behind a bearer token.
type Identity struct {
	SubjectID string
	Email     string
}
