package auth

import "context"

// Credential identifies the account/user pair a request acts for.
type Credential struct {
	IDAccount int64 `json:"idAccount"`
	IDUser    int64 `json:"idUser"`
}

type ctxKey string

const credentialKey ctxKey = "credential"

func WithCredential(ctx context.Context, c Credential) context.Context {
	return context.WithValue(ctx, credentialKey, c)
}

func CredentialFromContext(ctx context.Context) (Credential, bool) {
	c, ok := ctx.Value(credentialKey).(Credential)
	return c, ok
}
