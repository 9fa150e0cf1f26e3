package user

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// CredentialStore is the authentication collaborator. Credential management
// itself lives outside this service; account deletion only needs a hook to
// remove the login after the user's data is gone.
type CredentialStore interface {
	DeleteCredentials(ctx context.Context, userId string) error
}

// NoopCredentialStore is used when no external identity provider is wired in.
type NoopCredentialStore struct{}

func (n NoopCredentialStore) DeleteCredentials(_ context.Context, userId string) error {
	log.Infof("no credential store configured, skipping credential deletion for user %s", userId)
	return nil
}
