package view

import (
	"context"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
)

// IdentitySource provides the signed-in user. A nil user means signed out,
// whatever the reason.
type IdentitySource interface {
	Identity(ctx context.Context) *apiclient.User
	Refresh(ctx context.Context) *apiclient.User
}
