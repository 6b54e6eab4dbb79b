package identity

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewStore),
)

// Models lists every table owned by this package, for auto-migration.
func Models() []any {
	return []any{&User{}, &PendingVerification{}}
}
