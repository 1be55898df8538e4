package driven

import (
	"context"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// AdminStore defines the driven port for administrative accounts.
type AdminStore interface {
	// GetByUsername returns (nil, nil) when no such account exists.
	GetByUsername(ctx context.Context, username string) (*model.Admin, error)

	// GetByID returns (nil, nil) when no such account exists.
	GetByID(ctx context.Context, id string) (*model.Admin, error)

	// Create inserts a new account. Fails on duplicate username.
	Create(ctx context.Context, admin model.Admin) error

	// Count returns the number of accounts; used by startup bootstrap.
	Count(ctx context.Context) (int, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// RecordLogin stamps the account's last successful login time.
	RecordLogin(ctx context.Context, id string) error
}
