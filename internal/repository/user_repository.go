package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	apperrors "payauth/internal/errors"
	"payauth/internal/model"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when an insert hits the unique email index.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines persistence operations.
// Connectivity failures are returned as errors.ErrUnavailable.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// withConn runs fn on a dedicated pooled connection that is released on return.
func (r *userRepository) withConn(ctx context.Context, fn func(tx *gorm.DB) error) error {
	acquired := false
	err := r.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		acquired = true
		return fn(tx)
	})
	if err == nil {
		return nil
	}
	if !acquired {
		return apperrors.Unavailable(err)
	}
	return classify(err)
}

func classify(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateEmail
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return ErrDuplicateEmail
	}
	if isConnError(err) {
		return apperrors.Unavailable(err)
	}
	return err
}

func isConnError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysqldriver.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.withConn(ctx, func(tx *gorm.DB) error {
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Where("email = ?", email).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureSchema creates the users table and its unique email index if missing.
func (r *userRepository) EnsureSchema(ctx context.Context) error {
	return r.withConn(ctx, func(tx *gorm.DB) error {
		return tx.AutoMigrate(&model.User{})
	})
}

func (r *userRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return apperrors.Unavailable(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.Unavailable(err)
	}
	return nil
}
