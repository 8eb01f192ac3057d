package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learningcenter/services/auth-service/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleGorm struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null;size:32"`
}

func (RoleGorm) TableName() string {
	return "roles"
}

type UserGorm struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username  string     `gorm:"uniqueIndex;not null;size:50"`
	Password  string     `gorm:"not null"`
	Roles     []RoleGorm `gorm:"many2many:user_roles;"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserGorm) TableName() string {
	return "users"
}

func (ug *UserGorm) ToDomain() *domain.User {
	roles := make([]string, len(ug.Roles))
	for i, r := range ug.Roles {
		roles[i] = r.Name
	}
	return &domain.User{
		ID:           ug.ID,
		Username:     ug.Username,
		PasswordHash: ug.Password,
		Roles:        roles,
		CreatedAt:    ug.CreatedAt,
		UpdatedAt:    ug.UpdatedAt,
	}
}

func Models() []interface{} {
	return []interface{}{&RoleGorm{}, &UserGorm{}}
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// SeedRoles inserts the missing roles.
func (r *UserRepository) SeedRoles(ctx context.Context, names []string) error {
	for _, name := range names {
		role := RoleGorm{Name: name}
		if err := r.db.WithContext(ctx).Where(RoleGorm{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var roles []RoleGorm
		if err := tx.Where("name IN ?", user.Roles).Find(&roles).Error; err != nil {
			return err
		}
		if len(roles) != len(user.Roles) {
			return domain.ErrUnknownRole
		}
		gormUser := &UserGorm{
			ID:       user.ID,
			Username: user.Username,
			Password: user.PasswordHash,
			Roles:    roles,
		}
		if err := tx.Create(gormUser).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrUserAlreadyExists
			}
			return err
		}
		user.CreatedAt, user.UpdatedAt = gormUser.CreatedAt, gormUser.UpdatedAt
		return nil
	})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var userModel UserGorm
	err := r.db.WithContext(ctx).Preload("Roles").Where(query, arg).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userModel.ToDomain(), nil
}
