package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/atriumhq/atrium/internal/auth/password"
)

const (
	defaultAdminEmail    = "admin@atrium.local"
	defaultAdminPassword = "admin"
	defaultAdminDisplay  = "Atrium Admin"
)

// EnsureDefaultAdmin seeds the bootstrap superadmin account so a fresh
// install is usable without manual SQL. It does nothing once any user
// exists.
func EnsureDefaultAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&authdomain.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := password.Hash(defaultAdminPassword)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		user := authdomain.User{
			ID:           node.Generate(),
			Email:        strings.ToLower(defaultAdminEmail),
			DisplayName:  defaultAdminDisplay,
			PasswordHash: &hash,
			Role:         authdomain.RoleSuperadmin,
			IsDefault:    true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(&user).Error
	})
}
