// Package testutil builds throwaway sqlite databases for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), pkgdb.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.WithContext(context.Background()).AutoMigrate(models.All()...))
	return db
}

// SeedStatuses inserts the names in order and returns their ids by name.
func SeedStatuses(t testing.TB, db *gorm.DB, names ...string) map[string]uint {
	t.Helper()

	ids := make(map[string]uint, len(names))
	for _, name := range names {
		s := models.OrderStatus{StatusName: name}
		require.NoError(t, db.Create(&s).Error)
		ids[name] = s.ID
	}
	return ids
}

func SeedProduct(t testing.TB, db *gorm.DB, name string, price string) models.Product {
	t.Helper()

	p := models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: 10, CategoryID: 1}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func SeedUser(t testing.TB, db *gorm.DB, email, role string) models.User {
	t.Helper()

	u := models.User{Name: email, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}
