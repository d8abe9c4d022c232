package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestTableNames(t *testing.T) {
	require.Equal(t, "wallets", Wallet{}.TableName())
	require.Equal(t, "apps", App{}.TableName())
}

func TestAutoMigrateCreatesUniqueIndexes(t *testing.T) {
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))

	m := db.Migrator()
	require.True(t, m.HasTable(&Wallet{}))
	require.True(t, m.HasTable(&App{}))
	require.True(t, m.HasIndex(&Wallet{}, "idx_wallets_app_address"))
	require.True(t, m.HasIndex(&Wallet{}, "idx_wallets_app_email"))
	require.True(t, m.HasIndex(&Wallet{}, "idx_wallets_app_phone"))
}
