// Package testutil содержит общие помощники для тестов на sqlite в памяти.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/db"
	"github.com/Leganyst/golf-club/internal/model"
)

// NewDB открывает отдельную базу sqlite в памяти на тест и применяет миграции.
// Соединение одно, поэтому внутри транзакции можно использовать только tx.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	gdb, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, model.AutoMigrate(gdb))
	return gdb
}
