// Package dbtest opens isolated in-memory databases for package tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/config"
	"github.com/yeremiapane/comanda-app/database"
	"github.com/yeremiapane/comanda-app/models"
	"gorm.io/gorm"
)

// New returns a migrated SQLite database private to the test.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := config.InitDB(config.DBConfig{Driver: config.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Fixture is a minimal two-tenant catalog.
type Fixture struct {
	Empresa models.Empresa
	Outra   models.Empresa
	Usuario models.Usuario

	Cerveja  models.Produto
	Pizza    models.Produto
	Inativo  models.Produto
	Estranho models.Produto
}

// Seed fills db with a Fixture.
func Seed(t testing.TB, db *gorm.DB) Fixture {
	t.Helper()
	f := Fixture{
		Empresa: models.Empresa{Nome: "Bar do Zé", CNPJ: "11.111.111/0001-11"},
		Outra:   models.Empresa{Nome: "Cantina Outra", CNPJ: "22.222.222/0001-22"},
	}
	require.NoError(t, db.Create(&f.Empresa).Error)
	require.NoError(t, db.Create(&f.Outra).Error)

	f.Usuario = models.Usuario{
		Nome:      "Garçom",
		Email:     "garcom@bardoze.com",
		Senha:     "x",
		Papel:     models.PapelGarcom,
		EmpresaID: f.Empresa.ID,
	}
	require.NoError(t, db.Create(&f.Usuario).Error)

	f.Cerveja = produto(t, db, f.Empresa.ID, "Cerveja", "8.50", true)
	f.Pizza = produto(t, db, f.Empresa.ID, "Pizza", "42.00", true)
	f.Inativo = produto(t, db, f.Empresa.ID, "Suco sazonal", "9.00", false)
	f.Estranho = produto(t, db, f.Outra.ID, "Lasanha", "30.00", true)
	return f
}

func produto(t testing.TB, db *gorm.DB, empresaID uuid.UUID, nome, preco string, ativo bool) models.Produto {
	t.Helper()
	p := models.Produto{
		Nome:      nome,
		Preco:     decimal.RequireFromString(preco),
		Ativo:     ativo,
		EmpresaID: empresaID,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}
