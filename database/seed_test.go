package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/database"
	"github.com/yeremiapane/comanda-app/database/dbtest"
	"github.com/yeremiapane/comanda-app/models"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := dbtest.New(t)

	first, err := database.Seed(db)
	require.NoError(t, err)
	assert.Len(t, first.Usuarios, 3)
	assert.Len(t, first.Produtos, 6)

	second, err := database.Seed(db)
	require.NoError(t, err)
	assert.Equal(t, first.Empresa.ID, second.Empresa.ID)

	var empresas, produtos int64
	require.NoError(t, db.Model(&models.Empresa{}).Count(&empresas).Error)
	require.NoError(t, db.Model(&models.Produto{}).Count(&produtos).Error)
	assert.Equal(t, int64(1), empresas)
	assert.Equal(t, int64(6), produtos)

	for _, p := range second.Produtos {
		assert.Equal(t, first.Empresa.ID, p.EmpresaID)
	}
}
