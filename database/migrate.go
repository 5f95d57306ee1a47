package database

import (
	"fmt"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Empresa{},
		&models.Usuario{},
		&models.Categoria{},
		&models.Produto{},
		&models.Comanda{},
		&models.PedidoItem{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
