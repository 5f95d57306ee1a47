package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/config"
	"github.com/yeremiapane/comanda-app/database"
	"github.com/yeremiapane/comanda-app/utils"
	"gorm.io/gorm"
)

// seedDemo loads the demo restaurant and prints a token per usuario so the
// API can be exercised straight away.
func seedDemo(db *gorm.DB, cfg *config.Config) {
	result, err := database.Seed(db)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed database: %v", err)
	}
	for _, u := range result.Usuarios {
		token, err := utils.GenerateToken([]byte(cfg.JWT.Secret), u.ID.String(), result.Empresa.ID.String(), u.Papel, 24*time.Hour)
		if err != nil {
			utils.ErrorLogger.WithError(err).Error("failed to sign demo token")
			continue
		}
		utils.InfoLogger.WithFields(logrus.Fields{
			"empresa_id": result.Empresa.ID.String(),
			"usuario":    u.Email,
			"papel":      u.Papel,
		}).Infof("demo token: %s", token)
	}
	for _, p := range result.Produtos {
		utils.InfoLogger.WithField("produto_id", p.ID.String()).Infof("%s %s", p.Nome, utils.FormatCurrencyBRL(p.Preco))
	}
}
