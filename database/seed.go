package database

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedCNPJ = "12.345.678/0001-99"

// SeedResult carries the ids a developer needs to call the API right away.
type SeedResult struct {
	Empresa  models.Empresa
	Usuarios []models.Usuario
	Produtos []models.Produto
}

// Seed creates the demo restaurant. It is a no-op when the empresa already exists.
func Seed(db *gorm.DB) (*SeedResult, error) {
	var existing models.Empresa
	err := db.Where("cnpj = ?", seedCNPJ).First(&existing).Error
	if err == nil {
		utils.InfoLogger.Printf("Seed skipped: empresa %s already present", existing.Nome)
		return loadSeed(db, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup seed empresa: %w", err)
	}

	result := &SeedResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		telefone := "(51) 99999-9999"
		email := "contato@saborcaseiro.com"
		empresa := models.Empresa{
			Nome:     "Restaurante Sabor Caseiro",
			CNPJ:     seedCNPJ,
			Telefone: &telefone,
			Email:    &email,
		}
		if err := tx.Create(&empresa).Error; err != nil {
			return err
		}
		result.Empresa = empresa

		usuarios := []struct {
			nome, email, papel string
		}{
			{"Administrador", "admin@saborcaseiro.com", models.PapelAdmin},
			{"Pedro Garçom", "garcom@saborcaseiro.com", models.PapelGarcom},
			{"Maria Funcionária", "func@saborcaseiro.com", models.PapelFuncionario},
		}
		for _, u := range usuarios {
			hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash senha: %w", err)
			}
			usuario := models.Usuario{
				Nome:      u.nome,
				Email:     u.email,
				Senha:     string(hash),
				Papel:     u.papel,
				EmpresaID: empresa.ID,
			}
			if err := tx.Create(&usuario).Error; err != nil {
				return err
			}
			result.Usuarios = append(result.Usuarios, usuario)
		}

		categorias := map[string]*models.Categoria{}
		for _, c := range []struct{ nome, descricao string }{
			{"Bebidas", "Refrigerantes, sucos e água"},
			{"Lanches", "Xis, hambúrguer e porções"},
			{"Pratos", "Pratos executivos e refeições"},
		} {
			descricao := c.descricao
			categoria := &models.Categoria{Nome: c.nome, Descricao: &descricao, EmpresaID: empresa.ID}
			if err := tx.Create(categoria).Error; err != nil {
				return err
			}
			categorias[c.nome] = categoria
		}

		for _, p := range []struct {
			nome, descricao, preco, categoria string
			estoque                           int
		}{
			{"Refrigerante Lata", "350ml", "6.00", "Bebidas", 50},
			{"Água Mineral", "500ml", "4.00", "Bebidas", 40},
			{"Xis Salada", "Pão, carne, salada e molho", "22.00", "Lanches", 20},
			{"Batata Frita", "Porção média", "18.00", "Lanches", 15},
			{"Prato Feito", "Arroz, feijão, salada e carne", "25.00", "Pratos", 30},
			{"Parmegiana", "Carne + molho + queijo + arroz + fritas", "32.00", "Pratos", 18},
		} {
			descricao := p.descricao
			categoriaID := categorias[p.categoria].ID
			produto := models.Produto{
				Nome:        p.nome,
				Descricao:   &descricao,
				Preco:       decimal.RequireFromString(p.preco),
				Estoque:     p.estoque,
				Ativo:       true,
				CategoriaID: &categoriaID,
				EmpresaID:   empresa.ID,
			}
			if err := tx.Create(&produto).Error; err != nil {
				return err
			}
			result.Produtos = append(result.Produtos, produto)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	utils.InfoLogger.Printf("Seed completed: empresa %s (%s)", result.Empresa.Nome, result.Empresa.ID)
	return result, nil
}

func loadSeed(db *gorm.DB, empresa models.Empresa) (*SeedResult, error) {
	result := &SeedResult{Empresa: empresa}
	if err := db.Where("empresa_id = ?", empresa.ID).Order("email").Find(&result.Usuarios).Error; err != nil {
		return nil, err
	}
	if err := db.Where("empresa_id = ?", empresa.ID).Order("nome").Find(&result.Produtos).Error; err != nil {
		return nil, err
	}
	return result, nil
}
