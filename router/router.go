package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/comanda-app/config"
	"github.com/yeremiapane/comanda-app/controllers"
	"github.com/yeremiapane/comanda-app/kds"
	"github.com/yeremiapane/comanda-app/metrics"
	"github.com/yeremiapane/comanda-app/middlewares"
	"github.com/yeremiapane/comanda-app/repository"
	"github.com/yeremiapane/comanda-app/services"
	"gorm.io/gorm"
)

// Deps carries everything the HTTP layer is built from.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Hub      *kds.Hub
	Locker   services.PairLocker
	Metrics  *metrics.ComandaMetrics
	Gatherer prometheus.Gatherer
}

func SetupRouter(deps Deps) (*gin.Engine, error) {
	if deps.DB == nil || deps.Config == nil {
		return nil, fmt.Errorf("router: db and config are required")
	}
	if err := controllers.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("router: register validators: %w", err)
	}
	if deps.Hub == nil {
		deps.Hub = kds.NewHub()
	}

	store := repository.NewComandaRepository(deps.DB)
	catalog := services.NewCatalog(deps.DB)

	comandaSvc, err := services.NewComandaService(services.ComandaServiceParams{
		Store:   store,
		Catalog: catalog,
		Events:  deps.Hub,
		Metrics: deps.Metrics,
	})
	if err != nil {
		return nil, err
	}
	pedidoSvc, err := services.NewPedidoItemService(services.PedidoItemServiceParams{
		Store:   store,
		Catalog: catalog,
		Locker:  deps.Locker,
		Events:  deps.Hub,
		Metrics: deps.Metrics,
		Retry: services.RetryPolicy{
			MaxRetries: deps.Config.Comanda.MergeMaxRetries,
			BaseDelay:  deps.Config.Comanda.MergeBaseDelay,
		},
	})
	if err != nil {
		return nil, err
	}

	comandaCtrl := controllers.NewComandaController(comandaSvc)
	pedidoCtrl := controllers.NewPedidoItemController(pedidoSvc)
	kdsCtrl := controllers.NewKDSController(deps.Hub, deps.Config.App.CORSOrigin)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.Config.App.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware(deps.Metrics))

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	secret := []byte(deps.Config.JWT.Secret)
	limiter := middlewares.NewRateLimiter(deps.Config.RateLimit.RPS, deps.Config.RateLimit.Burst)

	r.GET("/ws/comandas", middlewares.AuthMiddleware(secret), kdsCtrl.KDSHandler)

	api := r.Group("/api")
	api.Use(limiter.RateLimit(), middlewares.AuthMiddleware(secret))
	{
		api.GET("/comandas", comandaCtrl.GetAllComandas)
		api.POST("/comandas", comandaCtrl.CreateComanda)
		api.GET("/comandas/:id", comandaCtrl.GetComandaByID)
		api.PATCH("/comandas/:id", comandaCtrl.UpdateComanda)
		api.PATCH("/comandas/:id/status", comandaCtrl.UpdateComandaStatus)
		api.DELETE("/comandas/:id", comandaCtrl.DeleteComanda)
		api.POST("/comandas/:id/itens", pedidoCtrl.AddPedidoItem)

		api.GET("/pedido-itens/:id", pedidoCtrl.GetPedidoItemByID)
		api.PATCH("/pedido-itens/:id", pedidoCtrl.UpdatePedidoItem)
		api.DELETE("/pedido-itens/:id", pedidoCtrl.DeletePedidoItem)
	}

	return r, nil
}
