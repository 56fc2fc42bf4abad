package main

import (
	"fmt"
	"log"
	"os"

	"backend/internal/database"
	"backend/internal/dispatch"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/rpcclient"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_NAME", "pharma_ops"),
			getEnv("DB_PORT", "5432"),
		)
	}

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	drugRepo := repository.NewDrugRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	contractRepo := repository.NewContractRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	qcSampleRepo := repository.NewQCSampleRepository(db)
	deviationRepo := repository.NewDeviationRepository(db)
	workOrderRepo := repository.NewWorkOrderRepository(db)
	bomRepo := repository.NewBOMRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	putawayRepo := repository.NewPutawayRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Every cross-service reference goes through the bus, even in a single
	// process, so services never touch each other's tables.
	bus := rpc.NewLocalBus()
	permissionClient := rpcclient.NewPermissionClient(bus)
	materialClient := rpcclient.NewMaterialClient(bus)
	drugClient := rpcclient.NewDrugClient(bus)
	qcSampleClient := rpcclient.NewQCSampleClient(bus)
	putawayClient := rpcclient.NewPutawayClient(bus)

	// Services
	auditService := service.NewAuditService(auditRepo, hub)
	userService := service.NewUserService(userRepo, auditService)
	roleService := service.NewRoleService(roleRepo, permissionClient, auditService)
	permissionService := service.NewPermissionService(permissionRepo, auditService)
	drugService := service.NewDrugService(drugRepo, auditService)
	materialService := service.NewMaterialService(materialRepo, auditService)
	supplierService := service.NewSupplierService(supplierRepo, auditService)
	contractService := service.NewContractService(contractRepo, supplierRepo, auditService)
	poService := service.NewPurchaseOrderService(poRepo, supplierRepo, materialClient, txManager, auditService)
	qcSampleService := service.NewQCSampleService(qcSampleRepo, auditService)
	deviationService := service.NewDeviationService(deviationRepo, auditService)
	workOrderService := service.NewWorkOrderService(workOrderRepo, bomRepo, drugClient, auditService)
	bomService := service.NewBOMService(bomRepo, materialClient, txManager, auditService)
	batchService := service.NewBatchService(batchRepo, workOrderRepo, bomRepo, qcSampleClient, putawayClient, txManager, auditService)
	putawayService := service.NewPutawayService(putawayRepo, auditService)

	// Dispatchers
	bus.Register(dispatch.NewIdentityDispatcher(roleService, permissionService, userService))
	bus.Register(dispatch.NewCatalogDispatcher(drugService, materialService))
	bus.Register(dispatch.NewProcurementDispatcher(supplierService, contractService, poService))
	bus.Register(dispatch.NewQualityDispatcher(qcSampleService, deviationService))
	bus.Register(dispatch.NewManufacturingDispatcher(workOrderService, bomService, batchService))
	bus.Register(dispatch.NewWarehouseDispatcher(putawayService))
	bus.Register(dispatch.NewAuditDispatcher(auditService))

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))
	router.Use(middleware.Identity())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(hub, c)
	})
	rpc.Mount(router, bus)

	port := getEnv("PORT", "8080")
	log.Println("Server starting on port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
