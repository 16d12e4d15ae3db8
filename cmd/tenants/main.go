package main

import (
	"mais/internal/tenants/handler"
	"mais/internal/tenants/repository"
	"mais/internal/tenants/service"
	"mais/internal/tenants/validator"
	"mais/pkg/app"
	"mais/pkg/config"
)

const ServiceName = "tenants"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Tenants service")
	tenantService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewTenantHandler(tenantService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.TenantService {
	tenantRepo := repository.NewMongoTenantRepository(cfg)
	tenantValidator := validator.NewTenantValidator()
	tenantService := service.NewTenantService(tenantRepo, tenantValidator, cfg)

	cfg.Log.Info("Tenant service initialized", "database", cfg.MongoDatabaseName)
	return tenantService
}
