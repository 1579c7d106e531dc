// internal/app/services.go
package app

import (
	"storefront-crm/internal/config"
	"storefront-crm/internal/pkg/cache"
	"storefront-crm/internal/repository/postgres"
	catalogsvc "storefront-crm/internal/service/catalog"
	commercesvc "storefront-crm/internal/service/commerce"
	crmsvc "storefront-crm/internal/service/crm"
	"storefront-crm/internal/service/email"
	tenantsvc "storefront-crm/internal/service/tenant"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services is the use-case layer shared by the API server and crmctl.
type Services struct {
	Tenant   *tenantsvc.TenantService
	Catalog  *catalogsvc.CatalogService
	Commerce *commercesvc.CommerceService
	CRM      *crmsvc.CRMService
}

// PublisherFactory builds the CRM event sink once the tenant service exists,
// since the realtime hub checks memberships through it.
type PublisherFactory func(members *tenantsvc.TenantService) crmsvc.EventPublisher

// BuildServices wires repositories and caches into services. A nil factory
// leaves CRM writes without a live feed.
func BuildServices(cfg config.AppConfig, pool *pgxpool.Pool, rdb redis.UniversalClient, publisher PublisherFactory, logger *zap.Logger) *Services {
	dbWrapper := postgres.NewDB(pool)

	// ----- Repositories -----
	merchantRepo := postgres.NewMerchantRepository(pool)
	subRepo := postgres.NewSubscriptionRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	memberRepo := postgres.NewTeamMemberRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	counterRepo := postgres.NewCounterRepository(pool)
	contactRepo := postgres.NewContactRepository(pool)
	leadRepo := postgres.NewLeadRepository(pool)
	dealRepo := postgres.NewDealRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)

	// ----- Caches -----
	memberCache := cache.NewMembershipCache(rdb, cfg.MembershipCacheTTL)
	statsCache := cache.NewStatsCache(rdb, cfg.StatsCacheTTL)

	tenantService := tenantsvc.NewTenantService(
		dbWrapper,
		merchantRepo,
		subRepo,
		storeRepo,
		memberRepo,
		userRepo,
		memberCache,
		cfg.TrialPeriod,
		logger.Named("tenant"),
	)

	if cfg.SMTP.Host != "" {
		tenantService.WithInviteMailer(email.NewEmailSender(cfg.SMTP))
	}

	var events crmsvc.EventPublisher
	if publisher != nil {
		events = publisher(tenantService)
	}

	return &Services{
		Tenant:  tenantService,
		Catalog: catalogsvc.NewCatalogService(productRepo, categoryRepo, logger.Named("catalog")),
		Commerce: commercesvc.NewCommerceService(
			dbWrapper,
			orderRepo,
			paymentRepo,
			counterRepo,
			productRepo,
			userRepo,
			storeRepo,
			logger.Named("commerce"),
		),
		CRM: crmsvc.NewCRMService(
			dbWrapper,
			contactRepo,
			leadRepo,
			dealRepo,
			activityRepo,
			statsCache,
			events,
			logger.Named("crm"),
		),
	}
}
