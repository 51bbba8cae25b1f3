package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vietvisa/config"
	"vietvisa/internal/handler"
	"vietvisa/internal/middleware"
	"vietvisa/internal/repository"
	"vietvisa/internal/service"
	"vietvisa/internal/ws"
	"vietvisa/pkg/cloudinary"
	"vietvisa/pkg/mailer"
	"vietvisa/pkg/messaging"
)

// Deps carries the externally constructed clients the routes depend on.
type Deps struct {
	DB      *gorm.DB
	Cloud   cloudinary.Client
	Twilio  *messaging.TwilioClient
	Mail    mailer.Sender
	Intents service.IntentClient
	Hub     *ws.Hub
	Log     *zap.Logger
}

func Setup(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	appRepo := repository.NewApplicationRepository(d.DB)
	applicantRepo := repository.NewApplicantRepository(d.DB)
	docRepo := repository.NewDocumentRepository(d.DB)
	adminRepo := repository.NewAdminRepository(d.DB)
	inquiryRepo := repository.NewInquiryRepository(d.DB)

	// Services
	intakeSvc := service.NewIntakeService(appRepo, cfg.Pricing, d.Hub, d.Log)
	paymentSvc := service.NewPaymentService(appRepo, d.Intents, cfg.Stripe, d.Hub, d.Log)
	adminSvc := service.NewAdminService(appRepo, d.Log)
	dispatchSvc := service.NewDispatchService(appRepo, applicantRepo, docRepo, d.Twilio, d.Mail, d.Hub, d.Log)
	inquirySvc := service.NewInquiryService(inquiryRepo, d.Mail, cfg.Resend.SupportEmail, d.Log)
	authSvc := service.NewAuthService(adminRepo, &cfg.JWT, &cfg.OAuth, d.Log)

	// Handlers
	appHandler := handler.NewApplicationHandler(intakeSvc, appRepo)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, d.Log)
	adminHandler := handler.NewAdminHandler(adminSvc, appRepo, applicantRepo, inquiryRepo)
	docHandler := handler.NewDocumentHandler(docRepo, applicantRepo, dispatchSvc, d.Cloud, d.Log)
	verifyHandler := handler.NewVerifyHandler(d.Twilio, d.Log)
	contactHandler := handler.NewContactHandler(inquirySvc)
	authHandler := handler.NewAuthHandler(authSvc)
	googleHandler := handler.NewGoogleOAuthHandler(&cfg.OAuth, authSvc)

	staffMw := middleware.StaffRequired(&cfg.JWT)
	// Verification codes cost money per send, so they get a tighter limit.
	verifyLimit := middleware.RateLimit(middleware.NewInMemoryRateLimiter(5, 60*time.Second))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/applications", appHandler.Create)
		api.GET("/applications", appHandler.Lookup)
		api.POST("/applicants/:id/uploads/:kind", docHandler.UploadArtifact)

		api.POST("/payment-intents", paymentHandler.CreateIntent)
		api.POST("/webhooks/stripe", paymentHandler.Webhook)

		verify := api.Group("/verify")
		verify.Use(verifyLimit)
		{
			verify.POST("/send", verifyHandler.SendCode)
			verify.POST("/check", verifyHandler.CheckCode)
		}

		api.POST("/contact", contactHandler.SubmitInquiry)

		authGroup := api.Group("/admin/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google", googleHandler.Redirect)
			authGroup.GET("/google/callback", googleHandler.Callback)
		}

		admin := api.Group("/admin")
		admin.Use(staffMw)
		{
			admin.GET("/applications", adminHandler.ListApplications)
			admin.GET("/applications/:id", adminHandler.GetApplication)
			admin.PATCH("/applications/:id", adminHandler.UpdateApplication)
			admin.PATCH("/applicants/:id", adminHandler.UpdateApplicant)
			admin.POST("/applicants/:id/documents", docHandler.UploadVisaDocument)
			admin.POST("/applications/:id/dispatch", docHandler.Dispatch)
			admin.GET("/inquiries", adminHandler.ListInquiries)
			admin.PATCH("/inquiries/:id", adminHandler.UpdateInquiry)
		}

		api.GET("/ws/events", ws.UpgradeEventsWS(&cfg.JWT, d.Hub))
	}

	return r
}
