package http

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	appsvc "plantid/internal/app"
	"plantid/internal/bootstrap"
	"plantid/internal/storage"
	"plantid/internal/transport/http/handler"
	"plantid/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())
	if app.SentryEnabled {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	// multipart parts beyond this spill to temp files
	router.MaxMultipartMemory = 12 << 20

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	if local, ok := app.Images.(*storage.LocalStore); ok {
		router.Static(local.Prefix(), local.Dir())
	}

	// A nil publisher pointer must not become a non-nil interface.
	var publisher appsvc.ContactPublisher
	if app.ContactPublisher != nil {
		publisher = app.ContactPublisher
	}

	authService := appsvc.NewAuthService(app.Store.Users)
	plantService := appsvc.NewPlantService(app.Store, app.Inference, app.Images)
	collectionService := appsvc.NewCollectionService(app.Store)
	contactService := appsvc.NewContactService(app.Store.ContactMessages, publisher)

	cookie := middleware.SessionCookie{
		Name:   app.Config.Auth.CookieName,
		Secure: app.Config.Auth.CookieSecure,
		MaxAge: int(app.Sessions.TTL().Seconds()),
	}
	authHandler := handler.NewAuthHandler(authService, app.Sessions, cookie)
	plantHandler := handler.NewPlantHandler(plantService)
	collectionHandler := handler.NewCollectionHandler(collectionService)
	contactHandler := handler.NewContactHandler(contactService)

	var limiter *middleware.IPRateLimiter
	if app.Config.RateLimit.AnalyzePerMinute > 0 {
		limiter = middleware.NewIPRateLimiter(app.Config.RateLimit.AnalyzePerMinute, app.Config.RateLimit.Burst)
	}

	api := router.Group("/api")
	api.Use(middleware.LoadSession(app.Sessions, cookie))
	requireSession := middleware.RequireSession()

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", requireSession, authHandler.Logout)
	authGroup.GET("/user", requireSession, authHandler.User)
	authGroup.PUT("/profile", requireSession, authHandler.UpdateProfile)

	analyze := middleware.RateLimit(limiter)
	api.POST("/identify-plant", analyze, plantHandler.Identify)
	api.POST("/diagnose-plant", analyze, plantHandler.Diagnose)

	api.GET("/identifications", requireSession, plantHandler.ListIdentifications)
	api.GET("/identifications/:id", plantHandler.GetIdentification)
	api.GET("/diagnoses", requireSession, plantHandler.ListDiagnoses)
	api.GET("/diagnoses/:id", plantHandler.GetDiagnosis)

	myPlants := api.Group("/my-plants", requireSession)
	myPlants.GET("", collectionHandler.List)
	myPlants.POST("", collectionHandler.Save)
	myPlants.DELETE("/:id", collectionHandler.Remove)

	api.POST("/contact", contactHandler.Submit)

	return router
}
