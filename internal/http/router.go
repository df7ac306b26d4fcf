package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/placeshub/internal/auth"
	"github.com/geocoder89/placeshub/internal/config"
	"github.com/geocoder89/placeshub/internal/geo"
	"github.com/geocoder89/placeshub/internal/http/handlers"
	"github.com/geocoder89/placeshub/internal/http/middlewares"
	"github.com/geocoder89/placeshub/internal/observability"
	"github.com/geocoder89/placeshub/internal/repo/mongodb"
	"github.com/geocoder89/placeshub/internal/service"
	"github.com/geocoder89/placeshub/internal/uploads"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, client *mongo.Client, database *mongo.Database, rdb *redis.Client, cfg config.Config) (*gin.Engine, error) {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	prom := observability.NewProm()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(8 << 20)) // multipart image uploads
	r.Use(prom.GinHandleMiddleware())
	r.Use(otelgin.Middleware("placeshub"))

	// health
	ping := func() error {
		if client == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return client.Ping(ctx, readpref.Primary())
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(prom.Handler()))

	// wire up storage

	usersRepo := mongodb.NewUsersRepo(database, prom)
	placesRepo := mongodb.NewPlacesRepo(database, prom)
	txRunner := mongodb.NewTxRunner(client)

	imageStore, err := uploads.NewStore(cfg.UploadsDir)

	if err != nil {
		return nil, err
	}

	// geocoder, optionally behind the redis cache

	var resolver geo.Resolver = geo.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderAPIKey)

	if rdb != nil {
		resolver = geo.NewCachedResolver(resolver, rdb, 24*time.Hour, log)
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())

	placeSvc := service.NewPlaceService(placesRepo, usersRepo, resolver, txRunner, imageStore, log)
	userSvc := service.NewUserService(usersRepo, jwtManager, imageStore, log)

	placesHandler := handlers.NewPlacesHandler(placeSvc, imageStore)
	usersHandler := handlers.NewUsersHandler(userSvc, imageStore)

	authMw := middlewares.NewAuthMiddleware(jwtManager)

	// a small damper on credential stuffing
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	// uploaded images are served read-only
	r.Static("/uploads", imageStore.Dir())

	api := r.Group("/api")

	places := api.Group("/places")
	places.GET("/:pid", placesHandler.GetPlace)
	// gin's route tree cannot hold a static "user" segment next to the
	// ":pid" wildcard, so /places/user/:uid goes through the wildcard and
	// the handler checks the literal itself
	places.GET("/:pid/:uid", placesHandler.GetPlacesByUser)
	places.POST("", authMw.RequireAuth(), placesHandler.CreatePlace)
	places.PATCH("/:pid", authMw.RequireAuth(), placesHandler.UpdatePlace)
	places.DELETE("/:pid", authMw.RequireAuth(), placesHandler.DeletePlace)

	users := api.Group("/users")
	users.GET("", usersHandler.ListUsers)
	users.POST("/signup", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), usersHandler.SignUp)
	users.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), usersHandler.Login)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "route not found in your application")
	})

	return r, nil
}
