package api

import (
	"context"
	"crypto/rsa"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mymed-inc/mymed-api/account"
	"github.com/mymed-inc/mymed-api/external/identity"
	"github.com/mymed-inc/mymed-api/geo"
	"github.com/mymed-inc/mymed-api/logmodule"
	"github.com/mymed-inc/mymed-api/nearby"
	"github.com/mymed-inc/mymed-api/store"
	"github.com/mymed-inc/mymed-api/utils"
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "gin")
}

// Server to run a http server instance
type Server struct {
	// Server instance
	server *http.Server

	// Stores
	store        store.AccountCore
	mongoStore   store.MongoStore
	sessionStore store.SessionStore

	// JWT private key
	jwtPrivateKey *rsa.PrivateKey

	// Services
	accounts *account.Service
	finder   nearby.Searcher
	registry *nearby.Registry
	resolver geo.AreaResolver
}

// NewServer new instance of server
func NewServer(
	ormDB *gorm.DB,
	mongoStore store.MongoStore,
	redisClient *redis.Client,
	jwtKey *rsa.PrivateKey,
	identityProvider identity.Provider,
	finder nearby.Searcher,
	registry *nearby.Registry,
	resolver geo.AreaResolver) *Server {
	accountStore := store.NewAccountStore(ormDB)
	sessionStore := store.NewSessionStore(redisClient)

	return &Server{
		store:         accountStore,
		mongoStore:    mongoStore,
		sessionStore:  sessionStore,
		jwtPrivateKey: jwtKey,
		accounts:      account.NewService(identityProvider, accountStore, sessionStore, registry),
		finder:        finder,
		registry:      registry,
		resolver:      resolver,
	}
}

// Run to run the server
func (s *Server) Run(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.setupRouter(),
	}

	return s.server.ListenAndServe()
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         10 * time.Second,
	}))

	apiRoute := r.Group("/api")
	apiRoute.Use(logmodule.Ginrus("API"))
	apiRoute.Use(cors.New(cors.Config{
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", "Accept-Language", "Geo-Position", "Location-Permission"},
		ExposeHeaders:   []string{"Content-Length"},
		AllowAllOrigins: true,
		MaxAge:          12 * time.Hour,
	}))

	publicAccountRoute := apiRoute.Group("/accounts")
	{
		publicAccountRoute.POST("/signup", s.accountSignUp)
		publicAccountRoute.POST("/signin", s.accountSignIn)
		publicAccountRoute.POST("/password-reset", s.accountResetPassword)
	}

	// api route other than the public account ones will apply the following middleware
	apiRoute.Use(s.authMiddleware())
	apiRoute.Use(s.updateGeoPositionMiddleware)

	accountRoute := apiRoute.Group("/accounts")
	{
		accountRoute.POST("/signout", s.accountSignOut)
	}

	profileRoute := apiRoute.Group("/profile")
	profileRoute.Use(s.recognizeAccountMiddleware())
	{
		profileRoute.GET("", s.getProfile)
		profileRoute.PATCH("", s.updateProfile)
	}

	apiRoute.GET("/nearby", s.searchNearby)

	placeRoute := apiRoute.Group("/places")
	{
		placeRoute.GET("", s.listPlaces)
		placeRoute.PUT("/filter", s.updatePlaceFilter)
		placeRoute.POST("/refresh", s.refreshPlaces)
		placeRoute.GET("/:placeID", s.placeDetail)
	}

	apiRoute.GET("/location", s.currentLocation)

	metricRoute := r.Group("/metrics")
	metricRoute.Use(logmodule.Ginrus("Metric"))
	metricRoute.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Origin"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowAllOrigins:  true,
		MaxAge:           12 * time.Hour,
	}))
	metricRoute.Use(s.apikeyAuthentication(viper.GetString("server.apikey.metric")))
	{
		metricRoute.GET("", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/healthz", s.healthz)

	return r
}

// Shutdown to shutdown the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.registry != nil {
		s.registry.Close()
	}
	return s.server.Shutdown(ctx)
}

// shouldInterupt sends error message and determine if it should interupt the current flow
func shouldInterupt(err error, c *gin.Context) bool {
	if err == nil {
		return false
	}

	log.Error(err)
	abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
	return true
}

func (s *Server) healthz(c *gin.Context) {
	// Ping db
	err := s.store.Ping()
	if shouldInterupt(err, c) {
		return
	}

	err = s.mongoStore.Ping()
	if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"version": viper.GetString("server.version"),
	})
}

// localizer picks the message language from Accept-Language
func localizer(c *gin.Context) *i18n.Localizer {
	return utils.NewLocalizer(c.GetHeader("Accept-Language"))
}

func responseWithEncoding(c *gin.Context, code int, obj ErrorResponse) {
	acceptEncoding := c.GetHeader("Accept-Encoding")
	switch acceptEncoding {
	default:
		c.JSON(code, obj)
	}
}

func abortWithEncoding(c *gin.Context, code int, obj ErrorResponse, errors ...error) {
	for _, err := range errors {
		c.Error(err)
	}
	responseWithEncoding(c, code, obj)
	c.Abort()
}
