package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dgrijalva/jwt-go"
	"github.com/getsentry/sentry-go"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/mymed-inc/mymed-api/api"
	"github.com/mymed-inc/mymed-api/external/geoinfo"
	"github.com/mymed-inc/mymed-api/external/identity"
	"github.com/mymed-inc/mymed-api/external/overpass"
	"github.com/mymed-inc/mymed-api/geo"
	"github.com/mymed-inc/mymed-api/metrics"
	"github.com/mymed-inc/mymed-api/nearby"
	"github.com/mymed-inc/mymed-api/places"
	"github.com/mymed-inc/mymed-api/store"
	"github.com/mymed-inc/mymed-api/utils"
)

var (
	server      *api.Server
	ormDB       *gorm.DB
	mongoStore  store.MongoStore
	redisClient *redis.Client
)

func initLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func loadConfig(file string) {
	// Values from a .env file end up in the environment
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file.")
	}

	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("mymed")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// sessionTTL is places.session_ttl, never longer than a session token
func sessionTTL() time.Duration {
	hours := viper.GetInt("jwt.expire")
	if hours <= 0 {
		hours = 24
	}
	tokenLifetime := time.Duration(hours) * time.Hour

	ttl := viper.GetDuration("places.session_ttl")
	if ttl <= 0 {
		ttl = nearby.DefaultSessionTTL
	}
	if ttl > tokenLifetime {
		return tokenLifetime
	}
	return ttl
}

func main() {
	var configFile string

	initialCtx, cancelInitialization := context.WithCancel(context.Background())

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Server is preparing to shutdown")

		if initialCtx != nil && cancelInitialization != nil {
			log.Info("Cancelling initialization")
			cancelInitialization()
			<-initialCtx.Done()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if server != nil {
			log.Info("Shutdown mobile api server")
			if err := server.Shutdown(ctx); err != nil {
				log.Error("Server Shutdown:", err)
			}
		}

		if ormDB != nil {
			log.Info("Shutting down db store")
			if err := ormDB.Close(); err != nil {
				log.Error(err)
			}
		}

		if mongoStore != nil {
			log.Info("Shutting down mongo store")
			mongoStore.Close()
		}

		if redisClient != nil {
			log.Info("Shutting down redis client")
			if err := redisClient.Close(); err != nil {
				log.Error(err)
			}
		}

		os.Exit(1)
	}()

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	loadConfig(configFile)

	initLog()

	// Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("sentry.dsn"),
		AttachStacktrace: true,
		Environment:      viper.GetString("sentry.environment"),
		Dist:             viper.GetString("sentry.dist"),
	}); err != nil {
		log.Error(err)
	}
	log.WithField("prefix", "init").Info("Initialized sentry")

	utils.InitI18NBundle()
	log.WithField("prefix", "init").Info("Loaded i18n bundle")

	// Load JWT private key
	jwtSecretByte, err := ioutil.ReadFile(viper.GetString("jwt.keyfile"))
	if err != nil {
		log.Panic(err)
	}
	jwtPrivateKey, err := jwt.ParseRSAPrivateKeyFromPEMWithPassword(jwtSecretByte, viper.GetString("jwt.password"))
	if err != nil {
		log.Panic(err)
	}
	log.WithField("prefix", "init").Info("Loaded global jwt key")

	// Init redis
	redisOpts, err := redis.ParseURL(viper.GetString("redis.conn"))
	if err != nil {
		log.Panic(err)
	}
	redisClient = redis.NewClient(redisOpts)

	ormDB, err = gorm.Open("postgres", viper.GetString("orm.conn"))
	if err != nil {
		log.Panic(err)
	}

	// initialise mongodb connections
	opts := options.Client().ApplyURI(viper.GetString("mongo.conn"))
	opts.SetMaxPoolSize(viper.GetUint64("mongo.pool"))
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		log.Panicf("create mongo client with error: %s", err)
	}

	err = mongoClient.Connect(context.Background())
	if nil != err {
		log.Panicf("connect mongo database with error: %s", err)
	}
	mongoStore = store.NewMongoStore(mongoClient, viper.GetString("mongo.database"))

	// Identity provider
	identityProvider := identity.New(nil, viper.GetString("identity.endpoint"), viper.GetString("identity.apikey"))

	// Nearby places pipeline
	overpassTimeout := viper.GetDuration("overpass.timeout")
	if overpassTimeout <= 0 {
		overpassTimeout = overpass.DefaultTimeout
	}
	fetcher := overpass.New(&http.Client{Timeout: overpassTimeout}, viper.GetString("overpass.endpoint"))
	finder := places.NewFinder(fetcher, metrics.NewPlacesMetrics(prometheus.DefaultRegisterer))
	registry := nearby.NewRegistry(finder, viper.GetInt("places.default_radius"), sessionTTL())
	log.WithField("prefix", "init").Info("Initialized nearby places pipeline")

	// Area names
	var resolver geo.AreaResolver
	if key := viper.GetString("map.apikey"); key != "" {
		client, err := geoinfo.New(key)
		if err != nil {
			log.Panic(err)
		}
		resolver = geo.NewGeocodingResolver(client)
		geo.SetAreaResolver(resolver)
	} else {
		log.WithField("prefix", "init").Warn("map.apikey is empty, area names are disabled")
	}

	// Init http server
	server = api.NewServer(
		ormDB,
		mongoStore,
		redisClient,
		jwtPrivateKey,
		identityProvider,
		finder,
		registry,
		resolver)
	log.WithField("prefix", "init").Info("Initialized http server")

	// Remove initial context
	initialCtx = nil
	cancelInitialization = nil

	log.Fatal(server.Run(":" + viper.GetString("server.port")))
}
