package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"regexp"
	"syscall"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/boot"
	"github.com/Vittorix99/mcp-website-sub001/src/common"
	"github.com/Vittorix99/mcp-website-sub001/src/config"
	"github.com/Vittorix99/mcp-website-sub001/src/db"
	"github.com/Vittorix99/mcp-website-sub001/src/lib"
	awslib "github.com/Vittorix99/mcp-website-sub001/src/lib/aws"
	"github.com/Vittorix99/mcp-website-sub001/src/lib/mailer"
	"github.com/Vittorix99/mcp-website-sub001/src/middlewares"
	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/purchase"
	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const (
	apiPrefix string = "/api/v1"
)

type dependencies struct {
	events   *common.EventService
	orders   *common.OrderService
	checkout *common.CheckoutService
	limiter  *middlewares.RateLimiter
	ping     func(ctx context.Context) error
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		if config.IsMaintenanceMode() {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func registerRoutes(router *gin.Engine, deps *dependencies) {
	apiv1 := apiv1Group(router)
	apiv1.GET("/health", func(ctx *gin.Context) {
		if deps.ping != nil {
			if err := deps.ping(ctx.Request.Context()); err != nil {
				log.Printf("Health check failed: %s\n", err.Error())
				ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	eventHandlers(apiv1, deps.events)
	orderHandlers(apiv1, deps.orders)

	checkout := apiv1.Group("")
	if deps.limiter != nil {
		checkout.Use(deps.limiter.Middleware())
	}
	checkoutHandlers(checkout, deps.checkout)
}

func corsMiddleware(apiEnv string) gin.HandlerFunc {
	if apiEnv == "local" {
		return cors.Default()
	}
	appHost := os.Getenv("APP_HOST")
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PUT", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Idempotency-Key")
	cc.AllowOriginFunc = func(origin string) bool {
		if appHost == "" {
			return false
		}
		match, _ := regexp.MatchString(regexp.QuoteMeta(appHost), origin)
		return match
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

func sessionConfig(broadcaster *lib.CheckoutBroadcaster) purchase.SessionConfig {
	return purchase.SessionConfig{
		MaxTickets:    config.GetMaxTickets(),
		MembershipFee: config.GetMembershipFee(),
		Currency:      config.GetCurrency(),
		Timeout:       config.GetRequestTimeout(),
		Reporter: func(err error) {
			log.Printf("[checkout] %s\n", err.Error())
		},
		OnTransition: func(sessionID string, tr purchase.Transition) {
			log.Printf("[checkout] %s: %s -> %s (order %s)\n", sessionID, tr.From, tr.To, tr.OrderID)
			if broadcaster == nil {
				return
			}
			payload := gin.H{"from": tr.From, "to": tr.To, "orderId": tr.OrderID}
			if err := broadcaster.Broadcast(sessionID, payload); err != nil {
				log.Printf("[pusher] %s: %s\n", sessionID, err.Error())
			}
		},
	}
}

// newPublisher returns the order event publisher: SNS, Kafka, or nil when neither is configured.
func newPublisher(ctx context.Context) common.Publisher {
	switch {
	case awslib.Enabled():
		cfg, err := awslib.LoadConfig(ctx)
		if err != nil {
			log.Printf("SNS publisher disabled: %s\n", err.Error())
			return nil
		}
		return awslib.NewSNSPublisher(cfg)
	case os.Getenv("KAFKA_BROKER") != "":
		return lib.NewKafkaPublisher("orders")
	}
	return nil
}

func buildDependencies(ctx context.Context, gdb *gorm.DB) *dependencies {
	eventStore := models.NewEventStore(gdb)
	orderStore := models.NewOrderStore(gdb)
	memberStore := models.NewMemberStore(gdb)

	opts := []common.OrderServiceOption{}
	if os.Getenv("REDIS_HOST") != "" {
		if rdb := lib.GetRedisClient(); rdb != nil {
			opts = append(opts, common.WithIdempotency(lib.NewIdempotencyStore(rdb, config.GetOrderTTL())))
		}
	}
	if publisher := newPublisher(ctx); publisher != nil {
		opts = append(opts,
			common.WithPublisher(publisher),
			common.WithNotifier(common.NewMailNotifier(mailer.NewQueue(publisher), os.Getenv("MAIL_FROM"), os.Getenv("MAIL_FROM_NAME"), os.Getenv("TEMP_DIR"))),
		)
	}
	orders := common.NewOrderService(eventStore, orderStore, memberStore, lib.NewStripeProvider(nil), common.OrderConfig{
		MaxTickets:    config.GetMaxTickets(),
		MembershipFee: config.GetMembershipFee(),
		Currency:      config.GetCurrency(),
		OrderTTL:      config.GetOrderTTL(),
	}, opts...)

	var broadcaster *lib.CheckoutBroadcaster
	if os.Getenv("PUSHER_APP_ID") != "" {
		broadcaster = lib.NewCheckoutBroadcaster(lib.GetPusherClient())
	}
	functions := lib.NewFunctionsClient(config.GetFunctionsURL(), config.GetRequestTimeout())
	registry := purchase.NewRegistry(config.GetCheckoutSessionTTL())

	return &dependencies{
		events:   common.NewEventService(eventStore, config.GetMembershipFee()),
		orders:   orders,
		checkout: common.NewCheckoutService(eventStore, registry, functions, functions, sessionConfig(broadcaster)),
		limiter:  middlewares.NewRateLimiter(config.GetCheckoutRateLimit()),
		ping:     db.Ping,
	}
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	if err := os.MkdirAll(path.Join(cwd, "logs"), 0o755); err != nil {
		log.Printf("Could not create logs directory: %s\n", err.Error())
		return
	}
	gin.ForceConsoleColor()

	f, err := os.Create(apiLogs)
	if err == nil {
		gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}))
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb := boot.InitDb()
	deps := buildDependencies(ctx, gdb)

	boot.InitScheduler(deps.orders, deps.checkout, deps.limiter)
	defer boot.StopScheduler()
	go boot.InitBroker(ctx)

	router := setupRouter()
	router.Use(corsMiddleware(apiEnv))
	router = maintenanceModeMiddleware(router)
	registerRoutes(router, deps)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()
	log.Printf("Server listening on :%s\n", port)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %s\n", err.Error())
	}
}
