package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"regexp"
	"strings"
	"syscall"
	"time"

	"lodging/src/boot"
	"lodging/src/config"
	"lodging/src/db"
	"lodging/src/middlewares"
	"lodging/src/services"
	"lodging/src/types"
	"lodging/src/utils"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

// App carries what handlers need beyond the request.
type App struct {
	Engine *services.Engine
	Config config.Config
}

var calendarDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := utils.ParseDate(date)
	return err == nil
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("calendardate", calendarDateValidatorFunc)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine, cfg config.Config) *gin.Engine {
	g.Use(middlewares.Maintenance(func() bool {
		return cfg.MaintenanceMode
	}))
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func authorizedRoutes(g *gin.Engine, app *App) *gin.RouterGroup {
	authorized := apiv1Group(g)
	authorized.Use(middlewares.AuthMiddleware([]byte(app.Config.JWTSecret)))
	propertyHandlers(authorized, app)
	reservationHandlers(authorized, app)
	paymentHandlers(authorized, app)
	return authorized
}

// abortWithError maps business rejections to 4xx and everything else to 500.
func abortWithError(ctx *gin.Context, tag string, err error) {
	kind, ok := services.KindOf(err)
	if !ok {
		log.Printf("[%s] error: %s\n", tag, err.Error())
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	var rejection *services.Error
	errors.As(err, &rejection)
	status := http.StatusBadRequest
	switch {
	case services.IsNotFound(kind):
		status = http.StatusNotFound
	case kind == services.KindNotOwner:
		status = http.StatusForbidden
	case kind == services.KindConcurrentModification:
		status = http.StatusConflict
	}
	ctx.AbortWithStatusJSON(status, gin.H{"error": rejection.Reason, "kind": kind})
}

func badRequest(ctx *gin.Context, tag string, err error) {
	log.Printf("[%s] Error in validating request: %s\n", tag, err.Error())
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func initLogger(cfg config.Config) *slog.Logger {
	cwd, _ := os.Getwd()
	logDir := cfg.LogDir
	if !path.IsAbs(logDir) {
		logDir = path.Join(cwd, logDir)
	}
	os.MkdirAll(logDir, 0o755)
	serverLogs := path.Join(logDir, "server.log")
	apiLogs := path.Join(logDir, "api.log")

	gin.DefaultWriter = os.Stdout
	if f, err := os.Create(apiLogs); err != nil {
		log.Printf("Could not open %s, api logs go to stdout only: %s\n", apiLogs, err.Error())
	} else {
		gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	out := io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func corsMiddleware(cfg config.Config) gin.HandlerFunc {
	if cfg.Env == types.Local {
		return cors.Default()
	}
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
	cc.AllowOriginFunc = func(origin string) bool {
		if cfg.AppHost == "" {
			return false
		}
		match, _ := regexp.MatchString(cfg.AppHost, origin)
		return match || strings.HasPrefix(origin, "app:mobile")
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

func main() {
	if os.Getenv("API_ENV") == string(types.Local) {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("No .env loaded: %s\n", err.Error())
		}
	}
	cfg := config.Load()
	logger := initLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boot.InitDb()
	boot.InitScheduler()
	defer boot.StopScheduler()

	notifier := boot.InitNotifier(ctx, cfg, logger)
	engine := services.NewEngine(db.GetDb(), services.EngineConfig{
		Locker:           boot.InitLocker(cfg),
		Notifier:         notifier,
		Reminders:        boot.InitReminders(cfg, notifier),
		Logger:           logger.With("component", "reservations"),
		CheckinWindow:    cfg.CheckinWindow,
		PenaltyThreshold: cfg.PenaltyThreshold,
		PenaltyRate:      cfg.PenaltyRate,
		LockWait:         cfg.BookingLockWait,
		CheckinKey:       cfg.QRCSecret,
	})
	app := &App{Engine: engine, Config: cfg}

	router := setupRouter()
	router.Use(corsMiddleware(cfg))
	registerValidators()
	router = maintenanceModeMiddleware(router, cfg)
	authorizedRoutes(router, app)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %s\n", err.Error())
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %s\n", err.Error())
	}
}
