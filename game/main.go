package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	gameapi "github.com/ctfarena/arena-services/game/api"
	"github.com/ctfarena/arena-services/game/countdown"
	"github.com/ctfarena/arena-services/game/service"
	"github.com/ctfarena/arena-services/game/store"
	"github.com/ctfarena/arena-services/shared/api"
	"github.com/ctfarena/arena-services/shared/auth"
	"github.com/ctfarena/arena-services/shared/config"
	"github.com/ctfarena/arena-services/shared/mongodb"
	redisu "github.com/ctfarena/arena-services/shared/redis"
)

func main() {
	// --- 1. Load Configuration ---
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: Could not load .env file: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded for Arena Service. Listening on: %s", cfg.ListenAddr)

	// --- 2. Connect to MongoDB ---
	mongoClient, err := mongodb.NewClient(cfg.MongoDBConnStr, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Printf("Error disconnecting MongoDB client: %v", err)
		}
	}()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer bootCancel()

	if err := mongoClient.EnsureIndexes(bootCtx); err != nil {
		log.Fatalf("Failed to ensure MongoDB indexes: %v", err)
	}

	// --- 3. Connect to Redis ---
	redisClient, err := redisu.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}()

	// --- 4. Initialize Data Stores ---
	playerStore := store.NewPlayerStore(mongoClient.Collection(mongodb.PlayersCollection))
	groupStore := store.NewGroupStore(
		mongoClient.Collection(mongodb.GroupsCollection),
		mongoClient.Collection(mongodb.CountersCollection),
	)
	flagStore := store.NewFlagStore(mongoClient.Collection(mongodb.FlagsCollection))
	roundStore := store.NewRoundStore(mongoClient.Collection(mongodb.RoundsCollection))
	userStore := store.NewUserStore(mongoClient.Collection(mongodb.UsersCollection))
	sessionStore := store.NewSessionStore(redisClient)

	// --- 5. Initialize Business Logic Services ---
	authenticator := auth.NewAuthenticator(cfg.JWTSecret, cfg.JWTValidity)
	authService := service.NewAuthService(userStore, authenticator)
	groupService := service.NewGroupService(groupStore, playerStore, cfg.AutoAssignGroups)
	playerService := service.NewPlayerService(playerStore, groupStore, groupService)
	flagService := service.NewFlagService(flagStore)

	// The driver's expiry callback and the round service reference each
	// other; the closure breaks the cycle.
	var roundService *service.RoundService
	driver := countdown.NewDriver(roundStore, cfg.TickInterval, func(ctx context.Context) error {
		return roundService.ExpireActiveRound(ctx)
	})
	roundService = service.NewRoundService(
		roundStore, groupStore, playerStore, sessionStore, driver,
		cfg.RoundDuration, cfg.SessionTTL,
	)
	gameService := service.NewGameService(playerStore, flagStore, roundStore, sessionStore)
	log.Println("Arena Service business logic initialized.")

	// --- 6. Seed Admin Users and Resume Any Active Round ---
	if err := authService.EnsureSeedUsers(bootCtx); err != nil {
		log.Fatalf("Failed to seed admin users: %v", err)
	}
	if err := roundService.Resume(bootCtx); err != nil {
		log.Fatalf("Failed to resume active round: %v", err)
	}
	defer driver.Stop()

	// --- 7. Setup HTTP Server and Register Routes ---
	handlers := gameapi.NewAPIHandlers(
		authService, playerService, groupService, flagService,
		roundService, gameService, authenticator,
	)
	baseServer := api.NewBaseServer(cfg.ListenAddr, log.Default())
	handlers.RegisterRoutes(baseServer.Router)
	log.Println("HTTP routes registered.")

	// --- 8. Start HTTP Server ---
	go func() {
		if err := baseServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed to start: %v", err)
		}
	}()

	// --- 9. Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down Arena Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := baseServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server graceful shutdown failed: %v", err)
	}
	log.Println("Arena Service gracefully shut down.")
}
