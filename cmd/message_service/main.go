package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"talk_message_service/internal/message/app"
	"talk_message_service/internal/message/domain"
	"talk_message_service/internal/message/repository"
	"talk_message_service/internal/message/router"
	"talk_message_service/pkg/config"
	"talk_message_service/pkg/database"
	"talk_message_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MessageService, config.EnvConfig.MessageServiceLogPath)
	cfg := config.LoadConfig[config.Message](config.EnvConfig.MessageService, config.EnvConfig.MessageServiceYAMLPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	hotRepo := repository.NewRedisHotRepository(redisClient)
	coldRepo := repository.NewMongoColdRepository(mongo.Database)
	convRepo := repository.NewMongoConversationRepository(mongo.Database)
	pubsub := repository.NewRedisPubSub(redisClient)

	locks := app.NewConversationLocks()
	sequencer := app.NewSequencer(hotRepo, coldRepo)
	messageUC := app.NewMessageUseCase(convRepo, hotRepo, coldRepo, pubsub, sequencer, locks)
	mutationUC := app.NewMutationUseCase(convRepo, hotRepo, coldRepo, pubsub, locks)

	registry := app.NewConnectionRegistry()
	subscriber := app.NewFanoutSubscriber(pubsub, registry)
	if err := subscriber.Run(ctx); err != nil {
		logger.Log.Fatal(fmt.Sprintf("fanout subscribe err : %v", err))
	}

	archiver := app.NewArchiver(hotRepo, coldRepo, sequencer, locks, cfg.Archive.Interval,
		map[domain.ConversationKind]domain.HotLimit{
			domain.KindDirect: {Threshold: cfg.Archive.DirectHotLimit, KeepTail: cfg.Archive.DirectKeepTail},
			domain.KindGroup:  {Threshold: cfg.Archive.GroupHotLimit, KeepTail: cfg.Archive.GroupKeepTail},
		})
	go archiver.Run(ctx)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.MessageServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	wsHandler := app.NewMessageWebsocketHandler(messageUC, registry, pubsub)
	httpHandler := app.NewMessageHTTPHandler(messageUC, mutationUC)
	router.RegisterRoutes(r, wsHandler, httpHandler)

	port := ":" + cfg.Port
	log.Printf("Message Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
