package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fanstream/internal/config"
	"fanstream/internal/handler"
	"fanstream/internal/infrastructure/cache"
	"fanstream/internal/infrastructure/database"
	"fanstream/internal/infrastructure/mq"
	"fanstream/internal/infrastructure/payment"
	"fanstream/internal/infrastructure/storage"
	"fanstream/internal/job"
	"fanstream/internal/realtime"
	"fanstream/internal/repository"
	"fanstream/internal/service"
	"fanstream/pkg/idgen"
)

func main() {
	// 1. 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg := config.LoadConfig(configPath)

	// 2. 初始化 ID 生成器
	if err := idgen.Init(1); err != nil {
		log.Fatalf("初始化 ID 生成器失败: %v", err)
	}

	// 3. 初始化基础设施
	db := database.InitMySQL(&cfg.MySQL)
	redisClient := cache.InitRedis(&cfg.Redis)
	mq.InitKafka(&cfg.Kafka)
	defer mq.CloseKafka()

	store, err := storage.NewStore(&cfg.S3)
	if err != nil {
		log.Fatalf("初始化对象存储失败: %v", err)
	}

	paymentClient := payment.NewClient(&cfg.CryptoBot)

	// 4. 初始化仓储层
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	streamRepo := repository.NewLiveStreamRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// 5. 实时推送中心
	hub := realtime.NewHub()

	// 6. 初始化服务层
	authService := service.NewAuthService(db, userRepo, profileRepo, redisClient, &cfg.JWT)
	notificationService := service.NewNotificationService(notificationRepo, hub)
	accessService := service.NewAccessService(interactionRepo, transactionRepo)
	profileService := service.NewProfileService(profileRepo, interactionRepo)
	postService := service.NewPostService(postRepo, accessService)
	mediaService := service.NewMediaService(mediaRepo, store, accessService)
	socialService := service.NewSocialService(interactionRepo, postRepo, mediaRepo, profileRepo, notificationService)
	messageService := service.NewMessageService(messageRepo, userRepo, notificationService, hub)
	livestreamService := service.NewLiveStreamService(streamRepo, interactionRepo, hub)
	purchaseService := service.NewPurchaseService(
		db, purchaseRepo, profileRepo, outboxRepo, paymentClient, hub, &cfg.Business, &cfg.Kafka)
	spendService := service.NewSpendService(
		db, postRepo, mediaRepo, profileRepo, transactionRepo, outboxRepo,
		notificationService, redisClient, hub, &cfg.Business, &cfg.Kafka)

	// 7. 启动后台任务
	settler := job.NewPurchaseSettler(purchaseRepo, purchaseService, paymentClient, &cfg.Business)
	settler.Start()
	defer settler.Stop()

	outboxSender := job.NewOutboxSender(outboxRepo, &cfg.Business)
	outboxSender.Start()
	defer outboxSender.Stop()

	// 8. 初始化路由并启动服务
	h := handler.NewHandler(
		authService, profileService, postService, mediaService,
		socialService, messageService, livestreamService, notificationService,
		purchaseService, spendService, hub)
	router := handler.SetupRouter(h)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("服务启动，监听端口 %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到退出信号，开始优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("服务关闭异常: %v", err)
	}
	log.Println("服务已退出")
}
