package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/atlasimmo/atlas-immo-api/internal/config"
	"github.com/atlasimmo/atlas-immo-api/internal/logging"
	"github.com/atlasimmo/atlas-immo-api/internal/media"
	miniorepo "github.com/atlasimmo/atlas-immo-api/internal/repository/minio"
	"github.com/atlasimmo/atlas-immo-api/internal/repository/ports"
	"github.com/atlasimmo/atlas-immo-api/internal/repository/postgres"
	"github.com/atlasimmo/atlas-immo-api/internal/service"
	transporthttp "github.com/atlasimmo/atlas-immo-api/internal/transport/http"
	"github.com/atlasimmo/atlas-immo-api/internal/transport/mail"
	"github.com/atlasimmo/atlas-immo-api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash mirror disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepo(db)
	listingRepo := postgres.NewListingRepo(db)
	conversationRepo := postgres.NewConversationRepo(db)
	ticketRepo := postgres.NewTicketRepo(db)
	favoriteRepo := postgres.NewFavoriteRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	var storage ports.ObjectStorage
	if cfg.MinIOEndpoint != "" {
		client, err := miniorepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			log.Fatalf("minio: %v", err)
		}
		minioStorage := miniorepo.NewStorage(client)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := minioStorage.EnsureBucket(ctx, cfg.MinIOBucketListings); err != nil {
			log.Fatalf("minio bucket %s: %v", cfg.MinIOBucketListings, err)
		}
		cancel()
		storage = minioStorage
	}

	notifier := buildNotifier(cfg)

	var processor media.Processor
	if cfg.FFMPEGPath != "" {
		processor = media.NewFFMPEGProcessor(cfg.FFMPEGPath, cfg.ListingPhotoMaxDim)
	}

	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	authService := service.NewAuthService(userRepo, jwtManager, notifier, cfg.GoogleAudience, cfg.FrontendBaseURL, cfg.PasswordResetTTL)
	listingService := service.NewListingService(listingRepo, storage, service.ListingServiceConfig{
		Bucket:            cfg.MinIOBucketListings,
		PublicBaseURL:     cfg.MinIOPublicURL,
		MaxPhotoBytes:     cfg.ListingPhotoMaxBytes,
		ImageProcessor:    processor,
		ImageMaxDimension: cfg.ListingPhotoMaxDim,
	})
	conversationService := service.NewConversationService(conversationRepo, listingRepo)
	ticketService := service.NewTicketService(ticketRepo, userRepo, notifier)
	favoriteService := service.NewFavoriteService(favoriteRepo, listingRepo)
	statsService := service.NewStatsService(statsRepo)

	e := transporthttp.NewRouter(cfg.AllowOrigins)
	transporthttp.RegisterAuth(e, authService)
	transporthttp.RegisterListings(e, authService, listingService)
	transporthttp.RegisterConversations(e, authService, conversationService)
	transporthttp.RegisterTickets(e, authService, ticketService)
	transporthttp.RegisterFavorites(e, authService, favoriteService)
	transporthttp.RegisterStats(e, authService, statsService)
	transporthttp.RegisterSwagger(e)
	transporthttp.RegisterPages(e, cfg.FrontendBaseURL)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// buildNotifier prefers the SMTP relay and degrades to a simulated sender so
// credential flows keep working without mail infrastructure.
func buildNotifier(cfg config.Config) mail.Notifier {
	simulated := mail.NewSimulatedNotifier()
	if cfg.SMTPHost == "" {
		log.Println("mail: no SMTP relay configured, using simulated notifier")
		return simulated
	}
	smtp := mail.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.MailSendTimeout)
	return mail.WithFallback(smtp, simulated)
}
