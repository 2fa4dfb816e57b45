package bootstrap

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	httpapi "github.com/jazbelrose/mylg-backend/internal/api/http"
	apimw "github.com/jazbelrose/mylg-backend/internal/api/http/middleware"
	authhttp "github.com/jazbelrose/mylg-backend/internal/auth/http"
	authmw "github.com/jazbelrose/mylg-backend/internal/auth/middleware"
	authrepo "github.com/jazbelrose/mylg-backend/internal/auth/repository"
	authservice "github.com/jazbelrose/mylg-backend/internal/auth/service"
	budgethttp "github.com/jazbelrose/mylg-backend/internal/budgets/http"
	budgetrepo "github.com/jazbelrose/mylg-backend/internal/budgets/repository"
	budgetservice "github.com/jazbelrose/mylg-backend/internal/budgets/service"
	collabhttp "github.com/jazbelrose/mylg-backend/internal/collab/http"
	collabrepo "github.com/jazbelrose/mylg-backend/internal/collab/repository"
	collabservice "github.com/jazbelrose/mylg-backend/internal/collab/service"
	"github.com/jazbelrose/mylg-backend/internal/files"
	fileshttp "github.com/jazbelrose/mylg-backend/internal/files/http"
	messagehttp "github.com/jazbelrose/mylg-backend/internal/messages/http"
	messagerepo "github.com/jazbelrose/mylg-backend/internal/messages/repository"
	"github.com/jazbelrose/mylg-backend/internal/notifications"
	projecthttp "github.com/jazbelrose/mylg-backend/internal/projects/http"
	projectrepo "github.com/jazbelrose/mylg-backend/internal/projects/repository"
	projectservice "github.com/jazbelrose/mylg-backend/internal/projects/service"
	"github.com/jazbelrose/mylg-backend/internal/realtime"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	JWTSecret      string
	AllowedOrigins []string
	DB             *pgxpool.Pool
	Redis          *redis.Client
	Hub            *realtime.Hub
	Dynamo         messagerepo.DynamoAPI
	MessagesTable  string
	S3             files.S3API
	UploadsBucket  string
	PublicBaseURL  string
	IDP            authservice.IdentityProvider
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: dep.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	// A typed nil *Hub must not end up inside the Publisher interface, or
	// the services' nil checks stop working.
	var pub realtime.Publisher
	if dep.Hub != nil {
		pub = dep.Hub
		r.GET("/ws", dep.Hub.HandleWS)
	}

	api := r.Group("/api/v1")
	api.Use(apimw.RequestID())

	userRepo := authrepo.NewUserRepository(dep.DB)
	authSvc := authservice.NewAuthService(userRepo, dep.IDP)
	authHandler := authhttp.New(authSvc)
	authHandler.RegisterPublic(api.Group("/auth"))

	// The message API keeps the original deployment's own CORS policy and
	// stays unauthenticated; rate limiting stands in for the gateway's
	// throttling.
	messagesGroup := api.Group("/messages")
	messagesGroup.Use(messagehttp.CORSMiddleware())
	messagesGroup.Use(apimw.RateLimitMiddleware(rate.Limit(10), 20))
	messageHandler := messagehttp.New(messagerepo.NewMessageRepository(dep.Dynamo, dep.MessagesTable))
	messageHandler.Register(messagesGroup)

	authed := api.Group("")
	authed.Use(authmw.JWTAuthMiddleware(dep.JWTSecret))

	authHandler.RegisterUsers(authed.Group("/users"))

	projRepo := projectrepo.NewRepo(dep.DB)
	projSvc := projectservice.NewProjectService(projRepo, userRepo, pub)
	projectsGroup := authed.Group("/projects")
	projecthttp.New(projSvc).Register(projectsGroup)

	budgetRepo := budgetrepo.NewBudgetRepository(dep.Redis)
	budgetSvc := budgetservice.NewBudgetService(budgetRepo, func(ctx context.Context, projectID string) (string, error) {
		p, err := projRepo.GetByID(ctx, projectID)
		if err != nil {
			return "", err
		}
		return p.Slug, nil
	}, pub)
	budgethttp.New(budgetSvc).Register(projectsGroup)

	inviteRepo := collabrepo.NewInviteRepository(dep.DB)
	inviteSvc := collabservice.NewInviteService(inviteRepo, pub)
	collabhttp.New(inviteSvc).Register(authed.Group("/invites"))

	storage := files.NewStorage(dep.S3, dep.UploadsBucket, dep.PublicBaseURL)
	fileshttp.New(storage, projRepo).Register(authed.Group("/files"))

	notifSvc := notifications.NewService(dep.DB, pub)
	notifications.NewHandler(notifSvc).Register(authed.Group("/notifications"))

	return r
}
