package routes

import (
	"context"
	"fmt"
	"time"

	"coachingportal/config"
	"coachingportal/controllers"
	"coachingportal/repositories"
	"coachingportal/services"
	"coachingportal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServiceContainer holds all services and dependencies
type ServiceContainer struct {
	DB              *mongo.Database
	JWTSecret       string
	B2Service       *services.B2Service
	StorageService  *services.StorageService
	CourseService   *services.CourseService
	ArtifactService *services.ArtifactService
	PhotoService    *services.PhotoService
	UserService     *services.UserService
	InboxService    *services.InboxService
	Publisher       services.Publisher
}

// NewServiceContainer wires the Mongo stores, B2 and the fan-out pipeline.
func NewServiceContainer(ctx context.Context, db *mongo.Database, cfg *config.Config) (*ServiceContainer, error) {
	b2Service, err := services.NewB2Service(ctx, cfg.B2ApplicationKeyID, cfg.B2ApplicationKey, cfg.B2BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize B2: %w", err)
	}

	return NewServiceContainerWithStorage(db, b2Service, cfg), nil
}

// NewServiceContainerWithStorage builds everything on top of an existing B2 client.
func NewServiceContainerWithStorage(db *mongo.Database, b2Service *services.B2Service, cfg *config.Config) *ServiceContainer {
	users := repositories.NewUserRepository(db)
	courses := repositories.NewCourseRepository(db)
	artifacts := repositories.NewArtifactRepository(db)
	notifications := repositories.NewNotificationRepository(db, cfg.MongoTransactions)

	audience := services.NewAudienceService(users, cfg.AudienceQueryMode)
	writer := services.NewFanOutService(notifications, cfg.FanOutBatchSize, cfg.FanOutDedupe, utils.NewComponentLogger("FANOUT"))
	publisher := services.NewPublishService(audience, writer, utils.NewComponentLogger("PUBLISH"))

	storage := services.NewStorageService(b2Service, cfg.StoragePrefixes, cfg.StorageLimitBytes)

	return &ServiceContainer{
		DB:              db,
		JWTSecret:       cfg.JWTSecret,
		B2Service:       b2Service,
		StorageService:  storage,
		CourseService:   services.NewCourseService(courses, publisher),
		ArtifactService: services.NewArtifactService(artifacts, courses, b2Service, storage, publisher, cfg.MaxFileSize),
		PhotoService:    services.NewPhotoService(repositories.NewPhotoRepository(db), b2Service, storage, cfg.MaxFileSize),
		UserService:     services.NewUserService(users, courses),
		InboxService:    services.NewInboxService(notifications, users, utils.NewComponentLogger("INBOX")),
		Publisher:       publisher,
	}
}

// EnsureIndexes creates the collection indexes the stores rely on.
func (sc *ServiceContainer) EnsureIndexes() error {
	ctx, cancel := config.CreateContext(30 * time.Second)
	defer cancel()
	return repositories.EnsureIndexes(ctx, sc.DB)
}

// SetupRoutesWithContainer configures all API routes using a service container
func SetupRoutesWithContainer(api *gin.RouterGroup, container *ServiceContainer) {
	h := Handlers{
		Users:         controllers.NewUserController(container.UserService),
		Courses:       controllers.NewCourseController(container.CourseService),
		Artifacts:     controllers.NewArtifactController(container.ArtifactService),
		Photos:        controllers.NewPhotoController(container.PhotoService),
		Notifications: controllers.NewNotificationController(container.InboxService),
		Storage:       controllers.NewStorageController(container.StorageService),
	}
	RegisterRoutes(api, container.JWTSecret, h)
}

// Handlers groups the controllers mounted under /api.
type Handlers struct {
	Users         *controllers.UserController
	Courses       *controllers.CourseController
	Artifacts     *controllers.ArtifactController
	Photos        *controllers.PhotoController
	Notifications *controllers.NotificationController
	Storage       *controllers.StorageController
}

func RegisterRoutes(api *gin.RouterGroup, jwtSecret string, h Handlers) {
	RegisterPublicRoutes(api, h)
	RegisterStudentRoutes(api, jwtSecret, h)
	RegisterAdminRoutes(api, jwtSecret, h)
}
