package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"

	"postpilot/internal/adapters/httpapi/middleware"
	connectionPort "postpilot/internal/ports/connection"
	notificationPort "postpilot/internal/ports/notification"
	postPort "postpilot/internal/ports/post"
	queuePort "postpilot/internal/ports/queue"
	schedulePort "postpilot/internal/ports/schedule"
	userPort "postpilot/internal/ports/user"
)

// Inbound ports: what the controllers need from the services.

type UserUseCase interface {
	LoginUser(ctx context.Context, username, password string) (*userPort.LoginResponse, error)
	RegisterUser(ctx context.Context, name, username, email, password string) (*userPort.UserDTO, error)
}

type PostUseCase interface {
	CreatePost(ctx context.Context, userID, content string, platforms []string) (*postPort.PostDTO, error)
	GetPost(ctx context.Context, userID, id string) (*postPort.PostDTO, error)
}

type ScheduleUseCase interface {
	ScheduleBatch(ctx context.Context, userID string, postIDs []string, rule schedulePort.RuleInput, platformsOverride []string) (*schedulePort.BatchResult, error)
}

type ConnectionUseCase interface {
	Init(ctx context.Context, userID, platform, origin string) (string, error)
	Callback(ctx context.Context, platform, code, state string) (string, error)
	ListConnections(ctx context.Context, userID string) ([]*connectionPort.ConnectionDTO, error)
}

type PublishUseCase interface {
	HandleDelivery(ctx context.Context, job queuePort.Job) error
}

// SetupRoutes wires controllers; use cases are injected from main.
func SetupRoutes(
	userUC UserUseCase,
	postUC PostUseCase,
	scheduleUC ScheduleUseCase,
	connectionUC ConnectionUseCase,
	publishUC PublishUseCase,
	feed notificationPort.NotificationFeed,
	jwtKey []byte,
	queueToken string,
	appOrigin string,
) *gin.Engine {
	r := gin.Default()
	uc := NewUserController(userUC)
	pc := NewPostController(postUC)
	sc := NewScheduleController(scheduleUC)
	cc := NewConnectionController(connectionUC, appOrigin)
	pubc := NewPublishController(publishUC, queueToken)
	nc := NewNotificationController(feed)

	auth := middleware.JWTAuthMiddleware(jwtKey)

	r.POST("/register", uc.RegisterUser)
	r.POST("/login", uc.LoginUser)

	r.POST("/posts", auth, pc.CreatePost)
	r.GET("/posts/:id", auth, pc.GetPost)

	r.POST("/schedule", auth, sc.ScheduleBatch)

	r.POST("/connect/init", auth, cc.Init)
	// Browser redirect target; identity travels in the signed state.
	r.GET("/connect/:platform/callback", cc.Callback)
	r.GET("/connections", auth, cc.List)

	// Inbound deliveries from the deferred queue.
	r.POST("/publish/callback", pubc.HandleCallback)

	r.GET("/notifications", auth, nc.Recent)

	return r
}
