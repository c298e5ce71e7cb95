package room

import (
	"context"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/hibiken/asynq"

	"github.com/inkboard/server/internal/domain"
	"github.com/inkboard/server/internal/repository/connection"
	roomRepo "github.com/inkboard/server/internal/repository/room"
	"github.com/inkboard/server/internal/service/identity"
	"github.com/inkboard/server/internal/tasks"
	"github.com/inkboard/server/pkg/randstr"
)

// iRoomRepo is the read side of the durable-store collaborator. All writes
// travel through the task queue so interactive latency never waits on the
// store.
type iRoomRepo interface {
	FindRoomById(ctx context.Context, roomId string) (*domain.Room, error)
	FindUserById(ctx context.Context, userId string) (domain.User, error)
	GetChatHistory(ctx context.Context, roomId string, limit int) ([]domain.ChatMessage, error)
	GetReplay(ctx context.Context, roomId string) ([]domain.RecordedOp, error)
	ListPublicActiveRooms(ctx context.Context, limit int) ([]roomRepo.Listing, error)
}

type iConnRepo interface {
	Add(connId string, conn *websocket.Conn) error
	Register(connId string, identity connection.Identity) error
	GetIdentity(connId string) (connection.Identity, error)
	GetConn(connId string) (*websocket.Conn, error)
	Subscribe(connId, roomId string) error
	Unsubscribe(connId, roomId string)
	GetRoomConns(roomId, excludeConnId string) []*websocket.Conn
	Remove(connId string) (connection.Identity, []string)
	ConnCount() int
}

type iIdentityVerifier interface {
	Verify(token string) (identity.Identity, error)
}

type iTaskQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	// MembersLimit caps maxMembers a room may configure.
	MembersLimit     int
	UndoDepth        int
	ChatHistoryLimit int
	ListingLimit     int
}

type service struct {
	roomRepo         iRoomRepo
	connRepo         iConnRepo
	queue            iTaskQueue
	verifier         iIdentityVerifier
	generator        iGenerator
	directory        *directory
	presence         *presenceTracker
	logger           *slog.Logger
	membersLimit     int
	undoDepth        int
	chatHistoryLimit int
	listingLimit     int
}

func NewService(repo iRoomRepo, connRepo iConnRepo, queue iTaskQueue, verifier iIdentityVerifier, cfg *Config, logger *slog.Logger) *service {
	s := service{
		roomRepo:         repo,
		connRepo:         connRepo,
		queue:            queue,
		verifier:         verifier,
		directory:        newDirectory(),
		presence:         newPresenceTracker(),
		logger:           logger,
		membersLimit:     cfg.MembersLimit,
		undoDepth:        cfg.UndoDepth,
		chatHistoryLimit: cfg.ChatHistoryLimit,
		listingLimit:     cfg.ListingLimit,
	}

	if s.membersLimit <= 0 {
		s.membersLimit = domain.DefaultSettings().MaxMembers
	}
	if s.undoDepth <= 0 {
		s.undoDepth = 20
	}
	if s.chatHistoryLimit <= 0 {
		s.chatHistoryLimit = 50
	}
	if s.listingLimit <= 0 {
		s.listingLimit = 50
	}

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	s.generator = randstr.New(letterBytes)

	return &s
}

// identity resolves the verified identity behind a connection. Every room
// operation goes through it before touching an aggregate.
func (s service) identity(connId string) (connection.Identity, error) {
	id, err := s.connRepo.GetIdentity(connId)
	if err != nil {
		return connection.Identity{}, ErrAuthRequired
	}

	return id, nil
}

func (s service) enqueue(ctx context.Context, task *asynq.Task, err error) {
	if err == nil {
		_, err = s.queue.EnqueueContext(ctx, task)
	}
	if err != nil {
		// persistence is best-effort at enqueue time; the in-memory commit
		// already happened and the next save carries the same state
		s.logger.WarnContext(ctx, "failed to enqueue persistence task", "error", err)
	}
}

func (s service) persistRoom(ctx context.Context, rm *domain.Room) {
	task, err := tasks.NewRoomSaveTask(rm)
	s.enqueue(ctx, task, err)
}

func (s service) persistUser(ctx context.Context, user *domain.User) {
	task, err := tasks.NewUserSaveTask(user)
	s.enqueue(ctx, task, err)
}

func (s service) persistChatMessage(ctx context.Context, msg *domain.ChatMessage) {
	task, err := tasks.NewChatAppendTask(msg)
	s.enqueue(ctx, task, err)
}

func (s service) persistReplayOps(ctx context.Context, roomId string, ops []domain.RecordedOp) {
	task, err := tasks.NewReplayAppendTask(roomId, ops)
	s.enqueue(ctx, task, err)
}

type Stats struct {
	ActiveConnections int `json:"activeConnections"`
	ActiveRooms       int `json:"activeRooms"`
}

func (s service) Stats() Stats {
	return Stats{
		ActiveConnections: s.connRepo.ConnCount(),
		ActiveRooms:       s.directory.count(),
	}
}
