package controller

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/inkboard/server/internal/domain"
	roomRepo "github.com/inkboard/server/internal/repository/room"
	"github.com/inkboard/server/internal/service/room"
	"github.com/inkboard/server/pkg/validator"
	"github.com/inkboard/server/pkg/wsrouter"
)

type iRoomService interface {
	Connect(ctx context.Context, conn *websocket.Conn) (string, error)
	Authenticate(context.Context, *room.AuthenticateParams) (room.AuthenticateResponse, error)
	Disconnect(context.Context, *room.DisconnectParams) (room.DisconnectResponse, error)
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	ApplyMutation(context.Context, *room.ApplyMutationParams) (room.ApplyMutationResponse, error)
	Undo(context.Context, *room.UndoParams) (room.UndoResponse, error)
	Redo(context.Context, *room.RedoParams) (room.RedoResponse, error)
	Relay(context.Context, *room.RelayParams) (room.RelayResponse, error)
	SendChatMessage(context.Context, *room.SendChatMessageParams) (room.SendChatMessageResponse, error)
	CursorMove(context.Context, *room.CursorMoveParams) (room.CursorMoveResponse, error)
	UpdateSettings(context.Context, *room.UpdateSettingsParams) (room.UpdateSettingsResponse, error)
	PromoteMember(context.Context, *room.PromoteMemberParams) (room.PromoteMemberResponse, error)
	StartRecording(context.Context, *room.RecordingParams) (room.RecordingResponse, error)
	StopRecording(context.Context, *room.RecordingParams) (room.RecordingResponse, error)
	GetRoomState(ctx context.Context, roomId string) (room.RoomStateResponse, error)
	GetReplay(ctx context.Context, roomId string) ([]domain.RecordedOp, error)
	ListPublicRooms(ctx context.Context) ([]roomRepo.Listing, error)
	Stats() room.Stats
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	wsmux       *wsrouter.WSRouter
	validate    *validator.Validator
	logger      *slog.Logger
	// writeLocks serializes writers per connection: a peer's broadcast and
	// the connection's own handler may write at the same time.
	writeLocks sync.Map
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	c := controller{
		roomService: roomService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.New(),
		logger:   logger,
	}
	c.wsmux = c.getWSRouter()

	return &c
}
