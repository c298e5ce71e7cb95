package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/inkboard/server/internal/domain"
	"github.com/inkboard/server/internal/repository/connection"
	roomRepo "github.com/inkboard/server/internal/repository/room"
)

const roomIdLength = 12

// Connect records a fresh transport session and hands back its connection
// id. The session cannot touch rooms until Authenticate succeeds.
func (s service) Connect(ctx context.Context, conn *websocket.Conn) (string, error) {
	connId := uuid.NewString()
	if err := s.connRepo.Add(connId, conn); err != nil {
		s.logger.WarnContext(ctx, "failed to add connection", "error", err)
		return "", err
	}

	return connId, nil
}

type AuthenticateParams struct {
	ConnId string
	Token  string
}

type AuthenticateResponse struct {
	User domain.User
}

func (s service) Authenticate(ctx context.Context, params *AuthenticateParams) (AuthenticateResponse, error) {
	id, err := s.verifier.Verify(params.Token)
	if err != nil {
		s.logger.InfoContext(ctx, "token verification failed", "error", err)
		return AuthenticateResponse{}, ErrInvalidToken
	}

	if err := s.connRepo.Register(params.ConnId, connection.Identity{
		UserId:   id.UserId,
		Username: id.Username,
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to register connection", "error", err)
		return AuthenticateResponse{}, err
	}

	user := domain.User{
		Id:         id.UserId,
		Username:   id.Username,
		LastActive: time.Now(),
	}
	s.persistUser(ctx, &user)

	return AuthenticateResponse{User: user}, nil
}

type CreateRoomParams struct {
	ConnId      string
	RoomName    string
	Description string
	Settings    *domain.Settings
}

type CreateRoomResponse struct {
	Room    domain.Room
	Welcome domain.ChatMessage
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	id, err := s.identity(params.ConnId)
	if err != nil {
		return CreateRoomResponse{}, err
	}

	if strings.TrimSpace(params.RoomName) == "" {
		return CreateRoomResponse{}, ErrInvalidPayload
	}

	settings := domain.DefaultSettings()
	if params.Settings != nil {
		settings = *params.Settings
	}
	if settings.MaxMembers <= 0 || settings.MaxMembers > s.membersLimit {
		settings.MaxMembers = s.membersLimit
	}

	now := time.Now()
	rm := domain.Room{
		Name:        params.RoomName,
		Description: params.Description,
		HostId:      id.UserId,
		Members: []domain.Member{{
			Id:         id.UserId,
			Username:   id.Username,
			Role:       domain.RoleHost,
			JoinedAt:   now,
			LastActive: now,
		}},
		Board:        domain.NewBoardState(now),
		Settings:     settings,
		IsActive:     true,
		CreatedAt:    now,
		LastActivity: now,
	}

	// claim an unused id; insertion into the directory is atomic, so two
	// concurrent creators can never end up sharing one
	a := newAggregate(rm, s.undoDepth)
	for {
		a.room.Id = s.generator.GenerateRandomString(roomIdLength)
		if s.directory.insert(a.room.Id, a) {
			break
		}
	}

	if err := s.connRepo.Subscribe(params.ConnId, a.room.Id); err != nil {
		s.directory.remove(a.room.Id)
		return CreateRoomResponse{}, err
	}

	welcome := domain.ChatMessage{
		Id:        uuid.NewString(),
		RoomId:    a.room.Id,
		UserId:    id.UserId,
		Username:  "System",
		Message:   fmt.Sprintf("Welcome to %s! You are the host.", a.room.Name),
		Type:      domain.MessageTypeSystem,
		Timestamp: now,
	}

	a.mu.Lock()
	snapshot := a.snapshotRoomLocked()
	s.persistRoom(ctx, &a.room)
	a.mu.Unlock()

	s.persistChatMessage(ctx, &welcome)

	return CreateRoomResponse{
		Room:    snapshot,
		Welcome: welcome,
	}, nil
}

type JoinRoomParams struct {
	ConnId string
	RoomId string
}

type JoinRoomResponse struct {
	Room          domain.Room
	JoinedUser    connection.Identity
	AlreadyMember bool
	// Conns excludes the joiner; AllConns includes it.
	Conns         []*websocket.Conn
	AllConns      []*websocket.Conn
	ChatHistory   []domain.ChatMessage
	SystemMessage domain.ChatMessage
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	id, err := s.identity(params.ConnId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	a, err := s.getAggregate(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	now := time.Now()

	a.mu.Lock()
	if !a.room.IsActive {
		a.mu.Unlock()
		return JoinRoomResponse{}, ErrRoomNotFound
	}

	alreadyMember := false
	if member := a.memberLocked(id.UserId); member != nil {
		member.LastActive = now
		alreadyMember = true
	} else {
		if len(a.room.Members) >= a.room.Settings.MaxMembers {
			a.mu.Unlock()
			return JoinRoomResponse{}, ErrRoomFull
		}

		a.room.Members = append(a.room.Members, domain.Member{
			Id:         id.UserId,
			Username:   id.Username,
			Role:       domain.RoleGuest,
			JoinedAt:   now,
			LastActive: now,
		})
	}

	a.room.LastActivity = now
	snapshot := a.snapshotRoomLocked()
	s.persistRoom(ctx, &a.room)
	a.mu.Unlock()

	if err := s.connRepo.Subscribe(params.ConnId, params.RoomId); err != nil {
		// roll the membership back so a connection that died mid-join cannot
		// occupy a capacity slot or end up electable as host
		if !alreadyMember {
			a.mu.Lock()
			s.removeMemberLocked(ctx, a, id.UserId)
			a.mu.Unlock()
		}

		return JoinRoomResponse{}, err
	}

	history, err := s.roomRepo.GetChatHistory(ctx, params.RoomId, s.chatHistoryLimit)
	if err != nil {
		// history replay is best-effort; the join itself already committed
		s.logger.WarnContext(ctx, "failed to load chat history", "room_id", params.RoomId, "error", err)
		history = nil
	}

	systemMessage := domain.ChatMessage{
		Id:        uuid.NewString(),
		RoomId:    params.RoomId,
		UserId:    id.UserId,
		Username:  "System",
		Message:   fmt.Sprintf("%s joined the room", id.Username),
		Type:      domain.MessageTypeSystem,
		Timestamp: now,
	}
	s.persistChatMessage(ctx, &systemMessage)

	return JoinRoomResponse{
		Room:          snapshot,
		JoinedUser:    id,
		AlreadyMember: alreadyMember,
		Conns:         s.connRepo.GetRoomConns(params.RoomId, params.ConnId),
		AllConns:      s.connRepo.GetRoomConns(params.RoomId, ""),
		ChatHistory:   history,
		SystemMessage: systemMessage,
	}, nil
}

type RoomStateResponse struct {
	Room     domain.Room     `json:"room"`
	Presence []PresenceEntry `json:"presence"`
}

func (s service) GetRoomState(ctx context.Context, roomId string) (RoomStateResponse, error) {
	a, err := s.getAggregate(ctx, roomId)
	if err != nil {
		return RoomStateResponse{}, err
	}

	a.mu.Lock()
	snapshot := a.snapshotRoomLocked()
	a.mu.Unlock()

	return RoomStateResponse{
		Room:     snapshot,
		Presence: s.Presence(roomId),
	}, nil
}

func (s service) ListPublicRooms(ctx context.Context) ([]roomRepo.Listing, error) {
	listings, err := s.roomRepo.ListPublicActiveRooms(ctx, s.listingLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list public rooms", "error", err)
		return nil, err
	}

	return listings, nil
}
