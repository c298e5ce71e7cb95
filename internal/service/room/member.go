package room

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/inkboard/server/internal/domain"
	"github.com/inkboard/server/internal/repository/connection"
)

// electHostLocked promotes the surviving member with the earliest joinedAt;
// ties resolve to the lowest index, which is join order. Callers hold a.mu
// and guarantee at least one member remains.
func (a *aggregate) electHostLocked() domain.Member {
	successor := 0
	for i := 1; i < len(a.room.Members); i++ {
		if a.room.Members[i].JoinedAt.Before(a.room.Members[successor].JoinedAt) {
			successor = i
		}
	}

	a.room.Members[successor].Role = domain.RoleHost
	a.room.HostId = a.room.Members[successor].Id

	return a.room.Members[successor]
}

// removeMemberLocked takes one member out of the room and runs the follow-up
// transitions: host migration when the host left and members remain, or
// deactivation and disposal when the room emptied. Callers hold a.mu.
func (s service) removeMemberLocked(ctx context.Context, a *aggregate, userId string) (hostChanged *domain.Member, roomDeleted bool) {
	wasHost := a.room.HostId == userId
	if !a.room.RemoveMember(userId) {
		return nil, false
	}

	s.presence.Purge(a.room.Id, userId)
	a.room.LastActivity = time.Now()

	if len(a.room.Members) == 0 {
		a.room.IsActive = false
		s.directory.remove(a.room.Id)
		s.presence.Drop(a.room.Id)
		s.persistRoom(ctx, &a.room)

		return nil, true
	}

	if wasHost {
		successor := a.electHostLocked()
		hostChanged = &successor
	}

	s.persistRoom(ctx, &a.room)

	return hostChanged, false
}

type LeaveRoomParams struct {
	ConnId string
	RoomId string
}

type LeaveRoomResponse struct {
	Conns         []*websocket.Conn
	LeftUser      connection.Identity
	HostChanged   *domain.Member
	IsRoomDeleted bool
}

func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	id, err := s.identity(params.ConnId)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	a, err := s.getAggregate(ctx, params.RoomId)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	s.connRepo.Unsubscribe(params.ConnId, params.RoomId)

	a.mu.Lock()
	hostChanged, roomDeleted := s.removeMemberLocked(ctx, a, id.UserId)
	a.mu.Unlock()

	return LeaveRoomResponse{
		Conns:         s.connRepo.GetRoomConns(params.RoomId, params.ConnId),
		LeftUser:      id,
		HostChanged:   hostChanged,
		IsRoomDeleted: roomDeleted,
	}, nil
}

type DisconnectParams struct {
	ConnId string
}

// RoomCleanup describes what one room needs broadcast after a disconnect.
type RoomCleanup struct {
	RoomId        string
	Conns         []*websocket.Conn
	HostChanged   *domain.Member
	IsRoomDeleted bool
}

type DisconnectResponse struct {
	User  connection.Identity
	Rooms []RoomCleanup
}

// Disconnect runs the full cleanup cascade for a dropped connection:
// registry removal, membership removal, presence purge, and host migration,
// scoped to exactly the rooms that connection had joined. It is idempotent.
func (s service) Disconnect(ctx context.Context, params *DisconnectParams) (DisconnectResponse, error) {
	id, roomIds := s.connRepo.Remove(params.ConnId)
	if id.UserId == "" {
		// never authenticated, nothing to clean up
		return DisconnectResponse{}, nil
	}

	cleanups := make([]RoomCleanup, 0, len(roomIds))
	for _, roomId := range roomIds {
		a, ok := s.directory.get(roomId)
		if !ok {
			continue
		}

		a.mu.Lock()
		hostChanged, roomDeleted := s.removeMemberLocked(ctx, a, id.UserId)
		a.mu.Unlock()

		cleanups = append(cleanups, RoomCleanup{
			RoomId:        roomId,
			Conns:         s.connRepo.GetRoomConns(roomId, ""),
			HostChanged:   hostChanged,
			IsRoomDeleted: roomDeleted,
		})
	}

	s.persistUser(ctx, &domain.User{
		Id:         id.UserId,
		Username:   id.Username,
		LastActive: time.Now(),
	})

	return DisconnectResponse{User: id, Rooms: cleanups}, nil
}

type PromoteMemberParams struct {
	ConnId   string
	RoomId   string
	MemberId string
}

type PromoteMemberResponse struct {
	Conns          []*websocket.Conn
	PromotedMember domain.Member
}

// PromoteMember raises a guest to moderator. Only the host may do it.
func (s service) PromoteMember(ctx context.Context, params *PromoteMemberParams) (PromoteMemberResponse, error) {
	id, err := s.identity(params.ConnId)
	if err != nil {
		return PromoteMemberResponse{}, err
	}

	a, err := s.getAggregate(ctx, params.RoomId)
	if err != nil {
		return PromoteMemberResponse{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireRoleLocked(id.UserId, domain.RoleHost); err != nil {
		return PromoteMemberResponse{}, err
	}

	member := a.memberLocked(params.MemberId)
	if member == nil {
		return PromoteMemberResponse{}, ErrMemberNotFound
	}
	if member.Role != domain.RoleGuest {
		return PromoteMemberResponse{}, ErrPermissionDenied
	}

	member.Role = domain.RoleModerator
	a.room.LastActivity = time.Now()
	s.persistRoom(ctx, &a.room)

	return PromoteMemberResponse{
		Conns:          s.connRepo.GetRoomConns(params.RoomId, ""),
		PromotedMember: *member,
	}, nil
}

type UpdateSettingsParams struct {
	ConnId   string
	RoomId   string
	Settings domain.Settings
}

type UpdateSettingsResponse struct {
	Conns    []*websocket.Conn
	Settings domain.Settings
}

func (s service) UpdateSettings(ctx context.Context, params *UpdateSettingsParams) (UpdateSettingsResponse, error) {
	id, err := s.identity(params.ConnId)
	if err != nil {
		return UpdateSettingsResponse{}, err
	}

	a, err := s.getAggregate(ctx, params.RoomId)
	if err != nil {
		return UpdateSettingsResponse{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireRoleLocked(id.UserId, domain.RoleHost, domain.RoleModerator); err != nil {
		return UpdateSettingsResponse{}, err
	}

	settings := params.Settings
	if settings.MaxMembers <= 0 || settings.MaxMembers > s.membersLimit {
		settings.MaxMembers = s.membersLimit
	}
	// shrinking below the current membership would break the capacity
	// invariant for members already present
	if settings.MaxMembers < len(a.room.Members) {
		return UpdateSettingsResponse{}, ErrInvalidSettings
	}

	a.room.Settings = settings
	a.room.LastActivity = time.Now()
	s.persistRoom(ctx, &a.room)

	return UpdateSettingsResponse{
		Conns:    s.connRepo.GetRoomConns(params.RoomId, ""),
		Settings: settings,
	}, nil
}
