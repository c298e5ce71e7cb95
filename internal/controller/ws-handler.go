package controller

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/inkboard/server/internal/domain"
	"github.com/inkboard/server/internal/service/room"
	"github.com/inkboard/server/pkg/wsrouter"
)

type AuthenticateInput struct {
	Token string `json:"token" validate:"required"`
}

func (c *controller) handleAuthenticate(ctx context.Context, conn *websocket.Conn, input AuthenticateInput) error {
	resp, err := c.roomService.Authenticate(ctx, &room.AuthenticateParams{
		ConnId: c.getConnIdFromCtx(ctx),
		Token:  input.Token,
	})
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	c.writeToConn(ctx, conn, &Output{
		Type:    "authenticated",
		Payload: map[string]any{"user": resp.User},
	})

	return nil
}

type CreateRoomInput struct {
	Name        string           `json:"name" validate:"required,max=64"`
	Description string           `json:"description" validate:"max=256"`
	Settings    *domain.Settings `json:"settings"`
}

func (c *controller) handleCreateRoom(ctx context.Context, conn *websocket.Conn, input CreateRoomInput) error {
	resp, err := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		ConnId:      c.getConnIdFromCtx(ctx),
		RoomName:    input.Name,
		Description: input.Description,
		Settings:    input.Settings,
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	c.writeToConn(ctx, conn, &Output{
		Type:    "room-created",
		Payload: map[string]any{"room": resp.Room},
	})
	c.writeToConn(ctx, conn, &Output{
		Type:    "chat-message",
		Payload: map[string]any{"message": resp.Welcome},
	})

	return nil
}

type JoinRoomInput struct {
	RoomId string `json:"roomId" validate:"required"`
}

func (c *controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, input JoinRoomInput) error {
	resp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	c.writeToConn(ctx, conn, &Output{
		Type:    "joined-room",
		Payload: map[string]any{"room": resp.Room},
	})
	c.writeToConn(ctx, conn, &Output{
		Type:    "chat-history",
		Payload: map[string]any{"messages": resp.ChatHistory},
	})

	if !resp.AlreadyMember {
		c.broadcast(ctx, resp.Conns, &Output{
			Type: "user-joined",
			Payload: map[string]any{
				"userId":   resp.JoinedUser.UserId,
				"username": resp.JoinedUser.Username,
				"members":  resp.Room.Members,
			},
		})
		c.broadcast(ctx, resp.AllConns, &Output{
			Type:    "chat-message",
			Payload: map[string]any{"message": resp.SystemMessage},
		})
	}

	return nil
}

type LeaveRoomInput struct {
	RoomId string `json:"roomId" validate:"required"`
}

func (c *controller) handleLeaveRoom(ctx context.Context, conn *websocket.Conn, input LeaveRoomInput) error {
	resp, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	c.writeToConn(ctx, conn, &Output{
		Type:    "left-room",
		Payload: map[string]any{"roomId": input.RoomId},
	})

	if !resp.IsRoomDeleted {
		c.broadcast(ctx, resp.Conns, &Output{
			Type: "user-left",
			Payload: map[string]any{
				"userId":   resp.LeftUser.UserId,
				"username": resp.LeftUser.Username,
			},
		})

		if resp.HostChanged != nil {
			c.broadcast(ctx, resp.Conns, &Output{
				Type:    "host-changed",
				Payload: map[string]any{"newHost": resp.HostChanged},
			})
		}
	}

	return nil
}

type DrawRelayInput struct {
	RoomId string         `json:"roomId" validate:"required"`
	Data   map[string]any `json:"data"`
}

// relayDrawEvent forwards a transient drawing event under its original type
// without touching board state.
func (c *controller) relayDrawEvent(ctx context.Context, input DrawRelayInput) error {
	resp, err := c.roomService.Relay(ctx, &room.RelayParams{
		ConnId:  c.getConnIdFromCtx(ctx),
		RoomId:  input.RoomId,
		Payload: input.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to relay draw event: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    wsrouter.GetMessageTypeFromCtx(ctx),
		Payload: resp.Payload,
	})

	return nil
}

func (c *controller) handleDrawStart(ctx context.Context, conn *websocket.Conn, input DrawRelayInput) error {
	return c.relayDrawEvent(ctx, input)
}

func (c *controller) handleDrawMove(ctx context.Context, conn *websocket.Conn, input DrawRelayInput) error {
	return c.relayDrawEvent(ctx, input)
}

type ElementMutationInput struct {
	RoomId  string         `json:"roomId" validate:"required"`
	Element domain.Element `json:"element" validate:"required"`
}

// applyElementMutation commits one element-carrying mutation and relays it to
// the rest of the room under its original event type.
func (c *controller) applyElementMutation(ctx context.Context, kind domain.MutationKind, input ElementMutationInput) error {
	resp, err := c.roomService.ApplyMutation(ctx, &room.ApplyMutationParams{
		ConnId:  c.getConnIdFromCtx(ctx),
		RoomId:  input.RoomId,
		Kind:    kind,
		Element: input.Element,
	})
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", kind, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type: string(kind),
		Payload: map[string]any{
			"element": resp.Element,
			"version": resp.Version,
		},
	})

	return nil
}

func (c *controller) handleDrawEnd(ctx context.Context, conn *websocket.Conn, input ElementMutationInput) error {
	return c.applyElementMutation(ctx, domain.MutationDrawEnd, input)
}

func (c *controller) handleDrawShape(ctx context.Context, conn *websocket.Conn, input ElementMutationInput) error {
	return c.applyElementMutation(ctx, domain.MutationDrawShape, input)
}

func (c *controller) handleAddText(ctx context.Context, conn *websocket.Conn, input ElementMutationInput) error {
	return c.applyElementMutation(ctx, domain.MutationAddText, input)
}

func (c *controller) handleAddMedia(ctx context.Context, conn *websocket.Conn, input ElementMutationInput) error {
	return c.applyElementMutation(ctx, domain.MutationAddMedia, input)
}

func (c *controller) handleAddSticker(ctx context.Context, conn *websocket.Conn, input ElementMutationInput) error {
	return c.applyElementMutation(ctx, domain.MutationAddSticker, input)
}

type RemoveMediaInput struct {
	RoomId  string `json:"roomId" validate:"required"`
	MediaId string `json:"mediaId" validate:"required"`
}

func (c *controller) handleRemoveMedia(ctx context.Context, conn *websocket.Conn, input RemoveMediaInput) error {
	resp, err := c.roomService.ApplyMutation(ctx, &room.ApplyMutationParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		Kind:     domain.MutationRemoveMedia,
		TargetId: input.MediaId,
	})
	if err != nil {
		return fmt.Errorf("failed to remove media: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type: "remove-media",
		Payload: map[string]any{
			"mediaId": input.MediaId,
			"version": resp.Version,
		},
	})

	return nil
}

type ClearBoardInput struct {
	RoomId string `json:"roomId" validate:"required"`
}

func (c *controller) handleClearBoard(ctx context.Context, conn *websocket.Conn, input ClearBoardInput) error {
	resp, err := c.roomService.ApplyMutation(ctx, &room.ApplyMutationParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
		Kind:   domain.MutationClearBoard,
	})
	if err != nil {
		return fmt.Errorf("failed to clear board: %w", err)
	}

	// everyone sees the cleared board, including whoever cleared it
	c.broadcast(ctx, resp.AllConns, &Output{
		Type:    "board-cleared",
		Payload: map[string]any{"version": resp.Version},
	})

	return nil
}

type ApplyTemplateInput struct {
	RoomId   string           `json:"roomId" validate:"required"`
	Template *domain.Template `json:"template" validate:"required"`
}

func (c *controller) handleApplyTemplate(ctx context.Context, conn *websocket.Conn, input ApplyTemplateInput) error {
	resp, err := c.roomService.ApplyMutation(ctx, &room.ApplyMutationParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		Kind:     domain.MutationApplyTemplate,
		Template: input.Template,
	})
	if err != nil {
		return fmt.Errorf("failed to apply template: %w", err)
	}

	c.broadcast(ctx, resp.AllConns, &Output{
		Type:    "board-state",
		Payload: map[string]any{"boardData": resp.Board},
	})

	return nil
}

type UndoInput struct {
	RoomId string `json:"roomId" validate:"required"`
}

func (c *controller) handleUndo(ctx context.Context, conn *websocket.Conn, input UndoInput) error {
	resp, err := c.roomService.Undo(ctx, &room.UndoParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to undo: %w", err)
	}

	if resp.Nothing {
		c.writeToConn(ctx, conn, &Output{
			Type:    "nothing-to-undo",
			Payload: map[string]any{"version": resp.Version},
		})
		return nil
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "board-state",
		Payload: map[string]any{"boardData": resp.Board},
	})

	return nil
}

func (c *controller) handleRedo(ctx context.Context, conn *websocket.Conn, input UndoInput) error {
	resp, err := c.roomService.Redo(ctx, &room.RedoParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to redo: %w", err)
	}

	if resp.Nothing {
		c.writeToConn(ctx, conn, &Output{
			Type:    "nothing-to-redo",
			Payload: map[string]any{"version": resp.Version},
		})
		return nil
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "board-state",
		Payload: map[string]any{"boardData": resp.Board},
	})

	return nil
}

type ChatMessageInput struct {
	RoomId      string   `json:"roomId" validate:"required"`
	Message     string   `json:"message" validate:"required,max=2000"`
	Attachments []string `json:"attachments"`
	ReplyTo     string   `json:"replyTo"`
}

func (c *controller) handleChatMessage(ctx context.Context, conn *websocket.Conn, input ChatMessageInput) error {
	resp, err := c.roomService.SendChatMessage(ctx, &room.SendChatMessageParams{
		ConnId:      c.getConnIdFromCtx(ctx),
		RoomId:      input.RoomId,
		Message:     input.Message,
		Attachments: input.Attachments,
		ReplyTo:     input.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "chat-message",
		Payload: map[string]any{"message": resp.Message},
	})

	return nil
}

type CursorMoveInput struct {
	RoomId   string          `json:"roomId" validate:"required"`
	Position domain.Position `json:"position"`
	Tool     string          `json:"tool"`
	Color    string          `json:"color"`
}

func (c *controller) handleCursorMove(ctx context.Context, conn *websocket.Conn, input CursorMoveInput) error {
	resp, err := c.roomService.CursorMove(ctx, &room.CursorMoveParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		Position: input.Position,
		Tool:     input.Tool,
		Color:    input.Color,
	})
	if err != nil {
		return fmt.Errorf("failed to move cursor: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "cursor-move",
		Payload: map[string]any{"cursor": resp.Cursor},
	})

	return nil
}

type UpdateSettingsInput struct {
	RoomId   string          `json:"roomId" validate:"required"`
	Settings domain.Settings `json:"settings"`
}

func (c *controller) handleUpdateSettings(ctx context.Context, conn *websocket.Conn, input UpdateSettingsInput) error {
	resp, err := c.roomService.UpdateSettings(ctx, &room.UpdateSettingsParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		Settings: input.Settings,
	})
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "settings-updated",
		Payload: map[string]any{"settings": resp.Settings},
	})

	return nil
}

type PromoteMemberInput struct {
	RoomId   string `json:"roomId" validate:"required"`
	MemberId string `json:"memberId" validate:"required"`
}

func (c *controller) handlePromoteMember(ctx context.Context, conn *websocket.Conn, input PromoteMemberInput) error {
	resp, err := c.roomService.PromoteMember(ctx, &room.PromoteMemberParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		MemberId: input.MemberId,
	})
	if err != nil {
		return fmt.Errorf("failed to promote member: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "member-promoted",
		Payload: map[string]any{"member": resp.PromotedMember},
	})

	return nil
}

type RecordingInput struct {
	RoomId string `json:"roomId" validate:"required"`
}

func (c *controller) handleStartRecording(ctx context.Context, conn *websocket.Conn, input RecordingInput) error {
	resp, err := c.roomService.StartRecording(ctx, &room.RecordingParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "recording-started",
		Payload: map[string]any{"recording": resp.Recording},
	})

	return nil
}

func (c *controller) handleStopRecording(ctx context.Context, conn *websocket.Conn, input RecordingInput) error {
	resp, err := c.roomService.StopRecording(ctx, &room.RecordingParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to stop recording: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "recording-stopped",
		Payload: map[string]any{"recording": resp.Recording},
	})

	return nil
}
