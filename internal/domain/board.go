package domain

import "time"

// Element is an opaque client-supplied board element. The engine only cares
// about its id; rendering attributes pass through untouched.
type Element map[string]any

func (e Element) Id() string {
	id, _ := e["id"].(string)
	return id
}

type BoardState struct {
	Paths        map[string]Element `json:"paths"`
	Shapes       map[string]Element `json:"shapes"`
	Texts        map[string]Element `json:"texts"`
	Media        map[string]Element `json:"media"`
	Stickers     map[string]Element `json:"stickers"`
	Version      int64              `json:"version"`
	LastModified time.Time          `json:"lastModified"`
}

func NewBoardState(now time.Time) BoardState {
	return BoardState{
		Paths:        make(map[string]Element),
		Shapes:       make(map[string]Element),
		Texts:        make(map[string]Element),
		Media:        make(map[string]Element),
		Stickers:     make(map[string]Element),
		Version:      1,
		LastModified: now,
	}
}

// Clone copies the collections. Element payloads are treated as immutable
// once applied, so the per-element maps are shared.
func (b BoardState) Clone() BoardState {
	c := b
	c.Paths = cloneElements(b.Paths)
	c.Shapes = cloneElements(b.Shapes)
	c.Texts = cloneElements(b.Texts)
	c.Media = cloneElements(b.Media)
	c.Stickers = cloneElements(b.Stickers)

	return c
}

func cloneElements(src map[string]Element) map[string]Element {
	dst := make(map[string]Element, len(src))
	for id, e := range src {
		dst[id] = e
	}

	return dst
}

type MutationKind string

const (
	MutationDrawEnd       MutationKind = "draw-end"
	MutationDrawShape     MutationKind = "draw-shape"
	MutationAddText       MutationKind = "add-text"
	MutationAddMedia      MutationKind = "add-media"
	MutationRemoveMedia   MutationKind = "remove-media"
	MutationAddSticker    MutationKind = "add-sticker"
	MutationClearBoard    MutationKind = "clear-board"
	MutationApplyTemplate MutationKind = "apply-template"
)

// Destructive mutations get an undo snapshot of the pre-mutation board.
// Additive kinds are recoverable by removal and are not snapshotted.
func (k MutationKind) Destructive() bool {
	switch k {
	case MutationRemoveMedia, MutationClearBoard, MutationApplyTemplate:
		return true
	}

	return false
}

// Privileged mutations require the host or a moderator.
func (k MutationKind) Privileged() bool {
	switch k {
	case MutationClearBoard, MutationApplyTemplate:
		return true
	}

	return false
}

// TemplateElement is one pre-made element of a board template.
type TemplateElement struct {
	Type     string         `json:"type"`
	Data     map[string]any `json:"data"`
	Position Position       `json:"position"`
	Size     map[string]any `json:"size,omitempty"`
}

type Template struct {
	Id       string            `json:"id"`
	Name     string            `json:"name"`
	Elements []TemplateElement `json:"elements"`
}

// Snapshot is a full copy of the board content captured before a destructive
// mutation. The undo stack itself is never part of a snapshot.
type Snapshot struct {
	Board       BoardState `json:"board"`
	Description string     `json:"description"`
	TakenBy     string     `json:"takenBy"`
	TakenAt     time.Time  `json:"takenAt"`
}
