package board

import (
	"strconv"
	"strings"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

// recordTargetPrefix is how cards are identified in drop target ids.
const recordTargetPrefix = "job-"

type targetKind uint8

const (
	targetNone targetKind = iota
	targetColumn
	targetRecord
)

// DropTarget is what a card was released over: a column or another card.
// The zero value is no target.
type DropTarget struct {
	kind     targetKind
	status   models.ApplicationStatus
	recordID int64
}

func ColumnTarget(status models.ApplicationStatus) DropTarget {
	return DropTarget{kind: targetColumn, status: status}
}

func RecordTarget(id int64) DropTarget {
	return DropTarget{kind: targetRecord, recordID: id}
}

// ParseDropTarget converts a UI element id into a DropTarget. A canonical
// status literal is a column; "job-<id>" is a card. Anything else yields
// the zero DropTarget.
func ParseDropTarget(raw string) DropTarget {
	if status, ok := models.ParseStatus(raw); ok {
		return ColumnTarget(status)
	}
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), recordTargetPrefix)
	if !ok {
		return DropTarget{}
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return DropTarget{}
	}
	return RecordTarget(id)
}

func (t DropTarget) IsZero() bool { return t.kind == targetNone }

func (t DropTarget) String() string {
	switch t.kind {
	case targetColumn:
		return string(t.status)
	case targetRecord:
		return recordTargetPrefix + strconv.FormatInt(t.recordID, 10)
	}
	return ""
}

// DragState is the phase of the drag session.
type DragState uint8

const (
	Idle DragState = iota
	Dragging
	HoveringTarget
)

func (s DragState) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case HoveringTarget:
		return "hovering"
	}
	return "idle"
}

// Committer receives a resolved move when a drag ends on a new column.
type Committer interface {
	Commit(recordID int64, status models.ApplicationStatus) bool
}

// Move is a drop that changed a card's column.
type Move struct {
	RecordID int64
	From     models.ApplicationStatus
	To       models.ApplicationStatus
}

// Controller tracks one drag gesture at a time. It reads the store to
// resolve ids and never writes to it. Not safe for concurrent use; drive
// it from the UI loop.
type Controller struct {
	store     *Store
	committer Committer

	state  DragState
	active int64
	hover  models.ApplicationStatus
}

func NewController(store *Store, committer Committer) *Controller {
	return &Controller{store: store, committer: committer}
}

func (c *Controller) State() DragState { return c.state }

// Active returns the lifted record id, if a drag is in progress.
func (c *Controller) Active() (int64, bool) {
	return c.active, c.state != Idle
}

// HoverStatus is the column currently under the dragged card.
func (c *Controller) HoverStatus() (models.ApplicationStatus, bool) {
	return c.hover, c.state == HoveringTarget
}

// DragStart lifts a card. Unknown ids are ignored.
func (c *Controller) DragStart(recordID int64) {
	if _, ok := c.store.Get(recordID); !ok {
		return
	}
	c.state = Dragging
	c.active = recordID
	c.hover = ""
}

// DragOver updates the hover column from the element under the card.
func (c *Controller) DragOver(target DropTarget) {
	if c.state == Idle {
		return
	}
	if status, ok := c.resolve(target); ok {
		c.state = HoveringTarget
		c.hover = status
		return
	}
	c.state = Dragging
	c.hover = ""
}

// DragEnd finishes the gesture. When the target resolves to a column other
// than the card's current one the move is handed to the committer; the
// controller is back to Idle before the move is persisted.
func (c *Controller) DragEnd(target DropTarget) (Move, bool) {
	if c.state == Idle {
		return Move{}, false
	}
	id := c.active
	c.reset()

	to, ok := c.resolve(target)
	if !ok {
		return Move{}, false
	}
	rec, ok := c.store.Get(id)
	if !ok || rec.Status == to {
		return Move{}, false
	}

	move := Move{RecordID: id, From: rec.Status, To: to}
	if c.committer != nil {
		c.committer.Commit(id, to)
	}
	return move, true
}

// Cancel abandons the gesture without side effects.
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) reset() {
	c.state = Idle
	c.active = 0
	c.hover = ""
}

// resolve turns a target into a status. A column resolves to itself; a
// card resolves to that card's current status.
func (c *Controller) resolve(target DropTarget) (models.ApplicationStatus, bool) {
	switch target.kind {
	case targetColumn:
		return target.status, target.status.Valid()
	case targetRecord:
		rec, ok := c.store.Get(target.recordID)
		if !ok {
			return "", false
		}
		return rec.Status, true
	}
	return "", false
}
