package boardui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/board"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

const (
	noticeTTL      = 4 * time.Second
	refreshTimeout = 15 * time.Second
)

var sortCycle = []board.SortKey{board.SortRecent, board.SortCompany, board.SortTitle}

type outcomeMsg board.Outcome

type refreshedMsg struct{ count int }

type clearNoticeMsg struct{ seq int }

// Options configures a board Model.
type Options struct {
	Logger  *slog.Logger
	Metrics *board.Metrics
	Sort    board.SortKey
	Timeout time.Duration
}

// Model is the bubbletea model for the kanban board. The store,
// controller and engine are shared pointers, so copies of Model made by
// bubbletea all drive the same board.
type Model struct {
	store      *board.Store
	controller *board.Controller
	engine     *board.Engine
	loader     *board.Loader
	outcomes   chan board.Outcome

	keys    KeyMap
	sortKey board.SortKey
	search  string

	filtering bool
	loading   bool

	column int
	row    int

	notice    string
	noticeSeq int

	width  int
	height int
}

// NewModel builds a board backed by client.
func NewModel(client board.JobsClient, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = board.DefaultCommitTimeout
	}

	store := board.NewStore()
	outcomes := make(chan board.Outcome, 64)
	engine := board.NewEngine(store, client,
		board.WithLogger(logger),
		board.WithMetrics(opts.Metrics),
		board.WithCommitTimeout(timeout),
		board.WithNotifier(func(o board.Outcome) { outcomes <- o }),
	)

	return Model{
		store:      store,
		controller: board.NewController(store, engine),
		engine:     engine,
		loader:     board.NewLoader(client, store, logger),
		outcomes:   outcomes,
		keys:       DefaultKeyMap,
		sortKey:    board.ParseSortKey(string(opts.Sort)),
		loading:    true,
	}
}

func (model Model) Init() tea.Cmd {
	return tea.Batch(model.refreshCmd(), model.waitForOutcome())
}

func (model Model) refreshCmd() tea.Cmd {
	loader := model.loader
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return refreshedMsg{count: loader.Refresh(ctx)}
	}
}

func (model Model) waitForOutcome() tea.Cmd {
	ch := model.outcomes
	return func() tea.Msg {
		return outcomeMsg(<-ch)
	}
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		return model, nil

	case refreshedMsg:
		model.loading = false
		model.clampCursor()
		return model, nil

	case outcomeMsg:
		out := board.Outcome(message)
		model.clampCursor()
		cmds := []tea.Cmd{model.waitForOutcome()}
		if out.Failed() {
			title := fmt.Sprintf("job %d", out.RecordID)
			if rec, ok := model.store.Get(out.RecordID); ok && rec.PositionTitle != "" {
				title = rec.PositionTitle
			}
			msg := fmt.Sprintf("Could not move %s to %s: %v", title, out.To.Label(), out.Err)
			if out.RolledBack {
				msg += " (reverted)"
			}
			cmds = append(cmds, model.setNotice(msg))
		}
		return model, tea.Batch(cmds...)

	case clearNoticeMsg:
		if message.seq == model.noticeSeq {
			model.notice = ""
		}
		return model, nil

	case tea.KeyMsg:
		if model.filtering {
			return model.handleFilterKeys(message)
		}
		return model.handleBoardKeys(message)
	}
	return model, nil
}

func (model Model) handleBoardKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Cancel):
		model.controller.Cancel()
		return model, nil

	case key.Matches(message, model.keys.Grab):
		return model.grabOrDrop()

	case key.Matches(message, model.keys.Left):
		model.moveColumn(-1)
	case key.Matches(message, model.keys.Right):
		model.moveColumn(1)
	case key.Matches(message, model.keys.Up):
		model.moveRow(-1)
	case key.Matches(message, model.keys.Down):
		model.moveRow(1)

	case key.Matches(message, model.keys.FilterActivate):
		model.filtering = true
		return model, nil

	case key.Matches(message, model.keys.CycleSort):
		model.sortKey = nextSort(model.sortKey)
		model.clampCursor()
		return model, nil

	case key.Matches(message, model.keys.Refresh):
		if model.controller.State() != board.Idle {
			return model, nil
		}
		model.loading = true
		return model, model.refreshCmd()
	}

	if model.controller.State() != board.Idle {
		model.controller.DragOver(model.cursorTarget())
	}
	return model, nil
}

func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit
	case tea.KeyEsc:
		model.search = ""
		model.filtering = false
	case tea.KeyEnter:
		model.filtering = false
	case tea.KeyBackspace:
		if r := []rune(model.search); len(r) > 0 {
			model.search = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		model.search += string(message.Runes)
	}
	model.row = 0
	model.clampCursor()
	return model, nil
}

// grabOrDrop lifts the focused card, or drops the lifted one on the
// element under the cursor.
func (model Model) grabOrDrop() (tea.Model, tea.Cmd) {
	if model.controller.State() == board.Idle {
		if rec, ok := model.focused(); ok {
			model.controller.DragStart(rec.ID)
			model.controller.DragOver(model.cursorTarget())
		}
		return model, nil
	}

	move, ok := model.controller.DragEnd(model.cursorTarget())
	if !ok {
		return model, nil
	}
	model.focusRecord(move.RecordID)
	title := fmt.Sprintf("job %d", move.RecordID)
	if rec, found := model.store.Get(move.RecordID); found && rec.PositionTitle != "" {
		title = rec.PositionTitle
	}
	cmd := model.setNotice(fmt.Sprintf("Moved %s to %s", title, move.To.Label()))
	return model, cmd
}

func (model *Model) setNotice(text string) tea.Cmd {
	model.noticeSeq++
	model.notice = text
	seq := model.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

func (model Model) columns() board.Columns {
	return model.store.ByStatus(model.search, model.sortKey)
}

func (model Model) focusedStatus() models.ApplicationStatus {
	return models.Statuses()[model.column]
}

func (model Model) focused() (board.Record, bool) {
	cards := model.columns()[model.focusedStatus()]
	if model.row < len(cards) {
		return cards[model.row], true
	}
	return board.Record{}, false
}

// cursorTarget is what the cursor points at: the focused card, or its
// column when the column is empty or the card is the one being dragged.
func (model Model) cursorTarget() board.DropTarget {
	rec, ok := model.focused()
	active, dragging := model.controller.Active()
	if !ok || (dragging && rec.ID == active) {
		return board.ColumnTarget(model.focusedStatus())
	}
	return board.RecordTarget(rec.ID)
}

func (model *Model) moveColumn(delta int) {
	n := len(models.Statuses())
	model.column = (model.column + delta + n) % n
	model.clampCursor()
}

func (model *Model) moveRow(delta int) {
	model.row += delta
	model.clampCursor()
}

func (model *Model) clampCursor() {
	cards := len(model.columns()[model.focusedStatus()])
	if model.row >= cards {
		model.row = cards - 1
	}
	if model.row < 0 {
		model.row = 0
	}
}

func (model *Model) focusRecord(id int64) {
	cols := model.columns()
	for ci, st := range models.Statuses() {
		for ri, rec := range cols[st] {
			if rec.ID == id {
				model.column, model.row = ci, ri
				return
			}
		}
	}
}

func nextSort(cur board.SortKey) board.SortKey {
	for i, k := range sortCycle {
		if k == cur {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return board.SortRecent
}
