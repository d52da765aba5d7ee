package tui

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"taskpilot/internal/model"
	"taskpilot/internal/store"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewOpen    = "open"
	viewDone    = "done"
	viewHistory = "history"
)

// UI is the interactive task browser. It holds the loaded slices and
// the cursor per pane; all mutations go through the store and are
// followed by a reload.
type UI struct {
	store *store.Store
	gui   *gocui.Gui

	window time.Duration
	filter model.Filter

	open    []model.Task
	done    []model.Task
	history []model.HistoryEntry

	selectedOpen int
	selectedDone int
	focus        string
	status       string
}

func Run(s *store.Store, window time.Duration) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return goerrors.Wrap(err, 0)
	}
	defer gui.Close()

	ui := &UI{
		store:  s,
		gui:    gui,
		window: window,
		focus:  viewOpen,
	}

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return goerrors.Wrap(err, 0)
	}
	if err := ui.loadTasks(); err != nil {
		return goerrors.Wrap(err, 0)
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return goerrors.Wrap(err, 0)
	}
	return nil
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	if err := gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'q', gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'r', gocui.ModNone, u.reload); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyTab, gocui.ModNone, u.switchFocus); err != nil {
		return err
	}
	for _, name := range []string{viewOpen, viewDone} {
		if err := gui.SetKeybinding(name, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'j', gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'k', gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'd', gocui.ModNone, u.deleteTask); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.KeyEnter, gocui.ModNone, u.showHistory); err != nil {
			return err
		}
	}
	return gui.SetKeybinding(viewOpen, 'x', gocui.ModNone, u.completeTask)
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Clear()
	fmt.Fprintf(headerView, "taskpilot | %d open, %d completed", len(u.open), len(u.done))

	footerY0 := maxY - 2
	if footerY0 < 1 {
		footerY0 = 1
	}
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, maxY-1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.Clear()
	if u.status != "" {
		fmt.Fprintln(footerView, u.status)
	}
	fmt.Fprint(footerView, "j/k move  tab switch  x complete  d delete  enter history  r reload  q quit")

	bodyBottom := footerY0 - 1
	if bodyBottom < 2 {
		return nil
	}
	leftX1 := maxX * 3 / 5
	if leftX1 < 10 {
		leftX1 = maxX - 1
	}

	openView, err := gui.SetView(viewOpen, 0, 1, leftX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	openView.Title = " Open "
	openView.Highlight = u.focus == viewOpen
	openView.SelBgColor = gocui.ColorBlue
	u.renderTasks(openView, u.open, u.selectedOpen)

	if leftX1 < maxX-2 {
		rightSplit := 1 + (bodyBottom-1)*2/3
		doneView, err := gui.SetView(viewDone, leftX1+1, 1, maxX-1, rightSplit, 0)
		if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		doneView.Title = " Completed "
		doneView.Highlight = u.focus == viewDone
		doneView.SelBgColor = gocui.ColorBlue
		u.renderTasks(doneView, u.done, u.selectedDone)

		historyView, err := gui.SetView(viewHistory, leftX1+1, rightSplit+1, maxX-1, bodyBottom, 0)
		if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		historyView.Title = " History "
		historyView.Clear()
		for _, entry := range u.history {
			fmt.Fprintln(historyView, formatHistoryLine(entry))
		}
	}

	if _, err := gui.SetCurrentView(u.focus); err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	return nil
}

func (u *UI) renderTasks(view *gocui.View, tasks []model.Task, selected int) {
	view.Clear()
	now := time.Now()
	for _, task := range tasks {
		fmt.Fprintln(view, formatTaskLine(task, now, u.window))
	}
	if len(tasks) > 0 {
		view.SetCursor(0, clampIndex(selected, len(tasks)))
	}
}

func (u *UI) loadTasks() error {
	tasks, err := u.store.ListTasks(context.Background(), u.filter, model.SortSpec{})
	if err != nil {
		return err
	}
	u.open, u.done = splitByStatus(tasks)
	u.selectedOpen = clampIndex(u.selectedOpen, len(u.open))
	u.selectedDone = clampIndex(u.selectedDone, len(u.done))
	return nil
}

func clampIndex(index, length int) int {
	if length == 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	if index < 0 {
		return 0
	}
	return index
}

func (u *UI) selectedTask() (model.Task, bool) {
	if u.focus == viewDone {
		if len(u.done) == 0 {
			return model.Task{}, false
		}
		return u.done[u.selectedDone], true
	}
	if len(u.open) == 0 {
		return model.Task{}, false
	}
	return u.open[u.selectedOpen], true
}

func (u *UI) quit(*gocui.Gui, *gocui.View) error {
	return gocui.ErrQuit
}

func (u *UI) reload(*gocui.Gui, *gocui.View) error {
	u.status = ""
	return u.loadTasks()
}

func (u *UI) switchFocus(*gocui.Gui, *gocui.View) error {
	if u.focus == viewOpen {
		u.focus = viewDone
	} else {
		u.focus = viewOpen
	}
	return nil
}

func (u *UI) moveDown(*gocui.Gui, *gocui.View) error {
	if u.focus == viewDone {
		u.selectedDone = clampIndex(u.selectedDone+1, len(u.done))
	} else {
		u.selectedOpen = clampIndex(u.selectedOpen+1, len(u.open))
	}
	return nil
}

func (u *UI) moveUp(*gocui.Gui, *gocui.View) error {
	if u.focus == viewDone {
		u.selectedDone = clampIndex(u.selectedDone-1, len(u.done))
	} else {
		u.selectedOpen = clampIndex(u.selectedOpen-1, len(u.open))
	}
	return nil
}

func (u *UI) completeTask(*gocui.Gui, *gocui.View) error {
	task, ok := u.selectedTask()
	if !ok {
		return nil
	}
	completed, spawned, err := u.store.CompleteTask(context.Background(), task.ID)
	if err != nil {
		u.status = err.Error()
		return nil
	}
	if spawned != nil {
		u.status = fmt.Sprintf("completed #%d, next instance #%d due %s",
			completed.ID, spawned.ID, spawned.DueDate.Format(model.DueDateLayout))
	} else {
		u.status = fmt.Sprintf("completed #%d", completed.ID)
	}
	return u.loadTasks()
}

func (u *UI) deleteTask(*gocui.Gui, *gocui.View) error {
	task, ok := u.selectedTask()
	if !ok {
		return nil
	}
	if err := u.store.DeleteTask(context.Background(), task.ID); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = fmt.Sprintf("deleted #%d", task.ID)
	u.history = nil
	return u.loadTasks()
}

func (u *UI) showHistory(*gocui.Gui, *gocui.View) error {
	task, ok := u.selectedTask()
	if !ok {
		return nil
	}
	entries, err := u.store.ListHistory(context.Background(), task.ID)
	if err != nil {
		u.status = err.Error()
		return nil
	}
	u.history = entries
	return nil
}
