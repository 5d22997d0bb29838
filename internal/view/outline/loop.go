package outline

import (
	"context"

	"github.com/gdamore/tcell/v2"
)

// Loop runs the outline on a terminal screen. All document access happens
// on the goroutine that calls Run; other goroutines hand work to it with
// Post.
type Loop struct {
	screen tcell.Screen
	view   *View
	posted chan func()
}

// NewLoop creates a loop drawing view on screen. The screen must be
// initialized.
func NewLoop(screen tcell.Screen, view *View) *Loop {
	return &Loop{
		screen: screen,
		view:   view,
		posted: make(chan func(), 16),
	}
}

// Post schedules fn to run on the loop goroutine. It returns false if the
// queue is full.
func (l *Loop) Post(fn func()) bool {
	select {
	case l.posted <- fn:
		return true
	default:
		return false
	}
}

// Run processes events until the user quits, the document is closed or ctx
// is done.
func (l *Loop) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := l.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	l.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.posted:
			fn()
		case ev := <-events:
			if l.handle(ev) == ActionQuit {
				return nil
			}
		}
		if l.view.Dead() {
			return nil
		}
		l.draw()
	}
}

func (l *Loop) handle(ev tcell.Event) Action {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return l.view.HandleKey(e)
	case *tcell.EventResize:
		l.screen.Sync()
		l.view.dirty = true
	}
	return ActionNone
}

func (l *Loop) draw() {
	if !l.view.Dirty() {
		return
	}
	l.view.Render(l.screen)
	l.screen.Show()
}
