package tray

import (
	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"yabaitray/pkg/yabai"
)

// Controller is what the tray needs from the sync engine.
type Controller interface {
	Current() yabai.Layout
	Toggle() error
}

var (
	ctrl    Controller
	updates <-chan yabai.Layout
	log     *zap.SugaredLogger
	onExit  func()

	toggleItem *systray.MenuItem
	quitItem   *systray.MenuItem
)

// Run starts the system tray. This blocks the calling goroutine (must
// be main). onExitFn is called when the tray exits (cleanup here).
func Run(c Controller, ch <-chan yabai.Layout, logger *zap.SugaredLogger, onExitFn func()) {
	ctrl = c
	updates = ch
	log = logger
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	render(ctrl.Current())

	toggleItem = systray.AddMenuItem("Toggle layout", "Switch between float and bsp")
	systray.AddSeparator()
	quitItem = systray.AddMenuItem("Quit", "Shut down yabaitray")

	go handleEvents()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleEvents() {
	for {
		select {
		case layout := <-updates:
			render(layout)

		case <-toggleItem.ClickedCh:
			if err := ctrl.Toggle(); err != nil {
				log.Errorw("toggle layout", "error", err)
				systray.SetTooltip("Toggle failed: " + err.Error())
			}

		case <-quitItem.ClickedCh:
			systray.Quit()
		}
	}
}

func render(layout yabai.Layout) {
	icon := iconFor(layout)
	systray.SetTemplateIcon(icon, icon)
	systray.SetTooltip(tooltipFor(layout))
}

func iconFor(layout yabai.Layout) []byte {
	if layout == yabai.LayoutBsp {
		return bspIcon
	}
	return floatIcon
}

func tooltipFor(layout yabai.Layout) string {
	if layout == yabai.LayoutBsp {
		return "BSP"
	}
	return "Float"
}
