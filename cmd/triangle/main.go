// Command triangle opens a window and draws a triangle with the vkrender
// backend until the window is closed or Escape is pressed.
package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/pkg/errors"

	"github.com/andewx/vkrender"
	"github.com/andewx/vkrender/event"
	"github.com/andewx/vkrender/input"
	"github.com/andewx/vkrender/memory"
	"github.com/andewx/vkrender/window"
)

var args struct {
	debug  bool
	config string
	width  int
	height int
	logDir string
}

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()

	flag.BoolVar(&args.debug, "debug", false, "enable validation layers and debug logging")
	flag.StringVar(&args.config, "config", "", "JSON file overriding the default config")
	flag.IntVar(&args.width, "width", 800, "window width")
	flag.IntVar(&args.height, "height", 600, "window height")
	flag.StringVar(&args.logDir, "logdir", "", "write leveled log files to this directory")
}

func main() {
	flag.Parse()

	logger := vkrender.NewLogger(os.Stderr)
	cfg := vkrender.DefaultConfig()
	if args.config != "" {
		var err error
		cfg, err = vkrender.LoadConfig(args.config)
		logger.Fatal(err)
	}
	if args.logDir != "" {
		cfg.LogDir = args.logDir
	}
	if cfg.LogDir != "" {
		fileLogger, err := vkrender.NewFileLogger(cfg.LogDir)
		logger.Fatal(err)
		logger = fileLogger
	}
	if args.debug {
		cfg.Validation = true
		logger.EnableDebug(os.Stderr)
	}

	ledger := memory.NewLedger(logger.Warnf)
	events := &event.Registry{}
	state := input.New(events)
	events.Register(event.KeyPressed, "triangle", func(code event.Code, _ interface{}, ctx event.Context) bool {
		logger.Debugf("key %d pressed", ctx.U16(0))
		return false
	})
	events.Register(event.Exit, "triangle", func(event.Code, interface{}, event.Context) bool {
		logger.Infof("window closed")
		return true
	})

	logger.Fatal(window.InitVulkanLoader())
	win, err := window.New(cfg.AppName, args.width, args.height, state)
	logger.Fatal(err, window.Terminate)

	drv, err := vkrender.NewDriver()
	logger.Fatal(err, win.Destroy, window.Terminate)

	width, height := win.FramebufferSize()
	ctx, err := vkrender.Init(drv, win, width, height, cfg, logger, ledger)
	logger.Fatal(err, win.Destroy, window.Terminate)

	for !win.ShouldClose() {
		win.PollEvents()
		err := ctx.DrawFrame()
		if errors.Cause(err) == vkrender.ErrSwapchainOutOfDate {
			logger.Warnf("%v, stopping", err)
			break
		}
		logger.Fatal(err, ctx.Destroy, win.Destroy, window.Terminate)
	}
	events.Dispatch(event.Exit, event.Context{})

	if err := ctx.WaitIdle(); err != nil {
		logger.Errorf("%v", err)
	}
	ctx.Destroy()
	win.Destroy()
	window.Terminate()

	logger.Infof("presented %d frames", ctx.Frames())
	logger.Infof("memory after teardown: %s", ledger.Report())
	logger.Close()
}
