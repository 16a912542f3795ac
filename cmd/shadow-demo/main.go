package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"

	"shadow-demo/internal/config"
	"shadow-demo/internal/graphics/glbackend"
	"shadow-demo/internal/input"
	"shadow-demo/internal/logging"
)

func init() {
	// GL and GLFW calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration")
	printConfig := flag.Bool("print-config", false, "print the effective configuration and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal("invalid configuration", "err", err)
	}
	logging.SetLevel(cfg.LogLevel)

	if *printConfig {
		data, err := cfg.Marshal()
		if err != nil {
			logging.Fatal("could not encode configuration", "err", err)
		}
		fmt.Fprint(os.Stdout, string(data))
		return
	}

	if err := glfw.Init(); err != nil {
		logging.Fatal("glfw init failed", "err", err)
	}

	window, err := setupWindow(cfg.Window)
	if err != nil {
		glfw.Terminate()
		logging.Fatal("could not create window", "err", err)
	}

	backend, err := glbackend.New()
	if err != nil {
		glfw.Terminate()
		logging.Fatal("opengl init failed", "err", err)
	}
	logging.Info("context ready", "gl", backend.Version())

	im := input.NewManager()
	im.Attach(window)

	app, err := newApp(window, backend, im, cfg)
	if err != nil {
		glfw.Terminate()
		logging.Fatal("could not build scene", "err", err)
	}

	// Signals arrive on closer's goroutine; the release itself runs here on
	// the render thread once the loop notices the request.
	closer.Bind(func() {
		app.requestQuit()
		<-app.done
	})
	defer closer.Close()

	app.run()
	app.dispose()
	glfw.Terminate()
	close(app.done)
	logging.Info("exiting")
}

func setupWindow(wc config.WindowConfig) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(wc.Width, wc.Height, wc.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if wc.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return window, nil
}
