package main

import (
	"embed"
	"log"

	"iconswitch/internal/app"
	"iconswitch/internal/config"
	"iconswitch/internal/infrastructure/logging"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Create an instance of the app structure
	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatal(err)
	}

	err = wails.Run(&options.App{
		Title:         "Icon Switch",
		Width:         360,
		Height:        240,
		MinWidth:      300,
		MinHeight:     200,
		DisableResize: false,
		Frameless:     false,
		StartHidden:   false,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Logger:           logging.NewWailsLoggerAdapter(application.GetLogger()),
		LogLevel:         wailsLogLevel(cfg.LogLevel),
		OnStartup:        application.Startup,
		OnDomReady:       application.DomReady,
		OnBeforeClose:    application.BeforeClose,
		OnShutdown:       application.Shutdown,
		WindowStartState: options.Normal,
		Bind: []interface{}{
			application,
		},
		// Windows platform specific options
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			ZoomFactor:           1.0,
		},
		// Mac platform specific options
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: false,
				HideTitle:                  false,
				HideTitleBar:               false,
				FullSizeContent:            false,
				UseToolbar:                 false,
				HideToolbarSeparator:       true,
			},
			Appearance: mac.NSAppearanceNameAqua,
			About: &mac.AboutInfo{
				Title:   "Icon Switch",
				Message: "Switch between the application's alternate icons",
			},
		},
	})

	if err != nil {
		log.Fatal(err)
	}
}

func wailsLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.DEBUG
	case "warn":
		return logger.WARNING
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}
