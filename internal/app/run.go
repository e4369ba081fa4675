package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/data/binding"
	"github.com/joho/godotenv"

	"github.com/01Chungee10/SA/emotion"
)

const (
	fyneAppID   = "sa.kote.emotion"
	logLimit    = 300
	envFileName = ".env"
)

// Run loads the configuration, initializes the model and starts the desktop
// UI. configPath may be empty to use ./config.json.
func Run(configPath string) error {
	if err := godotenv.Load(envFileName); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFileName, err)
	}
	cfg, err := emotion.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()
	cfg.ApplyDefaults()

	logBind := binding.NewString()
	capture := newLogCapture(logBind.Set, logLimit)
	logger := log.New(io.MultiWriter(os.Stdout, capture), "", log.LstdFlags)

	labels := emotion.KOTELabels()
	adapter, err := emotion.NewModelAdapter(cfg.Model, labels)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}
	svc, err := emotion.NewService(adapter, cfg, logger)
	if err != nil {
		adapter.Close()
		return fmt.Errorf("init service: %w", err)
	}
	defer svc.Close()

	a := fyneapp.NewWithID(fyneAppID)
	u := buildUI(a, svc, configPath, logger, logBind)
	u.w.ShowAndRun()
	return nil
}
