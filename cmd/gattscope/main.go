package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/gattscope/gattscope/internal/config"
	"github.com/gattscope/gattscope/internal/tui"
	"github.com/gattscope/gattscope/pkg/gatt"
	"github.com/gattscope/gattscope/pkg/state"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/gattscope/config.yaml)")
	scanSecs := flag.Int("scan", 0, "scan window in seconds (overrides config)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *scanSecs > 0 {
		cfg.ScanSeconds = *scanSecs
	}

	log, closeLog, err := newErrorLog(cfg.ErrorLogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	st := state.NewService(cfg.LogCap)
	listener := &tui.ProgramListener{}
	session := gatt.NewSession(st, listener, log, gatt.Options{
		ScanWindow:     cfg.ScanWindow(),
		ConnectTimeout: cfg.ConnectTimeout(),
	})
	defer session.Close()

	model := tui.NewModel(st, session, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	listener.SetProgram(program)

	if _, err := program.Run(); err != nil {
		log.WithError(err).Error("UI terminated")
		fmt.Fprintf(os.Stderr, "gattscope: %v\n", err)
		os.Exit(1)
	}
}

// newErrorLog opens the diagnostics file the status line points users at.
// It is append-only and never read back by the program.
func newErrorLog(path string) (*logrus.Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	log := logrus.New()
	log.SetOutput(f)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, func() { f.Close() }, nil
}
