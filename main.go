package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdxmph/todo-tui/internal/config"
	"github.com/pdxmph/todo-tui/internal/db"
	"github.com/pdxmph/todo-tui/internal/tasks"
	"github.com/pdxmph/todo-tui/internal/tasks/filestore"
	"github.com/pdxmph/todo-tui/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	dbPath := flag.String("db", "", "path to the sqlite database")
	backend := flag.String("backend", "", "storage backend (sqlite, file, memory)")
	mode := flag.String("mode", "", "list mode (split or inplace)")
	initDB := flag.Bool("init", false, "create an empty database and exit")
	fixtures := flag.Bool("fixtures", false, "create a database with sample tasks and exit")
	dump := flag.Bool("dump", false, "print the stored snapshot and exit")
	writeConfig := flag.Bool("write-config", false, "write the effective config to config.toml and exit")
	flag.Parse()

	// Load config
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal(err)
	}

	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *backend != "" {
		cfg.Storage.Backend = *backend
	}
	if *mode != "" {
		cfg.List.Mode = *mode
	}

	switch {
	case *initDB:
		if err := db.Initialize(cfg.Database.Path, cfg.Database.Driver); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Created database at %s\n", cfg.Database.Path)
		return
	case *fixtures:
		if err := db.CreateFixturesDatabase(cfg.Database.Path, cfg.Database.Driver); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Created fixtures database at %s\n", cfg.Database.Path)
		return
	case *writeConfig:
		if err := saveConfig(cfg, *configPath); err != nil {
			log.Fatal(err)
		}
		return
	case *dump:
		if err := dumpDatabase(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := run(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	listMode, err := tasks.ParseMode(cfg.List.Mode)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file
	logFile, err := openLog(cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	manager, err := tasks.NewManager(cfg.Storage.Backend, tasks.BackendOptions{
		Path:   cfg.Database.Path,
		Driver: cfg.Database.Driver,
		Dir:    cfg.Storage.Dir,
	}, slog.Default())
	if err != nil {
		return err
	}
	defer manager.Close()
	switch b := manager.Backend().(type) {
	case *filestore.Backend:
		slog.Info("storage ready", "backend", b.Name(), "dir", b.Dir(), "mode", listMode)
	default:
		slog.Info("storage ready", "backend", b.Name(), "mode", listMode)
	}

	store := tasks.NewStore(manager.Backend(),
		tasks.WithMode(listMode),
		tasks.WithWriteTimeout(cfg.Storage.WriteTimeout.Duration),
	)
	store.Load(context.Background())

	p := tea.NewProgram(tui.New(store), tea.WithAltScreen())
	_, runErr := p.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		slog.Error("flushing tasks on exit", "err", err)
	}

	return runErr
}

func openLog(lc config.LogConfig) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(lc.Path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := tea.LogToFile(lc.Path, "todo-tui")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(strings.ToUpper(lc.Level))); err != nil && lc.Level != "" {
		slog.Warn("unknown log level, using info", "level", lc.Level)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return f, nil
}

// saveConfig writes cfg to the -config path, or the standard location
func saveConfig(cfg *config.Config, path string) error {
	if path != "" {
		if err := cfg.SaveTo(path); err != nil {
			return err
		}
		fmt.Printf("Wrote config to %s\n", path)
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Wrote config to %s\n", filepath.Join(config.Dir(), "config.toml"))
	return nil
}

func dumpDatabase(cfg *config.Config) error {
	database, err := db.Open(cfg.Database.Path, cfg.Database.Driver)
	if err != nil {
		return err
	}
	defer database.Close()

	entries, err := database.Entries(context.Background())
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Printf("%s (%s)\n  %s\n", e.Key, e.UpdatedAt.Format("2006-01-02 15:04:05"), e.Value)
	}
	return nil
}
