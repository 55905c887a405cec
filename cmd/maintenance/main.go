// Package main provides an operator CLI for inspecting and resetting the
// signup database: listing events, dumping an event's tables, or wiping
// the schema before a new season.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/louisbranch/gamenight/internal/platform/config"
	"github.com/louisbranch/gamenight/internal/signup/storage"
	"github.com/louisbranch/gamenight/internal/signup/storage/sqlite"
)

type envConfig struct {
	DBPath string `env:"GAMENIGHT_DB_PATH" envDefault:"gamenight.sqlite"`
}

func main() {
	var cfg envConfig
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("Error: %v", err)
	}

	var (
		dbPath  string
		events  bool
		tables  string
		reset   bool
		confirm bool
	)
	flag.StringVar(&dbPath, "db", cfg.DBPath, "path to the sqlite database file")
	flag.BoolVar(&events, "events", false, "list events with their table counts")
	flag.StringVar(&tables, "tables", "", "list tables for the given event id")
	flag.BoolVar(&reset, "reset", false, "drop all data and recreate the schema")
	flag.BoolVar(&confirm, "yes", false, "confirm destructive operations")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(dbPath)
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	defer store.Close()

	switch {
	case events:
		err = listEvents(ctx, store)
	case tables != "":
		err = listTables(ctx, store, tables)
	case reset:
		if !confirm {
			err = fmt.Errorf("refusing to reset %s without -yes", dbPath)
			break
		}
		if err = store.Reset(ctx); err == nil {
			fmt.Printf("Reset %s\n", dbPath)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}

func listEvents(ctx context.Context, store storage.Store) error {
	events, err := store.GetAllEvents(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No events.")
		return nil
	}
	for _, event := range events {
		tables, err := event.Tables(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s  guild=%d channel=%d tables=%d\n", event.ID, event.GuildID, event.ChannelID, len(tables))
	}
	return nil
}

func listTables(ctx context.Context, store storage.Store, eventID string) error {
	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("event %s: %w", eventID, err)
	}
	tables, err := event.Tables(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		fmt.Println("No tables.")
		return nil
	}

	ids := make([]string, 0, len(tables))
	for id := range tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		table := tables[id]
		owner, err := table.Owner(ctx)
		if err != nil {
			return err
		}
		game, err := table.Game(ctx)
		if err != nil {
			return err
		}
		players, err := table.Players(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s by %s (%d/%d players)\n", table.ID, game.Name, owner.DisplayName, len(players), game.MaxPlayers)
		if table.Note != "" {
			fmt.Printf("    note: %s\n", table.Note)
		}
		names := make([]string, 0, len(players))
		for _, p := range players {
			names = append(names, p.DisplayName)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("    - %s\n", name)
		}
	}
	return nil
}
