package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"autoref-server/internal/domain"
	"autoref-server/internal/infrastructure/storage"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	switch os.Args[1] {
	case "info":
		if len(os.Args) < 3 {
			fmt.Println("Usage: recinfo info <file>")
			return
		}
		session, err := storage.LoadFile(os.Args[2])
		if err != nil {
			fmt.Printf("Invalid recording: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("match:    %s\n", session.MatchID)
		fmt.Printf("seed:     %d\n", session.Seed)
		fmt.Printf("recorded: %s\n", time.Unix(session.Timestamp, 0).UTC().Format(time.RFC3339))
		fmt.Printf("frames:   %d\n", len(session.Frames))
		var ticks []domain.Snapshot
		commands, aborted := 0, false
		for _, f := range session.Frames {
			if f.Abort {
				aborted = true
				continue
			}
			ticks = append(ticks, f.Snapshot)
			commands += len(f.Commands)
		}
		if n := len(ticks); n > 0 {
			fmt.Printf("ticks:    %d..%d\n", ticks[0].Tick, ticks[n-1].Tick)
			fmt.Printf("time:     %.2fs..%.2fs\n", ticks[0].Time, ticks[n-1].Time)
		}
		fmt.Printf("commands: %d\n", commands)
		fmt.Printf("aborted:  %t\n", aborted)
	case "commands":
		if len(os.Args) < 3 {
			fmt.Println("Usage: recinfo commands <file>")
			return
		}
		session, err := storage.LoadFile(os.Args[2])
		if err != nil {
			fmt.Printf("Invalid recording: %v\n", err)
			os.Exit(1)
		}
		for _, f := range session.Frames {
			for _, c := range f.Commands {
				fmt.Printf("%6d %8.2f %-8s %-12s %s\n", f.Snapshot.Tick, f.Snapshot.Time, c.Type, c.Source, c.Payload)
			}
		}
	case "format":
		if len(os.Args) < 3 {
			fmt.Println("Usage: recinfo format <unix_timestamp>")
			return
		}
		ts, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil {
			fmt.Printf("Invalid timestamp: %v\n", err)
			return
		}
		fmt.Println(time.Unix(ts, 0).UTC().Format(time.RFC3339))
	default:
		printHelp()
	}
}

func printHelp() {
	fmt.Println(`Recording info - просмотр записей матчей
Commands:
  info <file>            - заголовок записи и диапазон тиков
  commands <file>        - команды тренера по тикам
  format <timestamp>     - преобразовать Unix время записи в читаемый формат`)
}
