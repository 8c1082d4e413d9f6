// inspect dumps the contents of a chatroom DB directory for debugging.
// Run it against a copy or a stopped service; Pebble holds an exclusive
// lock on the directory.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"chatroom/pkg/logger"
	"chatroom/pkg/store"
)

func main() {
	dbPath := flag.String("db", "", "Pebble DB path to inspect")
	what := flag.String("what", "messages", "what to dump: participants | messages | keys")
	prefix := flag.String("prefix", "", "key prefix filter (only with -what=keys)")
	flag.Parse()
	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "-db required")
		os.Exit(2)
	}
	logger.InitWithLevel("error")

	st, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open failed: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	enc := json.NewEncoder(os.Stdout)
	switch *what {
	case "participants":
		ps, err := st.ListParticipants()
		if err != nil {
			fmt.Fprintf(os.Stderr, "list failed: %v\n", err)
			os.Exit(1)
		}
		for _, p := range ps {
			_ = enc.Encode(p)
		}
	case "messages":
		msgs, err := st.ListMessages()
		if err != nil {
			fmt.Fprintf(os.Stderr, "list failed: %v\n", err)
			os.Exit(1)
		}
		for _, m := range msgs {
			_ = enc.Encode(m)
		}
	case "keys":
		keys, err := st.ListKeys(*prefix)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list failed: %v\n", err)
			os.Exit(1)
		}
		for _, k := range keys {
			v, err := st.GetKey(k)
			if err != nil {
				fmt.Fprintf(os.Stderr, "get %s failed: %v\n", k, err)
				continue
			}
			fmt.Printf("%s\t%s\n", k, v)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown -what: %s\n", *what)
		os.Exit(2)
	}
}
