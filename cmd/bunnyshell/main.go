package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/journal"
	"github.com/hongminglow/bunny-bank/internal/logging"
	"github.com/hongminglow/bunny-bank/internal/shell"
	"go.uber.org/zap"
)

var (
	seedFile = flag.String("seed", "", "YAML seed file; the built-in demo data when empty")
	plain    = flag.Bool("plain", false, "Print raw markdown instead of styled terminal output")
	hashing  = flag.String("hashing", "plain", "Credential scheme: bcrypt or plain")
	verbose  = flag.Bool("v", false, "Log every operation to stderr")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-seed file] [-hashing scheme] [-plain] [-v] < commands\n\nType \"help\" at the prompt for the command list.\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zap.NewNop()
	if *verbose {
		l, err := logging.New("development")
		if err != nil {
			return err
		}
		logger = l
		defer func() { _ = logger.Sync() }()
	}

	seed, err := bank.LoadSeed(*seedFile)
	if err != nil {
		return err
	}
	hasher, err := auth.NewHasher(*hashing, 0)
	if err != nil {
		return err
	}
	b, err := bank.New(seed, bank.Options{
		Hasher:    hasher,
		Logger:    logger.Named("bank"),
		Listeners: []bank.Listener{journal.NewLog(logger)},
	})
	if err != nil {
		return err
	}

	renderer, err := shell.NewMarkdown(os.Stdout, *plain)
	if err != nil {
		return err
	}
	return shell.New(b, renderer, os.Stdout, os.Stderr).Run(context.Background(), os.Stdin)
}
