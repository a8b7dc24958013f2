package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/safarlabs/railsathi/internal/config"
	"github.com/safarlabs/railsathi/internal/logging"
)

// exitWords end the terminal session. "reset" is handled inside the
// dialogue and keeps the REPL running.
var exitWords = map[string]bool{
	"exit":   true,
	"quit":   true,
	"bye":    true,
	"khatam": true,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant on the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		// Terminal sessions log warnings and errors only, or the
		// transcript drowns in request logs.
		logger, err := logging.New("warn", cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		ctrl, err := controllerFactory(cfg, logger)()
		if err != nil {
			return fmt.Errorf("building controller: %w", err)
		}

		fmt.Println("RailSathi - train search assistant ('exit' ya 'khatam' se band karein)")
		fmt.Println()

		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if exitWords[strings.ToLower(line)] {
				fmt.Println("Khuda Hafiz. Safar acha guzre.")
				return nil
			}

			reply := ctrl.ProcessTurn(cmd.Context(), line)
			fmt.Println(reply)
			fmt.Println()
			fmt.Print("> ")
		}
		return scanner.Err()
	},
}
