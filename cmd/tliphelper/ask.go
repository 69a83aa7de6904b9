package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/heihei0314/TLIPHelper/config"
	"github.com/heihei0314/TLIPHelper/internal/guide"
	srv "github.com/heihei0314/TLIPHelper/internal/server"
)

// askCMD runs a single conversation turn without the server: the stage is
// the argument, the user input is read from stdin, and the structured reply
// is printed as JSON.
func askCMD() *cobra.Command {
	var cfgPath string
	var ask = &cobra.Command{
		Use:   "ask [purpose]",
		Short: "Run one conversation turn from stdin and print the reply JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}

			engine := srv.NewEngine(cfg, nil, nil)
			reply, _ := engine.Handle(cmd.Context(), guide.Stage(args[0]), string(input), guide.NewState())

			out, err := json.MarshalIndent(reply, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	ask.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return ask
}
