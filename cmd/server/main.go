package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"topichat/internal/config"
	"topichat/internal/server"
)

// version can be set at build time:
// go build -ldflags "-X 'main.version=v1.2.3'"
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "topichat",
	Short: "Topic-scoped WebSocket chat server",
	Long: `topichat is an in-memory publish/subscribe chat server. Clients join
named topics over a WebSocket connection, broadcast text messages to the
other members of the same topic, and can query the active topics with the
/list command.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.New()
		if err != nil {
			log.Fatalf("invalid configuration: %v", err)
		}

		s := server.New(cfg)
		s.RegisterRoutes()
		s.Start()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the server version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
