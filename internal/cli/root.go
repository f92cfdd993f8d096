// Package cli implements agreectl, a command-line client for the marketplace
// API's account and session endpoints.
package cli

import (
	"os"

	"github.com/dalemusser/agreeverse/internal/authclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagServer string
	flagCache  string
	flagDebug  bool

	logger *zap.Logger
	client *authclient.Client
)

// defaultServer returns the default server URL, checking AGREEVERSE_SERVER first.
func defaultServer() string {
	if s := os.Getenv("AGREEVERSE_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for agreectl.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agreectl",
		Short: "Agreeverse account client",
		Long:  "agreectl signs up, signs in and inspects the current session against an Agreeverse server.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = zap.NewNop()
			if flagDebug {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = l
			}

			path := flagCache
			if path == "" {
				p, err := authclient.DefaultCachePath()
				if err != nil {
					return err
				}
				path = p
			}

			c, err := authclient.New(flagServer, authclient.FileCache{Path: path}, logger)
			if err != nil {
				return err
			}
			client = c
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "Server URL (or AGREEVERSE_SERVER env)")
	root.PersistentFlags().StringVar(&flagCache, "cache", "", "Session cache file (default ~/.agreeverse/session.json)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newSignupCmd(),
		newSigninCmd(),
		newWhoamiCmd(),
		newVerifyCmd(),
		newLogoutCmd(),
	)

	return root
}
