package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bairigao/video-transcoding/internal/infrastructure/logger"
	"github.com/bairigao/video-transcoding/internal/service"
)

var useraddPassword string

var useraddCmd = &cobra.Command{
	Use:   "useradd <username>",
	Short: "Create a user; the password is read from stdin unless --password is given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		password := useraddPassword
		if password == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password given on stdin")
			}
			password = strings.TrimRight(line, "\r\n")
		}

		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		auth := service.NewAuthService(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		user, err := auth.CreateUser(cmd.Context(), args[0], password)
		if err != nil {
			return fmt.Errorf("create user %s: %w", args[0], err)
		}

		logger.Info.Printf("created user %s (id %d)", user.Username, user.ID)
		return nil
	},
}

func init() {
	useraddCmd.Flags().StringVarP(&useraddPassword, "password", "p", "", "password for the new user")
}
