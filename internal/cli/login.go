package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/asengupta/deepread/internal/api"
	"github.com/asengupta/deepread/internal/config"
	"github.com/asengupta/deepread/internal/session"
)

const loginTimeout = 30 * time.Second

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the backend and store the session",
	Long: `Log in exchanges your credentials for a token and stores it in the
session file. The interactive UI and the other subcommands use the
stored session; nothing else ever sees the password.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		if err := session.Clear(cfg.Session.File); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email; prompted for when omitted")
	loginCmd.Flags().String("password", "", "Account password; prompted for when omitted")
	loginCmd.Flags().Bool("register", false, "Create the account first")
	loginCmd.Flags().String("username", "", "Display name when registering")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	server := cfg.API.BaseURL

	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		var err error
		if email, err = promptLine("Email"); err != nil {
			return err
		}
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		var err error
		if password, err = promptPassword("Password"); err != nil {
			return err
		}
	}
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	client := api.New(api.Config{
		BaseURL: server,
		Timeout: time.Duration(cfg.API.Timeout) * time.Second,
	})

	var tok api.TokenResponse
	var err error
	if register, _ := cmd.Flags().GetBool("register"); register {
		username, _ := cmd.Flags().GetString("username")
		tok, err = client.Register(ctx, email, password, username)
	} else {
		tok, err = client.Login(ctx, email, password)
	}
	if err != nil {
		return fmt.Errorf("login against %s failed: %w", server, err)
	}

	err = session.Save(cfg.Session.File, session.Session{
		Token:     tok.AccessToken,
		Username:  tok.User.Username,
		ServerURL: server,
	})
	if err != nil {
		return err
	}

	name := tok.User.Username
	if name == "" {
		name = email
	}
	fmt.Printf("Logged in to %s as %s.\n", server, name)
	return nil
}

func promptLine(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo on a real terminal and falls back to a
// plain line read when stdin is a pipe.
func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(label)
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}
