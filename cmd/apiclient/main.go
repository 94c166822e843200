package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"vaccitrack/pkg/transport"

	"golang.org/x/term"
)

const usage = `usage: apiclient [flags] <command>

commands:
  signup    create an account
  login     log in and print the session user
  session   log in, hydrate, log out (exercises the cookie jar)
  stats     accurate user stats
  summary   cached user stats

flags:
`

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type options struct {
	baseURL  string
	email    string
	password string
	userType string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	opts := options{baseURL: os.Getenv("API_URL")}
	if opts.baseURL == "" {
		opts.baseURL = "http://localhost:8080"
	}

	fs := flag.NewFlagSet("apiclient", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.baseURL, "url", opts.baseURL, "API base URL (env API_URL)")
	fs.StringVar(&opts.email, "email", "", "account email")
	fs.StringVar(&opts.password, "password", "", "account password (prompted when empty)")
	fs.StringVar(&opts.userType, "type", "", "user type for signup")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("exactly one command is required")
	}

	client, err := transport.New(opts.baseURL)
	if err != nil {
		return err
	}

	switch cmd := fs.Arg(0); cmd {
	case "stats":
		stats, err := client.Stats(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, stats)
	case "summary":
		stats, err := client.StatsSummary(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, stats)
	case "signup", "login", "session":
		if err := opts.fillCredentials(); err != nil {
			return err
		}
		return runAuth(ctx, client, cmd, opts, out)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runAuth(ctx context.Context, client *transport.Client, cmd string, opts options, out io.Writer) error {
	if cmd == "signup" {
		user, err := client.Signup(ctx, transport.SignupRequest{
			Email:    opts.email,
			Password: opts.password,
			Type:     opts.userType,
		})
		if err != nil {
			return err
		}
		return printJSON(out, user)
	}

	user, err := client.Login(ctx, transport.LoginRequest{Email: opts.email, Password: opts.password})
	if err != nil {
		return err
	}
	if cmd == "login" {
		return printJSON(out, user)
	}

	if _, err := client.Hydrate(ctx); err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}
	if _, err := client.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Fprintf(out, "session ok for %s, cookies left: %d\n", user.Email, len(client.Cookies()))
	return nil
}

func (o *options) fillCredentials() error {
	if o.email == "" {
		return errors.New("-email is required")
	}
	if o.password != "" {
		return nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	o.password = string(pw)
	return nil
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
