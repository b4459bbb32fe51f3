// Command cookiejwt encodes, decodes and inspects session cookies using a
// storage built from a TOML or YAML configuration file.
//
// Usage:
//
//	cookiejwt encode  -config session.toml -data '{"uid":42}' [-expires 1h]
//	cookiejwt decode  -config session.toml -cookie 'session=eyJ...'
//	cookiejwt destroy -config session.toml
//	cookiejwt inspect -config session.toml
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/cookiejwt"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "encode", "decode", "destroy", "inspect":
	default:
		usage(stderr)
		return 2
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "cookiejwt.toml", "path to a .toml or .yaml configuration file")
	data := fs.String("data", "{}", "session data as a JSON object (encode)")
	expires := fs.Duration("expires", 0, "token lifetime overriding the configured max_age (encode)")
	cookieHeader := fs.String("cookie", "", "Cookie request header (decode)")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(rest); err != nil {
		return 2
	}
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	cfg, err := cookiejwt.LoadConfigFile(*configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", *configPath).Msg("failed to load config")
		return 1
	}
	storage, err := cookiejwt.New().WithConfig(cfg).WithLogger(logger).Build()
	if err != nil {
		logger.Error().Err(err).Msg("failed to build session storage")
		return 1
	}
	defer storage.Close()

	ctx := context.Background()
	switch cmd {
	case "encode":
		err = encode(ctx, storage, *data, *expires, stdout)
	case "decode":
		err = decode(ctx, storage, *cookieHeader, stdout)
	case "destroy":
		var value string
		value, err = storage.DestroySession(ctx, nil)
		if err == nil {
			_, err = fmt.Fprintln(stdout, value)
		}
	case "inspect":
		err = inspect(cfg, storage, stdout)
	}
	if err != nil {
		logger.Error().Err(err).Str("command", cmd).Msg("command failed")
		return 1
	}
	return 0
}

func encode(ctx context.Context, storage *cookiejwt.JWTCookieStorage, raw string, expires time.Duration, out io.Writer) error {
	var data cookiejwt.Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return fmt.Errorf("parse -data: %w", err)
	}

	var opts []cookiejwt.CookieOption
	if expires > 0 {
		opts = append(opts, cookiejwt.WithExpires(time.Now().Add(expires)))
	}

	value, err := storage.CommitSession(ctx, cookiejwt.NewSession(data, ""), opts...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, value)
	return err
}

var errNoSession = errors.New("cookie did not decode into a session")

func decode(ctx context.Context, storage *cookiejwt.JWTCookieStorage, header string, out io.Writer) error {
	if _, ok := storage.GetJWT(ctx, header); !ok {
		return errNoSession
	}
	sess, err := storage.GetSession(ctx, header)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		ID   string         `json:"id"`
		Data cookiejwt.Data `json:"data"`
	}{ID: sess.ID(), Data: sess.Data()})
}

func inspect(cfg cookiejwt.Config, storage *cookiejwt.JWTCookieStorage, out io.Writer) error {
	report := storage.SecurityReport()
	fmt.Fprintf(out, "cookie:      %s\n", report.CookieName)
	fmt.Fprintf(out, "mode:        %s\n", report.Mode)
	if report.Downgraded {
		fmt.Fprintln(out, "downgraded:  yes (no secret configured)")
	}
	switch {
	case report.KeyAlgorithm != "":
		fmt.Fprintf(out, "algorithms:  %s / %s\n", report.KeyAlgorithm, report.ContentEncryption)
	default:
		fmt.Fprintf(out, "algorithm:   %s\n", report.SigningAlgorithm)
	}
	fmt.Fprintf(out, "secrets:     %d\n", report.SecretCount)
	fmt.Fprintf(out, "max age:     %s\n", report.MaxAge)
	fmt.Fprintf(out, "session id:  %s\n", report.IDStrategy)

	for _, w := range cfg.Lint() {
		fmt.Fprintf(out, "warning:     %s: %s\n", w.Code, w.Message)
	}
	return nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: cookiejwt <encode|decode|destroy|inspect> -config FILE [flags]")
}
