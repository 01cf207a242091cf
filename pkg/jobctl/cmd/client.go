package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jobtracker/jobtracker/pkg/client"
	"github.com/jobtracker/jobtracker/pkg/jobctl/credentials"
)

var errNonInteractive = errors.New("session expired and --non-interactive is set; run `jobctl login`")

type clientOptions struct {
	// noPrompt disables re-login even in interactive mode.
	noPrompt bool
}

func buildClient(rt *runtimeState, opts clientOptions) (*client.Client, error) {
	server := rt.Server()
	token, err := rt.creds.Get(server)
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		_, _ = fmt.Fprintf(rt.errWriter, "warning: %v\n", err)
	}

	options := []client.Option{
		client.WithServer(server),
		client.WithToken(token),
		client.WithUserAgent("jobctl"),
		client.WithTokenHook(func(tok string) {
			if err := rt.creds.Set(server, tok); err != nil {
				_, _ = fmt.Fprintf(rt.errWriter, "warning: session not saved: %v\n", err)
			}
		}),
	}
	if rt.cfg != nil {
		if timeout := rt.cfg.Timeout(); timeout > 0 {
			options = append(options, client.WithTimeout(timeout))
		}
		if rt.cfg.CAFile != "" || rt.cfg.InsecureSkipTLSVerify {
			options = append(options, client.WithTLSConfig(rt.cfg.CAFile, rt.cfg.InsecureSkipTLSVerify))
		}
	}
	if !opts.noPrompt {
		options = append(options, client.WithPasswordPrompt(rt.passwordFunc()))
	}
	// stderr keeps structured output on stdout parseable
	if rt.verbose {
		options = append(options, client.WithVerbose(func(format string, args ...any) {
			_, _ = fmt.Fprintf(rt.errWriter, "[DEBUG] "+format+"\n", args...)
		}))
	}
	return client.New(options...)
}

func (rt *runtimeState) passwordFunc() client.PasswordFunc {
	if rt.password != nil {
		return rt.password
	}
	if rt.nonInteractive {
		return func(context.Context) (string, error) {
			return "", errNonInteractive
		}
	}
	return func(context.Context) (string, error) {
		return readPassword(rt.stdin, rt.errWriter)
	}
}

// readPassword prompts on a terminal without echo, otherwise reads one line.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(prompt, "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}
	return readLine(in)
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" && errors.Is(err, io.EOF) {
		return "", errors.New("no password provided on stdin")
	}
	return line, nil
}
