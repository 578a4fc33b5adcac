package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/niels/tinyhttpd/pkg/client"
	"github.com/niels/tinyhttpd/pkg/output"
	"github.com/niels/tinyhttpd/pkg/protocol"
	"github.com/niels/tinyhttpd/pkg/retry"
	"github.com/spf13/cobra"
)

type getOptions struct {
	addr    string
	method  string
	headers []string
	body    string
	raw     bool
	noColor bool
}

func newGetCmd() *cobra.Command {
	opts := &getOptions{}

	getCmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Send one request to a server and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, opts, args[0])
		},
	}

	getCmd.Flags().StringVar(&opts.addr, "addr", "", "Server address (defaults to server.address)")
	getCmd.Flags().StringVarP(&opts.method, "method", "X", protocol.MethodGet.String(), "Request method")
	getCmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "Request header as Key:Value (repeatable)")
	getCmd.Flags().StringVar(&opts.body, "body", "", "Request body")
	getCmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the response exactly as received")
	getCmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return getCmd
}

func runGet(cmd *cobra.Command, opts *getOptions, path string) error {
	headers, err := parseHeaders(opts.headers)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	addr := opts.addr
	if addr == "" {
		addr = dialAddress(cfg.Server.Address)
	}

	timeout := time.Duration(cfg.Server.ReadTimeout) * time.Second
	c := client.New(addr, timeout, retry.FromConfig(cfg))

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	result, err := c.Do(ctx, &client.Request{
		Method:  strings.ToUpper(opts.method),
		Path:    path,
		Headers: headers,
		Body:    opts.body,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.raw {
		_, err := io.WriteString(out, result.Raw)
		return err
	}

	useColor := !opts.noColor && !color.NoColor
	return output.NewTerminalFormatter(useColor).Write(out, result.Response)
}

// parseHeaders splits each Key:Value at the first colon
func parseHeaders(values []string) (protocol.Header, error) {
	headers := protocol.Header{}
	for _, v := range values {
		key, value, ok := strings.Cut(v, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q: expected Key:Value", v)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}

// dialAddress turns a listen address into one a client can dial
func dialAddress(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return listenAddr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
