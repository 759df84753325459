package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// A well-behaved speaker of the server's line protocol: one goroutine prints
// everything the server sends, the main loop forwards stdin lines verbatim.
func main() {
	var (
		addr string
		user string
	)

	rootCmd := &cobra.Command{
		Use:   "linechat",
		Short: "Interactive client for the linechat server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(addr, user)
		},
	}

	rootCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7878", "server address")
	rootCmd.Flags().StringVar(&user, "user", "", "log in as this user immediately")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(addr, user string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer nc.Close()

	serverClosed := make(chan struct{})
	go func() {
		defer close(serverClosed)
		r := bufio.NewScanner(nc)
		for r.Scan() {
			fmt.Println(r.Text())
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			nc.Close()
		case <-serverClosed:
		}
	}()

	if user != "" {
		if _, err := fmt.Fprintf(nc, "LOGIN %s\n", user); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	stdin := bufio.NewScanner(os.Stdin)
	for stdin.Scan() {
		select {
		case <-serverClosed:
			fmt.Println("server closed connection")
			return nil
		default:
		}
		if _, err := fmt.Fprintf(nc, "%s\n", stdin.Text()); err != nil {
			fmt.Println("server closed connection")
			return nil
		}
	}

	fmt.Println("client closed connection")
	return nil
}
