// Command soractl submits a prompt to a sora-studio server and follows the
// job until it finishes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/maauso/sora-studio/internal/client"
	"github.com/maauso/sora-studio/internal/poll"
)

func main() {
	var (
		addrFlag    string
		promptFlag  string
		timeoutFlag time.Duration
	)
	flag.StringVar(&addrFlag, "addr", "http://localhost:8080", "Base URL of the sora-studio server")
	flag.StringVar(&promptFlag, "prompt", "", "Prompt to generate (defaults to the remaining arguments)")
	flag.DurationVar(&timeoutFlag, "timeout", poll.DefaultTimeout, "How long to wait for the job to finish")
	flag.Parse()

	prompt := strings.TrimSpace(promptFlag)
	if prompt == "" {
		prompt = strings.TrimSpace(strings.Join(flag.Args(), " "))
	}
	if prompt == "" {
		fmt.Fprintln(os.Stderr, "a prompt is required via -prompt or arguments")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, client.New(addrFlag), prompt, timeoutFlag); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, prompt string, timeout time.Duration) error {
	gen, err := c.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	fmt.Printf("job %s (%s): %s\n", gen.ID, gen.Type, gen.Status)

	last := gen.Status
	res := client.PollStatus(ctx, c, gen.ID, func(status string) {
		if status != last {
			fmt.Printf("  %s\n", status)
			last = status
		}
	}, poll.WithTimeout(timeout))

	s, err := res.Unwrap()
	if err != nil {
		return err
	}

	switch {
	case s.Status == "succeeded" && s.VideoURL != "":
		fmt.Println(s.VideoURL)
	case s.Error != "":
		return errors.New(s.Error)
	default:
		return fmt.Errorf("job ended with status %q", s.Status)
	}
	return nil
}
