package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// startStdinToggle lets the user pause and resume the scan by pressing Enter.
// It returns nil when stdin is not a terminal, so piped input is never
// consumed.
func startStdinToggle(ctx context.Context, stdin *os.File, quiet bool) *scanner.Pauser {
	if !term.IsTerminal(int(stdin.Fd())) {
		return nil
	}
	pauser := scanner.NewPauser()
	var status io.Writer = os.Stderr
	if quiet {
		status = io.Discard
	}
	go toggleOnEnter(ctx, stdin, pauser, status)
	return pauser
}

// toggleOnEnter flips the pauser once per line read from r until r is
// exhausted or ctx ends.
func toggleOnEnter(ctx context.Context, r io.Reader, pauser *scanner.Pauser, status io.Writer) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		if pauser.Toggle() {
			fmt.Fprintf(status, "\r\033[K[*] Scan PAUSED, press Enter to resume\n")
		} else {
			fmt.Fprintf(status, "\r\033[K[*] Scan RESUMED\n")
		}
	}
}
