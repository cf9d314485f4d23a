// Package term adapts interactive-surface ports to a terminal.
package term

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/college-predictor/prompt-manager-fe/internal/ports"
)

// Navigator implements ports.Navigator for a terminal session. A
// browser client would hard-redirect to the login surface; here the
// equivalent is telling the user to sign in again.
type Navigator struct {
	mu  sync.Mutex
	out io.Writer
}

var _ ports.Navigator = (*Navigator)(nil)

// NewNavigator writes sign-in prompts to out.
func NewNavigator(out io.Writer) *Navigator {
	return &Navigator{out: out}
}

// ToLogin directs the user to the login surface.
func (n *Navigator) ToLogin(_ context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, "Your session has expired. Run `promptmgr login` to sign in again.")
}
