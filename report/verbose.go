package report

import (
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/csim/cache"
)

// VerboseHook prints one line per simulated access, for example
//
//	Address: 7ff000 - miss eviction
type VerboseHook struct {
	w io.Writer
}

// NewVerboseHook creates a VerboseHook that writes to w.
func NewVerboseHook(w io.Writer) *VerboseHook {
	return &VerboseHook{w: w}
}

// Func prints the access outcome carried by ctx.
func (h *VerboseHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	outcome, ok := ctx.Item.(cache.Outcome)
	if !ok {
		return
	}

	_, _ = fmt.Fprintf(h.w, "Address: %x - %s\n",
		outcome.Address, Classify(outcome))
}

// Classify names the outcome as "hit", "miss", or "miss eviction".
func Classify(o cache.Outcome) string {
	switch {
	case o.Hit:
		return "hit"
	case o.Evicted:
		return "miss eviction"
	default:
		return "miss"
	}
}
