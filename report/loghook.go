package report

import (
	"strconv"

	"github.com/sarchlab/akita/v4/sim"
	"go.uber.org/zap"

	"github.com/sarchlab/csim/cache"
)

// LogHook records every access as a debug entry of a zap logger.
type LogHook struct {
	logger *zap.Logger
}

// NewLogHook creates a LogHook. A nil logger discards everything.
func NewLogHook(logger *zap.Logger) *LogHook {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LogHook{logger: logger}
}

// Func logs the access outcome carried by ctx.
func (h *LogHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	outcome, ok := ctx.Item.(cache.Outcome)
	if !ok {
		return
	}

	if ce := h.logger.Check(zap.DebugLevel, "cache access"); ce != nil {
		ce.Write(
			zap.String("address", hexAddr(outcome.Address)),
			zap.Int("set", outcome.SetIndex),
			zap.Uint64("tag", outcome.Tag),
			zap.Int("way", outcome.Way),
			zap.Bool("hit", outcome.Hit),
			zap.Bool("evicted", outcome.Evicted),
		)
	}
}

func hexAddr(addr uint64) string {
	return "0x" + strconv.FormatUint(addr, 16)
}
