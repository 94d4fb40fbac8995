package gateway

import (
	"fmt"
	"math/rand"
)

// fallbackTips are the canned coaching messages served when the upstream is
// unavailable after retries. Generic by design: they must read sensibly for
// any feature that degrades to them.
var fallbackTips = []string{
	"Review your last few trades and check whether you followed your plan on each entry and exit.",
	"Consistency beats intensity. One well-journaled trade teaches more than ten unexamined ones.",
	"Before your next session, write down the one setup you will trade and the one you will skip.",
	"Risk management is the edge. Confirm your position sizing matches your rules before entering.",
	"Emotions are data. Note how you felt on your last trade and what that feeling made you do.",
	"A losing trade that followed your plan is a good trade. Grade process, not outcome.",
}

// FallbackTip returns a canned, context-annotated coaching message. It is a
// pure function with no I/O, used when AI inference fails after exhausting
// retries so the caller's feature degrades gracefully instead of surfacing
// a raw error.
func FallbackTip(context string) string {
	tip := fallbackTips[rand.Intn(len(fallbackTips))]
	if context == "" {
		return tip
	}
	return fmt.Sprintf("%s (Regarding: %s)", tip, context)
}
