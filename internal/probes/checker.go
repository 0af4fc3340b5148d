package probes

import "context"

// Checker runs probes in trust order and returns the first result that
// isn't unknown, mirroring the original IndexationChecker's priority:
// authoritative (GSC inspection) > best-effort (custom search) >
// fallback.
type Checker struct {
	probes []Probe
}

// NewChecker takes probes already ordered from most to least
// authoritative. Callers building a per-project checker typically pass
// only the probes whose configuration is actually present; Fallback
// should always be last so there is always a terminal answer.
func NewChecker(probes ...Probe) *Checker {
	return &Checker{probes: probes}
}

func (c *Checker) Check(ctx context.Context, url string) Result {
	var last Result
	for _, p := range c.probes {
		result, err := p.Check(ctx, url)
		if err != nil {
			continue
		}
		last = result
		if result.Indexed != VerdictUnknown {
			return result
		}
	}
	if last.Method == "" {
		return Result{Indexed: VerdictUnknown, Method: "fallback"}
	}
	return last
}
