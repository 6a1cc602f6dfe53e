package transferService

import (
	"errors"
	"fmt"
	"strings"

	"t2TrialsFantasyBot/models"
)

type Phase string

const (
	PhasePreseason      Phase = "PRESEASON"
	PhaseSwiss          Phase = "SWISS"
	PhasePlayoffsOpen   Phase = "PLAYOFFS_OPEN"
	PhasePlayoffsLocked Phase = "PLAYOFFS_LOCKED"
	PhaseSeasonEnded    Phase = "SEASON_ENDED"
)

// Phases in the order an admin normally moves through them.
var Phases = []Phase{PhasePreseason, PhaseSwiss, PhasePlayoffsOpen, PhasePlayoffsLocked, PhaseSeasonEnded}

var ErrInvalidPhase = errors.New("invalid phase")

func ParsePhase(value string) (Phase, error) {
	candidate := Phase(strings.ToUpper(strings.TrimSpace(value)))
	for _, p := range Phases {
		if p == candidate {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w %q, expected one of %s", ErrInvalidPhase, value, phaseList())
}

func phaseList() string {
	names := make([]string, len(Phases))
	for i, p := range Phases {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

type Reason string

const (
	ReasonPreseason      Reason = "PRESEASON"
	ReasonSwissLocked    Reason = "SWISS_LOCKED"
	ReasonPlayoffsLocked Reason = "PLAYOFFS_LOCKED"
	ReasonPlayoffsOK     Reason = "PLAYOFFS_OK"
	ReasonPlayoffsLimit  Reason = "PLAYOFFS_LIMIT"
)

// Decision is the answer to a proposed roster. SwapsUsed and Limit are only
// filled in while playoff swaps are open.
type Decision struct {
	Allowed   bool
	Reason    Reason
	SwapsUsed int
	Limit     int
}

// CanModifyTeam decides whether proposed may become the user's roster under
// the current phase. Swaps are counted against the playoff snapshot for this
// one proposal only; nothing is remembered between calls.
func CanModifyTeam(cfg models.FantasyConfig, playoffSnapshot []uint, proposed []uint) Decision {
	switch Phase(cfg.Phase) {
	case PhasePreseason:
		return Decision{Allowed: true, Reason: ReasonPreseason}
	case PhaseSwiss:
		return Decision{Reason: ReasonSwissLocked}
	case PhasePlayoffsOpen:
		swaps := CountSwaps(playoffSnapshot, proposed)
		limit := cfg.PlayoffSwapLimit
		if swaps <= limit {
			return Decision{Allowed: true, Reason: ReasonPlayoffsOK, SwapsUsed: swaps, Limit: limit}
		}
		return Decision{Reason: ReasonPlayoffsLimit, SwapsUsed: swaps, Limit: limit}
	default:
		return Decision{Reason: ReasonPlayoffsLocked}
	}
}

// CountSwaps is the number of snapshot players missing from proposed.
func CountSwaps(snapshot []uint, proposed []uint) int {
	keep := make(map[uint]bool, len(proposed))
	for _, id := range proposed {
		keep[id] = true
	}
	swaps := 0
	for _, id := range snapshot {
		if !keep[id] {
			swaps++
		}
	}
	return swaps
}

func (d Decision) Message() string {
	switch d.Reason {
	case ReasonSwissLocked:
		return "⛔ Team changes are locked during the swiss period."
	case ReasonPlayoffsLocked:
		return "⛔ Team changes are currently locked for playoffs."
	case ReasonPlayoffsLimit:
		return fmt.Sprintf("⛔ Playoff swap limit reached. This change would use **%d/%d** allowed swaps.", d.SwapsUsed, d.Limit)
	case ReasonPlayoffsOK:
		return fmt.Sprintf("Playoff swaps used: **%d/%d**.", d.SwapsUsed, d.Limit)
	default:
		return ""
	}
}
