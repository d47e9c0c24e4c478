// internal/game/phases.go
//
// Round state machine vocabulary and the authoritative transition guard.

package game

// Phase is one state of the round state machine.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSlot     Phase = "slot"
	PhaseDraw     Phase = "draw"
	PhasePlay     Phase = "play"
	PhaseScore    Phase = "score"
	PhaseRoulette Phase = "roulette"
	PhaseReward   Phase = "reward"
	PhaseShop     Phase = "shop"
	PhaseGameOver Phase = "game_over"
)

// transitions is the default linear table. reward, idle and game_over are
// special-cased in ValidTransition and deliberately absent here.
var transitions = map[Phase]Phase{
	PhaseSlot:     PhaseDraw,
	PhaseDraw:     PhasePlay,
	PhasePlay:     PhaseScore,
	PhaseScore:    PhaseRoulette,
	PhaseRoulette: PhaseReward,
	PhaseShop:     PhaseSlot,
}

// ValidTransition is the authoritative transition guard.
//
// Special cases:
//   - idle only starts a run (-> slot); game_over only resets (-> idle).
//   - reward is the single branch point: next turn (-> slot), round won
//     (-> shop), or run lost (-> game_over).
//
// Every other pair reduces to a table lookup.
func ValidTransition(from, to Phase) bool {
	switch from {
	case PhaseIdle:
		return to == PhaseSlot
	case PhaseGameOver:
		return to == PhaseIdle
	case PhaseReward:
		return to == PhaseSlot || to == PhaseShop || to == PhaseGameOver
	}
	return transitions[from] == to
}
