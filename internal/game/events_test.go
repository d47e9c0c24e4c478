package game

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestEmitterRouting(t *testing.T) {
	em := NewEmitter(zerolog.Nop())

	var typed, all []EventType
	em.Subscribe(EvRoundEnd, func(ev Event) { typed = append(typed, ev.Type) })
	em.SubscribeAll(func(ev Event) { all = append(all, ev.Type) })

	em.Emit(EvGameStart, nil)
	em.Emit(EvRoundEnd, RoundEndPayload{Round: 1})
	em.Emit(EvSlotSpin, nil)

	if len(typed) != 1 || typed[0] != EvRoundEnd {
		t.Fatalf("typed handler saw %v", typed)
	}
	if len(all) != 3 {
		t.Fatalf("catch-all handler saw %d events", len(all))
	}
}

func TestEmitterSurvivesHandlerPanic(t *testing.T) {
	em := NewEmitter(zerolog.Nop())

	ran := false
	em.Subscribe(EvGameOver, func(Event) { panic("boom") })
	em.Subscribe(EvGameOver, func(Event) { ran = true })

	em.Emit(EvGameOver, GameOverPayload{Round: 3, Score: 500})

	if !ran {
		t.Fatal("panicking handler must not starve its siblings")
	}
}
