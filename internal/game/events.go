// internal/game/events.go
//
// Typed event stream for the host UI.
// The emitter is constructed per engine and lives exactly as long as the
// session; there is no package-level instance. Delivery is synchronous and
// fire-and-forget: a panicking handler is logged and its siblings still run.

package game

import (
	"github.com/rs/zerolog"

	"github.com/dkarger/felt/internal/deck"
	"github.com/dkarger/felt/internal/poker"
	"github.com/dkarger/felt/internal/shop"
	"github.com/dkarger/felt/internal/slots"
	"github.com/dkarger/felt/internal/wheel"
)

// EventType identifies an emitted game event.
type EventType string

const (
	EvGameStart       EventType = "GAME_START"
	EvPhaseChange     EventType = "PHASE_CHANGE"
	EvCardsDrawn      EventType = "CARDS_DRAWN"
	EvCardsPlayed     EventType = "CARDS_PLAYED"
	EvCardsDiscarded  EventType = "CARDS_DISCARDED"
	EvSlotSpin        EventType = "SLOT_SPIN"
	EvScoreCalculated EventType = "SCORE_CALCULATED"
	EvRouletteSpin    EventType = "ROULETTE_SPIN"
	EvItemBought      EventType = "ITEM_BOUGHT"
	EvRoundEnd        EventType = "ROUND_END"
	EvGameOver        EventType = "GAME_OVER"
)

// Event is one emitted occurrence with its structured payload.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// Payload shapes, one per event type that carries data.
type (
	PhaseChangePayload struct {
		From Phase `json:"from"`
		To   Phase `json:"to"`
	}
	CardsDrawnPayload struct {
		Cards []deck.Card `json:"cards"`
	}
	CardsPlayedPayload struct {
		Cards    []deck.Card    `json:"cards"`
		Category poker.Category `json:"category"`
	}
	CardsDiscardedPayload struct {
		Cards []deck.Card `json:"cards"`
	}
	SlotSpinPayload struct {
		Result slots.Result `json:"result"`
	}
	ScorePayload struct {
		Calculation poker.Calculation `json:"calculation"`
	}
	RouletteSpinPayload struct {
		Result wheel.Result `json:"result"`
	}
	ItemBoughtPayload struct {
		Item shop.Item `json:"item"`
	}
	RoundEndPayload struct {
		Round   int  `json:"round"`
		Score   int  `json:"score"`
		Target  int  `json:"target"`
		Success bool `json:"success"`
	}
	GameOverPayload struct {
		Round int `json:"round"`
		Score int `json:"score"`
	}
)

// Handler receives emitted events synchronously.
type Handler func(Event)

// Emitter dispatches events to subscribers. Not safe for concurrent use;
// the engine is single-threaded by design.
type Emitter struct {
	byType map[EventType][]Handler
	all    []Handler
	log    zerolog.Logger
}

// NewEmitter builds an emitter logging handler panics through log.
func NewEmitter(log zerolog.Logger) *Emitter {
	return &Emitter{byType: make(map[EventType][]Handler), log: log}
}

// Subscribe registers a handler for one event type.
func (e *Emitter) Subscribe(t EventType, h Handler) {
	e.byType[t] = append(e.byType[t], h)
}

// SubscribeAll registers a handler for every event.
func (e *Emitter) SubscribeAll(h Handler) {
	e.all = append(e.all, h)
}

// Emit delivers the event to all matching handlers. A handler panic is
// recovered and logged; it never aborts sibling handlers or the emitting
// action.
func (e *Emitter) Emit(t EventType, payload any) {
	ev := Event{Type: t, Payload: payload}
	for _, h := range e.all {
		e.dispatch(h, ev)
	}
	for _, h := range e.byType[t] {
		e.dispatch(h, ev)
	}
}

func (e *Emitter) dispatch(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("event", string(ev.Type)).Msg("event handler panicked")
		}
	}()
	h(ev)
}
