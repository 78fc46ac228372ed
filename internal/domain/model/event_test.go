package model_test

import (
	"testing"
	"time"

	model "dugout/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestScoreEventConfirmed(t *testing.T) {
	convey.Convey("Given a stored score event", t, func() {
		event := model.ScoreEvent{
			ClientID: "c-1",
			ServerID: "s-1",
			Sequence: 7,
			Payload: map[string]any{
				"notation": "K",
				"summary":  "strikeout swinging",
				"inning":   3,
				"half":     "top",
			},
			UserName:  "scorer-a",
			DeviceID:  "device-1",
			Timestamp: time.Now(),
		}

		convey.Convey("When rendering the confirmed shape", func() {
			out := event.Confirmed()

			convey.Convey("Then payload fields are echoed verbatim", func() {
				convey.So(out["notation"], convey.ShouldEqual, "K")
				convey.So(out["summary"], convey.ShouldEqual, "strikeout swinging")
				convey.So(out["inning"], convey.ShouldEqual, 3)
				convey.So(out["half"], convey.ShouldEqual, "top")
			})

			convey.Convey("And identity and sync markers are attached", func() {
				convey.So(out[model.KeyClientEventID], convey.ShouldEqual, "c-1")
				convey.So(out[model.KeyServerID], convey.ShouldEqual, "s-1")
				convey.So(out[model.KeySequence], convey.ShouldEqual, int64(7))
				convey.So(out[model.KeySynced], convey.ShouldEqual, true)
				convey.So(out, convey.ShouldNotContainKey, model.KeyDeleted)
			})

			convey.Convey("And the stored payload is not mutated", func() {
				convey.So(event.Payload, convey.ShouldNotContainKey, model.KeySynced)
			})
		})

		convey.Convey("When rendering the tombstone shape", func() {
			out := event.Tombstone()

			convey.Convey("Then it carries the deleted marker on top of the confirmed shape", func() {
				convey.So(out[model.KeyDeleted], convey.ShouldEqual, true)
				convey.So(out[model.KeySynced], convey.ShouldEqual, true)
				convey.So(out[model.KeyServerID], convey.ShouldEqual, "s-1")
			})
		})
	})

	convey.Convey("Given an event with a nil payload", t, func() {
		event := model.ScoreEvent{ClientID: "c-2", ServerID: "s-2", Sequence: 1}

		convey.Convey("Then the confirmed shape still renders the identity keys", func() {
			out := event.Confirmed()
			convey.So(out[model.KeyClientEventID], convey.ShouldEqual, "c-2")
			convey.So(out[model.KeySynced], convey.ShouldEqual, true)
			convey.So(len(out), convey.ShouldEqual, 4)
		})
	})
}

func TestMutationClientID(t *testing.T) {
	convey.Convey("Given a mutation whose payload carries its own client id", t, func() {
		m := model.Mutation{
			Type:          model.MutationCreate,
			ClientEventID: "envelope-id",
			Event:         map[string]any{model.KeyClientEventID: "payload-id"},
		}

		convey.Convey("Then the payload id wins", func() {
			convey.So(m.ClientID(), convey.ShouldEqual, "payload-id")
		})
	})

	convey.Convey("Given a mutation with no payload id", t, func() {
		m := model.Mutation{
			Type:          model.MutationCreate,
			ClientEventID: "envelope-id",
			Event:         map[string]any{"notation": "1B"},
		}

		convey.Convey("Then the envelope id is used", func() {
			convey.So(m.ClientID(), convey.ShouldEqual, "envelope-id")
		})
	})

	convey.Convey("Given a delete mutation with no payload at all", t, func() {
		m := model.Mutation{Type: model.MutationDelete, ClientEventID: "envelope-id"}

		convey.Convey("Then the envelope id is used", func() {
			convey.So(m.ClientID(), convey.ShouldEqual, "envelope-id")
		})
	})

	convey.Convey("Given a payload id that is not a string", t, func() {
		m := model.Mutation{
			ClientEventID: "envelope-id",
			Event:         map[string]any{model.KeyClientEventID: 42},
		}

		convey.Convey("Then it falls back to the envelope id", func() {
			convey.So(m.ClientID(), convey.ShouldEqual, "envelope-id")
		})
	})
}
