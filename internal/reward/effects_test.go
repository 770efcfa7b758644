package reward

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func collect(ch <-chan Effect, wait time.Duration) []Effect {
	var out []Effect
	deadline := time.After(wait)
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		case <-deadline:
			return out
		}
	}
}

func TestEffects(t *testing.T) {
	Convey("Given an effects scheduler", t, func() {
		expired := make(chan Effect, 8)
		e := NewEffects(context.Background(), func(eff Effect) { expired <- eff })
		Reset(e.Close)

		Convey("When an effect runs out", func() {
			started := e.Start("glow", "power_up", 20*time.Millisecond)
			So(started.ExpiresAt.Sub(started.StartedAt), ShouldEqual, 20*time.Millisecond)
			So(e.Active(), ShouldHaveLength, 1)

			got := collect(expired, 200*time.Millisecond)

			Convey("Then it expires exactly once and is no longer active", func() {
				So(got, ShouldHaveLength, 1)
				So(got[0].Tag, ShouldEqual, "glow")
				So(got[0].ComboID, ShouldEqual, "power_up")
				So(e.Active(), ShouldBeEmpty)
			})
		})

		Convey("When a tag is restarted before expiry", func() {
			e.Start("glow", "power_up", 30*time.Millisecond)
			e.Start("glow", "lightning", 60*time.Millisecond)

			got := collect(expired, 250*time.Millisecond)

			Convey("Then only the latest schedule expires", func() {
				So(got, ShouldHaveLength, 1)
				So(got[0].ComboID, ShouldEqual, "lightning")
			})
		})

		Convey("When the scheduler is closed", func() {
			e.Start("glow", "power_up", 20*time.Millisecond)
			e.Close()

			Convey("Then pending expiries never fire and starts are ignored", func() {
				So(collect(expired, 100*time.Millisecond), ShouldBeEmpty)
				So(e.Start("spin", "rock_star", time.Millisecond), ShouldResemble, Effect{})
				So(e.Active(), ShouldBeEmpty)
			})
		})

		Convey("When several tags are active", func() {
			e.Start("zoom", "precision", time.Minute)
			e.Start("glow", "power_up", time.Minute)

			Convey("Then they are listed by tag", func() {
				active := e.Active()
				So(active, ShouldHaveLength, 2)
				So(active[0].Tag, ShouldEqual, "glow")
				So(active[1].Tag, ShouldEqual, "zoom")
			})
		})
	})

	Convey("Given a scheduler bound to a session context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		expired := make(chan Effect, 1)
		e := NewEffects(ctx, func(eff Effect) { expired <- eff })

		e.Start("shield", "shield", 20*time.Millisecond)
		cancel()

		Convey("Then cancelling the context cancels pending expiries", func() {
			So(collect(expired, 100*time.Millisecond), ShouldBeEmpty)
		})
	})
}
