package player

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type failing struct {
	*Virtual
	err   error
	panic bool
}

func (f *failing) Pause() error {
	if f.panic {
		panic("boom")
	}
	return f.err
}

type closing struct {
	*Virtual
	closed bool
}

func (c *closing) Close() error {
	c.closed = true
	return nil
}

func TestKey(t *testing.T) {
	Convey("A key renders as scope_element", t, func() {
		So(Key{Scope: "bx-timeline-view-public-0", Element: "video12"}.String(), ShouldEqual, "bx-timeline-view-public-0_video12")
	})
}

func TestRegister(t *testing.T) {
	Convey("Given an empty registry", t, func() {
		r := NewRegistry()
		key := Key{Scope: "view", Element: "a"}

		calls := 0
		factory := func(Key) (Controller, error) {
			calls++
			return NewVirtual(), nil
		}

		Convey("Registering twice returns the same handle without re-initialising", func() {
			first, loaded, err := r.Register(key, factory)
			So(err, ShouldBeNil)
			So(loaded, ShouldBeFalse)

			second, loaded, err := r.Register(key, factory)
			So(err, ShouldBeNil)
			So(loaded, ShouldBeTrue)
			So(second, ShouldPointTo, first)
			So(calls, ShouldEqual, 1)
			So(r.Len(), ShouldEqual, 1)
		})

		Convey("A factory error stores nothing", func() {
			boom := errors.New("no frame")
			_, _, err := r.Register(key, func(Key) (Controller, error) { return nil, boom })
			So(errors.Is(err, boom), ShouldBeTrue)
			So(r.Len(), ShouldEqual, 0)
		})

		Convey("A nil controller is rejected", func() {
			_, _, err := r.Register(key, func(Key) (Controller, error) { return nil, nil })
			So(errors.Is(err, ErrNilController), ShouldBeTrue)
			So(r.Get(key).IsAbsent(), ShouldBeTrue)
		})

		Convey("Unregister closes controllers holding resources", func() {
			c := &closing{Virtual: NewVirtual()}
			_, _, err := r.Register(key, func(Key) (Controller, error) { return c, nil })
			So(err, ShouldBeNil)

			r.Unregister(key)
			So(c.closed, ShouldBeTrue)
			So(r.Get(key).IsAbsent(), ShouldBeTrue)

			r.Unregister(key)
			So(r.Len(), ShouldEqual, 0)
		})
	})
}

func TestForEachExcept(t *testing.T) {
	Convey("Given three players one of which fails", t, func() {
		r := NewRegistry()
		a := Key{Scope: "v", Element: "a"}
		b := Key{Scope: "v", Element: "b"}
		c := Key{Scope: "v", Element: "c"}

		_, _, _ = r.Register(a, VirtualFactory)
		_, _, _ = r.Register(b, func(Key) (Controller, error) {
			return &failing{Virtual: NewVirtual(), err: errors.New("detached")}, nil
		})
		_, _, _ = r.Register(c, VirtualFactory)

		for _, k := range r.Keys() {
			So(r.Get(k).MustGet().Controller().Play(), ShouldBeNil)
			r.Get(k).MustGet().Sync()
		}

		Convey("The failure is reported and the iteration goes on", func() {
			var visited []string
			err := r.ForEachExcept(a, func(h *Handle) error {
				visited = append(visited, h.Key().Element)
				return h.Pause()
			})

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "detached")
			So(visited, ShouldResemble, []string{"b", "c"})
			So(r.Get(c).MustGet().Playing(), ShouldBeFalse)
			So(r.Get(a).MustGet().Playing(), ShouldBeTrue)
		})

		Convey("A panic is contained", func() {
			r.Get(b).MustGet().ctl.(*failing).panic = true

			err := r.ForEach(func(h *Handle) error { return h.Pause() })
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "panicked")
			So(r.Get(a).MustGet().Playing(), ShouldBeFalse)
			So(r.Get(c).MustGet().Playing(), ShouldBeFalse)
		})

		Convey("Playing lists playing handles in key order", func() {
			So(r.Playing(), ShouldResemble, []Key{a, b, c})
		})
	})
}

func TestHandle(t *testing.T) {
	Convey("Handle flags follow successful commands only", t, func() {
		ctl := &failing{Virtual: NewVirtual(), err: errors.New("gone")}
		h := newHandle(Key{Scope: "v", Element: "x"}, ctl)

		So(h.Play(), ShouldBeNil)
		So(h.Playing(), ShouldBeTrue)

		err := h.Pause()
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "pause v_x")
		So(h.Playing(), ShouldBeTrue)

		So(h.Mute(), ShouldBeNil)
		So(h.Muted(), ShouldBeTrue)
		So(h.Unmute(), ShouldBeNil)
		So(h.Muted(), ShouldBeFalse)
	})
}

func TestVirtual(t *testing.T) {
	Convey("Virtual records its commands", t, func() {
		v := NewVirtual()
		So(v.Play(), ShouldBeNil)
		So(v.Mute(), ShouldBeNil)
		So(v.Pause(), ShouldBeNil)

		So(v.IsPlaying(), ShouldBeFalse)
		So(v.IsMuted(), ShouldBeTrue)
		So(v.History(), ShouldResemble, []string{"play", "mute", "pause"})
	})
}
