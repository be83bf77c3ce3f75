package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the default initializer", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		Convey("Then the global logger is available", func() {
			So(Get(), ShouldNotBeNil)
			So(Named("test"), ShouldNotBeNil)
		})
	})
}

func TestLoggerFormats(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithFormat("json", &buf), ShouldBeNil)
		So(SetLevelString("info"), ShouldBeNil)

		Convey("When logging with fields", func() {
			Named("codec").Info(context.Background(), "encoded",
				String("feature", "experience_level"),
				Int("code", 3),
				Error(errors.New("boom")),
			)

			Convey("Then a JSON record with component and source is written", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "encoded")
				So(rec["component"], ShouldEqual, "codec")
				So(rec["feature"], ShouldEqual, "experience_level")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level filters a message", func() {
			So(SetLevelString("error"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Info(context.Background(), "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a text logger", t, func() {
		var buf bytes.Buffer
		So(InitWithFormat("", &buf), ShouldBeNil)
		Get().Warn(context.Background(), "fallback used", Bool("fallback", true))

		Convey("Then the record is key=value encoded", func() {
			So(strings.Contains(buf.String(), "fallback=true"), ShouldBeTrue)
		})
	})

	Convey("Given an unknown format", t, func() {
		Convey("Then initialization fails", func() {
			So(InitWithFormat("xml", nil), ShouldNotBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(SetLevelString("debug"), ShouldBeNil)
		So(SetLevelString("WARNING"), ShouldBeNil)
		So(SetLevelString(""), ShouldBeNil)
		So(SetLevelString("loud"), ShouldNotBeNil)
	})
}

func TestDiscard(t *testing.T) {
	Convey("Given a discarding logger", t, func() {
		l := Discard().Named("quiet")

		Convey("Then logging at any level is a no-op", func() {
			So(func() {
				l.Error(context.Background(), "dropped", Error(errors.New("boom")))
				l.Info(context.Background(), "dropped")
			}, ShouldNotPanic)
		})
	})
}
