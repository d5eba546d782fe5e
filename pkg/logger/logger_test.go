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
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(SetLevelString("info"), ShouldBeNil)
		l, err := New(&buf, "json")
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			l.Named("matcher").Info(ctx, "lookup", String("q", "vegan"), Int("hits", 2), Error(errors.New("boom")))

			Convey("Then the record carries message, fields, logger name and source", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "lookup")
				So(rec["q"], ShouldEqual, "vegan")
				So(rec["hits"], ShouldEqual, float64(2))
				So(rec["logger"], ShouldEqual, "matcher")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the configured level", func() {
			l.Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When lowering the level to debug", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			l.Debug(ctx, "visible")

			Convey("Then debug records are written", func() {
				So(strings.Contains(buf.String(), "visible"), ShouldBeTrue)
			})
		})
	})
}

func TestLoggerConfigErrors(t *testing.T) {
	Convey("Given invalid logger settings", t, func() {
		Convey("An unknown format is rejected", func() {
			_, err := New(&bytes.Buffer{}, "xml")
			So(err, ShouldNotBeNil)
		})

		Convey("An unknown level is rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
