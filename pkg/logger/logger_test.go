package logger

import (
	"context"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("When fetching the global instance", func() {
			l := Get()

			Convey("Then it should log without panicking", func() {
				ctx := context.Background()
				So(func() {
					l.Info(ctx, "season started", Int("teams", 32))
					l.Warn(ctx, "bye-week imbalance", String("team", "BUF"))
					l.Debug(ctx, "drive resolved", Float64("yards", 38))
				}, ShouldNotPanic)
			})

			Convey("Then named loggers should derive from it", func() {
				So(Named("standings"), ShouldNotBeNil)
			})
		})

		Convey("When parsing level strings", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			So(SetLevelString("WARN"), ShouldBeNil)
			So(SetLevelString(""), ShouldBeNil)
			So(SetLevelString("verbose"), ShouldNotBeNil)

			SetLevel(slog.LevelInfo)
		})
	})
}
