package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		Convey("When created with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should register all engine metrics", func() {
				So(manager, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 10)
			})
		})

		Convey("When created with custom namespace and subsystem", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("franchise"),
				WithSubsystem("engine"),
			)

			Convey("Then metric names should carry the namespace", func() {
				So(manager, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				for _, family := range families {
					So(family.GetName(), ShouldStartWith, "franchise_engine_")
				}
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording simulation activity", func() {
			RecordGameSimulated()
			RecordPostseasonGame()
			RecordOvertimePeriod()
			RecordDrives(24)
			RecordCombinedPoints(44)
			RecordInjury("minor")
			RecordFatigueLevel(35.5)
			RecordRecapAccepted()
			RecordRecapRejected()
			RecordRecapFallback()
			RecordStandingsRecompute()
			UpdateScheduledGames(272)
			UpdateQueueSize(3)
			UpdateQueueCapacity(64)
			UpdateQueueUtilization(0.05)
			UpdateWorkerActiveCount(4)
			RecordWorkerLatency(1.5)

			Convey("Then the custom registry should gather without error", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
