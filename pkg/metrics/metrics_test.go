package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.lookups.WithLabelValues("ok").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_lookups_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When two managers share one registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording lookup outcomes", func() {
			before := testutil.ToFloat64(globalManager.lookups.WithLabelValues("no_match"))
			RecordLookup("no_match")
			RecordLookup("no_match")

			Convey("Then the outcome counter advances", func() {
				So(testutil.ToFloat64(globalManager.lookups.WithLabelValues("no_match")), ShouldEqual, before+2)
			})
		})

		Convey("When recording parsed criteria", func() {
			before := testutil.ToFloat64(globalManager.criteriaKeys.WithLabelValues("style"))
			RecordCriteria([]string{"style", "vegan"})

			Convey("Then each key is counted", func() {
				So(testutil.ToFloat64(globalManager.criteriaKeys.WithLabelValues("style")), ShouldEqual, before+1)
			})
		})

		Convey("When recording audit activity", func() {
			before := testutil.ToFloat64(globalManager.auditFailures.WithLabelValues("queue_full"))
			RecordAuditFailure("queue_full")
			UpdateAuditQueueSize(3)
			UpdateAuditQueueCapacity(10)

			Convey("Then failures and gauges are visible", func() {
				So(testutil.ToFloat64(globalManager.auditFailures.WithLabelValues("queue_full")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.auditQueueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.auditQueueCap), ShouldEqual, 10)
			})
		})

		Convey("When recording the remaining collectors", func() {
			So(func() {
				RecordMatches(4)
				RecordStoreLatency("records", "query", 1.5)
				RecordStoreError("audit", "append")
				UpdateRestaurantCount(12)
				RecordRestaurantCreated()
				RecordAuditAppend()
				UpdateAuditWorkerCount(2)
				RecordAuthDecision("denied")
				RecordHTTPRequest("recommendations", "GET", "200")
				RecordHTTPRequestDuration("recommendations", "GET", "200", 3)
				RecordHTTPError("recommendations", "GET", "not_found")
				RecordRateLimited()
				RecordPanic()
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)

			Convey("Then the registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				joined := strings.Join(names, ",")
				So(joined, ShouldContainSubstring, "platefinder_service_restaurants")
				So(joined, ShouldContainSubstring, "platefinder_service_http_requests_total")
				So(joined, ShouldContainSubstring, "platefinder_service_auth_decisions_total")
			})
		})
	})
}
