package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with degenerate options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults survive", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "frontoffice")
				So(manager.subsystem, ShouldEqual, "league")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording negotiation metrics", func() {
			Convey("Then the package helpers should not panic", func() {
				So(func() {
					RecordSessionOpened()
					RecordOfferEvaluated()
					RecordOfferEvaluated()
					RecordOfferAccepted()
					RecordLowballOffer()
					RecordSessionExpired()
					RecordEvaluationLatency(2.5)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording market metrics", func() {
			So(func() {
				RecordBidSubmitted()
				RecordBidDuplicate()
				RecordPlayerSigned()
				RecordOpenFASigning()
				RecordMarketCycleLatency(120.0)
			}, ShouldNotPanic)
		})

		Convey("When recording store metrics", func() {
			So(func() {
				UpdateStoreShardCount(8)
				UpdateStoreSessionsTotal(1000)
				UpdateStoreContractsTotal(500)
				UpdateStoreRecordsPerShard("0", 125)
				RecordStoreUpdateLatency(5.0)
				RecordStoreQueryLatency(2.0)
			}, ShouldNotPanic)
		})

		Convey("When recording queue and worker metrics", func() {
			So(func() {
				UpdateQueueSize(1000)
				UpdateQueueCapacity(10000)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(20.0)
				UpdateWorkerCount(8)
				UpdateWorkerActiveCount(4)
				UpdateWorkerIdleCount(4)
				RecordWorkerProcessingLatency(50.0)
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("When recording error and system metrics", func() {
			So(func() {
				RecordErrorByComponent("repository", "not_found")
				RecordErrorByComponent("", "")
				UpdateSystemMemoryUsage(1024 * 1024 * 100)
				UpdateSystemGoroutineCount(100)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordOfferEvaluated()
						UpdateQueueSize(1000 + j)
						RecordEvaluationLatency(float64(j))
						RecordErrorByComponent("repository", "stale_session")
					}
					done <- true
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("Then it should be gatherable", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeEmpty)
		})
	})
}
