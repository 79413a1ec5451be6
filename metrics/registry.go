// Package metrics wires this broker's request/connection counters into a
// go-metrics registry, the way the teacher registers its own per-topic
// meters.
package metrics

import (
	"time"

	gometrics "github.com/rcrowley/go-metrics"

	"github.com/fork-the-planet/kraft-broker/logging"
)

// Registry holds the named counters this broker reports, registered once
// at startup and incremented from the dispatcher and connection handler,
// grounded on the getOrRegisterTopicMeter idiom the teacher uses in its
// own request encoders.
type Registry struct {
	reg gometrics.Registry

	apiVersionsRequests         gometrics.Counter
	describeTopicPartitionsRequests gometrics.Counter
	fetchRequests               gometrics.Counter
	decodeErrors                gometrics.Counter
	// activeConnections is a Counter rather than a Gauge: go-metrics'
	// StandardGauge.Update is a plain (non-atomic) read-modify-write, which
	// would lose updates under the concurrent Inc/Dec this sees from every
	// connection goroutine (§5). StandardCounter's Inc/Dec are atomic.
	activeConnections gometrics.Counter
}

// NewRegistry creates and registers every counter this broker reports.
func NewRegistry() *Registry {
	reg := gometrics.NewRegistry()
	return &Registry{
		reg:                              reg,
		apiVersionsRequests:              gometrics.GetOrRegisterCounter("requests.apiversions.count", reg),
		describeTopicPartitionsRequests:  gometrics.GetOrRegisterCounter("requests.describetopicpartitions.count", reg),
		fetchRequests:                    gometrics.GetOrRegisterCounter("requests.fetch.count", reg),
		decodeErrors:                     gometrics.GetOrRegisterCounter("requests.decode_errors.count", reg),
		activeConnections:                gometrics.GetOrRegisterCounter("connections.active", reg),
	}
}

func (r *Registry) IncApiVersions()              { r.apiVersionsRequests.Inc(1) }
func (r *Registry) IncDescribeTopicPartitions()  { r.describeTopicPartitionsRequests.Inc(1) }
func (r *Registry) IncFetch()                    { r.fetchRequests.Inc(1) }
func (r *Registry) IncDecodeErrors()             { r.decodeErrors.Inc(1) }
func (r *Registry) ConnectionOpened()            { r.activeConnections.Inc(1) }
func (r *Registry) ConnectionClosed()            { r.activeConnections.Dec(1) }

// StartPeriodicLog writes a one-line snapshot of every counter through
// log every interval, until stop is closed. Adapted from
// go-metrics' own log.Log periodic writer, redirected at this broker's
// logging.Logger instead of a stdlib *log.Logger.
func (r *Registry) StartPeriodicLog(log logging.Logger, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.logSnapshot(log)
			case <-stop:
				return
			}
		}
	}()
}

func (r *Registry) logSnapshot(log logging.Logger) {
	log.Infof("metrics snapshot: apiversions=%d describetopicpartitions=%d fetch=%d decode_errors=%d connections=%d",
		r.apiVersionsRequests.Count(),
		r.describeTopicPartitionsRequests.Count(),
		r.fetchRequests.Count(),
		r.decodeErrors.Count(),
		r.activeConnections.Count(),
	)
}
