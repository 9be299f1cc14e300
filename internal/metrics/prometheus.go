package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventhub"

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	usersRegistered prometheus.Counter
	logins          *prometheus.CounterVec
	eventsCreated   prometheus.Counter
	eventsUpdated   prometheus.Counter
	eventsDeleted   prometheus.Counter
	registrations   *prometheus.CounterVec
	activity        *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_registered_total",
			Help:      "Number of user accounts created.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		eventsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_created_total",
			Help:      "Number of events created.",
		}),
		eventsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_updated_total",
			Help:      "Number of event updates.",
		}),
		eventsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_deleted_total",
			Help:      "Number of events deleted.",
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Event registration attempts by outcome.",
		}, []string{"outcome"}),
		activity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_published_total",
			Help:      "Activity stream messages by publish status.",
		}, []string{"status"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"scope"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		c.usersRegistered,
		c.logins,
		c.eventsCreated,
		c.eventsUpdated,
		c.eventsDeleted,
		c.registrations,
		c.activity,
		c.rateLimited,
		c.requestDuration,
	)

	return c
}

func (c *Collector) IncUserRegistered() { c.usersRegistered.Inc() }

func (c *Collector) IncLogin(outcome string) { c.logins.WithLabelValues(outcome).Inc() }

func (c *Collector) IncEventCreated() { c.eventsCreated.Inc() }

func (c *Collector) IncEventUpdated() { c.eventsUpdated.Inc() }

func (c *Collector) IncEventDeleted() { c.eventsDeleted.Inc() }

func (c *Collector) IncRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

func (c *Collector) IncActivityPublished(status string) {
	c.activity.WithLabelValues(status).Inc()
}

func (c *Collector) IncRateLimited(scope string) {
	c.rateLimited.WithLabelValues(scope).Inc()
}

// ObserveRequest records request latency. route should be the route
// pattern, not the raw path, to keep label cardinality bounded.
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler returns the HTTP handler for Prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
