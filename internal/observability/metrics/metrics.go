package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	AuthSignupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_signups_total",
			Help: "Total number of signup attempts.",
		},
		[]string{"service", "result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)

	RateLimitDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Rate limiter decisions per action.",
		},
		[]string{"service", "action", "result"},
	)

	AlertsBroadcastTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_broadcast_total",
			Help: "Alert broadcast deliveries.",
		},
		[]string{"service", "result"},
	)

	MailSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_sends_total",
			Help: "Transactional mail sends.",
		},
		[]string{"service", "kind", "result"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName}).(*prometheus.HistogramVec)
	AuthSignupsTotal = AuthSignupsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	AuthLoginsTotal = AuthLoginsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	RateLimitDecisionsTotal = RateLimitDecisionsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	AlertsBroadcastTotal = AlertsBroadcastTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	MailSendsTotal = MailSendsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthSignupsTotal,
		AuthLoginsTotal,
		RateLimitDecisionsTotal,
		AlertsBroadcastTotal,
		MailSendsTotal,
	)
}
