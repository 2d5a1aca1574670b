package httpapi

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	SuccessfulRequests *prometheus.CounterVec
	BadRequests        *prometheus.CounterVec
	PostsCreated       prometheus.Counter
	MessagesSent       prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SuccessfulRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_request",
				Help: "Total number of successful (2xx) HTTP requests",
			},
			[]string{"path"},
		),
		BadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unsuccessful_request",
				Help: "Total number of unsuccessful (4xx/5xx) HTTP requests",
			},
			[]string{"path"},
		),
		PostsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "posts_created",
				Help: "Total number of posts created",
			},
		),
		MessagesSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "messages_sent",
				Help: "Total number of direct messages sent",
			},
		),
	}
	reg.MustRegister(m.SuccessfulRequests, m.BadRequests, m.PostsCreated, m.MessagesSent)
	return m
}
