package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var postsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "social_posts_dispatched_total",
	Help: "Number of posts handed to a platform dispatcher",
}, []string{"platform", "result"})

var jobsScheduled = promauto.NewCounter(prometheus.CounterOpts{
	Name: "social_jobs_scheduled_total",
	Help: "Number of deferred posts accepted by the scheduler",
})

var jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "social_jobs_finished_total",
	Help: "Number of scheduled jobs that reached a terminal state",
}, []string{"platform", "status"})

var jobsPending = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "social_jobs_pending",
	Help: "Number of scheduled jobs waiting for their run time",
})

var analyticsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "social_analytics_collected_total",
	Help: "Number of account analytics collected, by metrics source",
}, []string{"platform", "source"})
