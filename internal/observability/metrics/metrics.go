package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "monitoring_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	tickTotal   *prometheus.CounterVec
	tickLatency *prometheus.HistogramVec

	alarmEventsTotal *prometheus.CounterVec

	pointReadsTotal   *prometheus.CounterVec
	pointWritesTotal  *prometheus.CounterVec
	staleWritesTotal  prometheus.Counter
	triggerExecsTotal *prometheus.CounterVec

	pidStateResetsTotal prometheus.Counter
)

// Init registers observability metrics.
func Init() {
	registerOnce.Do(func() {
		tickTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "engine_ticks_total",
				Help: "Engine ticks by engine and result",
			},
			[]string{"engine", "result"},
		)
		tickLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "engine_tick_seconds",
				Help:    "Engine tick latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"engine"},
		)
		alarmEventsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarm_events_total",
				Help: "Alarm lifecycle events by type",
			},
			[]string{"type"},
		)
		pointReadsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "point_reads_total",
				Help: "Point store reads by result",
			},
			[]string{"result"},
		)
		pointWritesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "point_writes_total",
				Help: "Point store writes by result",
			},
			[]string{"result"},
		)
		staleWritesTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "point_stale_writes_total",
				Help: "Point writes rejected by last-write-wins",
			},
		)
		triggerExecsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "trigger_actions_total",
				Help: "Scheduled action executions by result",
			},
			[]string{"result"},
		)
		pidStateResetsTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "pid_state_resets_total",
				Help: "PID state resets caused by configuration hash changes",
			},
		)

		prometheus.MustRegister(
			tickTotal,
			tickLatency,
			alarmEventsTotal,
			pointReadsTotal,
			pointWritesTotal,
			staleWritesTotal,
			triggerExecsTotal,
			pidStateResetsTotal,
		)
	})
}

// ObserveTick records one engine tick.
func ObserveTick(engine string, started time.Time, err error) {
	if tickTotal == nil || tickLatency == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	tickTotal.WithLabelValues(engine, result).Inc()
	tickLatency.WithLabelValues(engine).Observe(time.Since(started).Seconds())
}

// IncAlarmEvent counts an alarm lifecycle event.
func IncAlarmEvent(eventType string) {
	if alarmEventsTotal == nil {
		return
	}
	alarmEventsTotal.WithLabelValues(eventType).Inc()
}

// IncPointRead counts a point store read.
func IncPointRead(err error) {
	incResult(pointReadsTotal, err)
}

// IncPointWrite counts a point store write.
func IncPointWrite(err error) {
	incResult(pointWritesTotal, err)
}

// IncStaleWrite counts a write rejected by last-write-wins.
func IncStaleWrite() {
	if staleWritesTotal == nil {
		return
	}
	staleWritesTotal.Inc()
}

// IncTriggerAction counts a scheduled action execution.
func IncTriggerAction(err error) {
	incResult(triggerExecsTotal, err)
}

// IncPIDStateReset counts a config-hash state reset.
func IncPIDStateReset() {
	if pidStateResetsTotal == nil {
		return
	}
	pidStateResetsTotal.Inc()
}

func incResult(vec *prometheus.CounterVec, err error) {
	if vec == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	vec.WithLabelValues(result).Inc()
}
