package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	formsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forms",
			Name:      "recorded_total",
			Help:      "Auto-fill attempts recorded, by outcome.",
		},
		[]string{"status"},
	)

	fieldsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forms",
			Name:      "fields_completed_total",
			Help:      "Form fields filled across all recorded attempts.",
		},
	)

	resumeUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resumes",
			Name:      "uploads_total",
			Help:      "Resume uploads, by result.",
		},
		[]string{"result"},
	)
)

func ObserveFormRecorded(status string, fieldsCompleted int) {
	formsRecordedTotal.WithLabelValues(status).Inc()
	if fieldsCompleted > 0 {
		fieldsCompletedTotal.Add(float64(fieldsCompleted))
	}
}

// ObserveResumeUpload counts an upload attempt; result is "accepted",
// "rejected", "rate_limited" or "infected".
func ObserveResumeUpload(result string) {
	resumeUploadsTotal.WithLabelValues(result).Inc()
}
