package metrics

import (
	"daily-shoutout/internal/database"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"
)

// LoadFromDB restores persisted counters so totals survive restarts
func (m *Metrics) LoadFromDB() {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	attempts, _ := database.GetMetric("selection_attempts_total")
	announcements, _ := database.GetMetric("announcements_total")

	m.SelectionAttempts.Add(attempts)
	m.Announcements.Add(announcements)

	loadLabeledMetrics("requests_total", func(_, result string, value float64) {
		m.Requests.WithLabelValues(result).Add(value)
	})
	loadLabeledMetrics("candidates_rejected_total", func(_, reason string, value float64) {
		m.CandidatesRejected.WithLabelValues(reason).Add(value)
	})

	log.Debug("Metrics loaded from database.")
}

func loadLabeledMetrics(metricName string, callback func(labelKey, labelValue string, value float64)) {
	metricsWithLabels, err := database.GetMetricsWithLabels(metricName)
	if err != nil {
		log.Errorf("Failed to load metric %s: %v", metricName, err)
		return
	}
	for labelKey, labelValues := range metricsWithLabels {
		for labelValue, value := range labelValues {
			callback(labelKey, labelValue, value)
		}
	}
}

// SaveToDB writes the current counter values to the database
func (m *Metrics) SaveToDB() {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	saveMetric("selection_attempts_total", GetMetricValue(m.SelectionAttempts))
	saveMetric("announcements_total", GetMetricValue(m.Announcements))

	saveLabeledMetrics("requests_total", "result", m.Requests)
	saveLabeledMetrics("candidates_rejected_total", "reason", m.CandidatesRejected)

	log.Debug("Metrics saved to database.")
}

func saveMetric(name string, value float64) {
	if err := database.SaveMetric(name, value); err != nil {
		log.Errorf("Failed to save metric %s: %v", name, err)
	}
}

func saveLabeledMetrics(metricName, labelName string, vec *prometheus.CounterVec) {
	metricChan := make(chan prometheus.Metric, 1)
	go func() {
		vec.Collect(metricChan)
		close(metricChan)
	}()

	for metric := range metricChan {
		metricProto := &dto.Metric{}
		if err := metric.Write(metricProto); err != nil {
			log.Errorf("Failed to read %s metric: %v", metricName, err)
			continue
		}
		var labelValue string
		for _, label := range metricProto.Label {
			if label.GetName() == labelName {
				labelValue = label.GetValue()
			}
		}
		if err := database.SaveMetricWithLabels(metricName, labelName, labelValue, metricProto.GetCounter().GetValue()); err != nil {
			log.Errorf("Failed to save metric %s[%s=%s]: %v", metricName, labelName, labelValue, err)
		}
	}
}

// GetMetricValue reads the value of a single counter or gauge
func GetMetricValue(metric prometheus.Collector) float64 {
	var metricValue float64
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Errorf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		metricValue = metricProto.Counter.GetValue()
	} else if metricProto.Gauge != nil {
		metricValue = metricProto.Gauge.GetValue()
	}
	return metricValue
}
