package metrics

/* adapted from https://github.com/zsais/go-gin-prometheus
edits:
- replace slog with a small logger interface
- remove push gateway and request/response size summaries
*/

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	Type:        "counter_vec",
	Args:        []string{"code", "method", "url"}}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"code", "method", "url"},
}

var standardMetrics = []*Metric{
	reqCnt,
	reqDur,
}

var defaultMetricPath = "/metrics"

type Logger interface {
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// RequestCounterURLLabelMappingFn controls the cardinality of the "url" label.
// Supply a function mapping the request to its route template so that
// "/traders/123" and "/traders/456" share one series.
type RequestCounterURLLabelMappingFn func(c *gin.Context) string

// Prometheus contains the metrics gathered by the instance and its path.
type Prometheus struct {
	reqCnt        *prometheus.CounterVec
	reqDur        *prometheus.HistogramVec
	listenAddress string

	MetricsList []*Metric
	MetricsPath string

	ReqCntURLLabelMappingFn RequestCounterURLLabelMappingFn

	logger Logger
}

type NewPrometheusOptions struct {
	Subsystem               string
	MetricsList             []*Metric
	MetricsPath             string
	ReqCntURLLabelMappingFn func(c *gin.Context) string
	Logger                  Logger
}

// NewPrometheus generates a new set of metrics with a certain subsystem name.
func NewPrometheus(opts NewPrometheusOptions) *Prometheus {
	metricsList := standardMetrics
	if len(opts.MetricsList) > 0 {
		metricsList = append(metricsList, opts.MetricsList...)
	}
	metricsPath := defaultMetricPath
	if opts.MetricsPath != "" {
		metricsPath = opts.MetricsPath
	}
	mapping := opts.ReqCntURLLabelMappingFn
	if mapping == nil {
		mapping = func(c *gin.Context) string { return c.Request.URL.Path }
	}

	p := &Prometheus{
		MetricsList:             metricsList,
		MetricsPath:             metricsPath,
		ReqCntURLLabelMappingFn: mapping,
		logger:                  opts.Logger,
	}
	p.registerMetrics(opts.Subsystem)
	return p
}

// SetListenAddress sets a separate address for the metrics endpoint; when set,
// Use starts a dedicated listener instead of exposing /metrics on the service
// router.
func (p *Prometheus) SetListenAddress(address string) {
	p.listenAddress = address
}

func (p *Prometheus) registerMetrics(subsystem string) {
	for _, metricDef := range p.MetricsList {
		metric := NewMetric(metricDef, subsystem)
		if err := prometheus.Register(metric); err != nil && p.logger != nil {
			p.logger.Errorf("%s could not be registered in Prometheus: %v", metricDef.Name, err)
		}
		switch metricDef {
		case reqCnt:
			p.reqCnt = metric.(*prometheus.CounterVec)
		case reqDur:
			p.reqDur = metric.(*prometheus.HistogramVec)
		}
		metricDef.MetricCollector = metric
	}
}

// Use adds the middleware to the gin engine and exposes the metrics endpoint.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	if p.listenAddress != "" {
		router := gin.New()
		router.GET(p.MetricsPath, gin.WrapH(promhttp.Handler()))
		go func() {
			if err := router.Run(p.listenAddress); err != nil && p.logger != nil {
				p.logger.Errorf("metrics listener error: %v", err)
			}
		}()
		return
	}
	e.GET(p.MetricsPath, gin.WrapH(promhttp.Handler()))
}

// HandlerFunc defines the handler used by the middleware.
func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		url := p.ReqCntURLLabelMappingFn(c)
		elapsed := float64(time.Since(start).Milliseconds())

		p.reqDur.WithLabelValues(status, c.Request.Method, url).Observe(elapsed)
		p.reqCnt.WithLabelValues(status, c.Request.Method, url).Inc()
	}
}
