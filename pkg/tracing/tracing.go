package tracing

import (
	"context"
	"fmt"

	"scan_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
)

var (
	// set once at startup, before InitTracer
	serviceName = "default"
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

type Config struct {
	Host string
	Port int
}

func InitTracer(conf Config) (opentracing.Tracer, func(), error) {
	cfg := &jCfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jCfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jCfg.ReporterConfig{
			LogSpans:           true,
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	jMetricsFactory := metrics.NullFactory
	tracer, closer, err := cfg.NewTracer(
		jCfg.Metrics(jMetricsFactory),
	)
	if err != nil {
		return nil, nil, err
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, func() {
		if err := closer.Close(); err != nil {
			logger.Error("Error closing Jaeger tracer: %v", err)
		}
	}, nil
}

// StartSpan opens a child span of whatever span ctx carries; with no tracer
// installed the global noop tracer makes this free.
func StartSpan(ctx context.Context, op string, tags opentracing.Tags) (opentracing.Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, op, tags)
	return span, ctx
}

// Fail marks span as errored and attaches err.
func Fail(span opentracing.Span, err error) {
	if err == nil {
		return
	}
	ext.Error.Set(span, true)
	span.SetTag("error.message", err.Error())
}
