package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/boicualexandru/scraping-calendis"

// Metrics holds the scraper instruments. A nil *Metrics records nothing.
type Metrics struct {
	RunCount            metric.Int64Counter
	FetchDuration       metric.Float64Histogram
	SessionRenewalCount metric.Int64Counter
	SlotsMatchedCount   metric.Int64Counter
	NotificationCount   metric.Int64Counter
}

// Setup installs OTLP/gRPC trace, metric and log providers and starts Go runtime metrics.
// The returned function flushes and shuts all of them down.
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, errors.Join(err, tracerProvider.Shutdown(ctx))
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		return nil, errors.Join(err, meterProvider.Shutdown(ctx), tracerProvider.Shutdown(ctx))
	}

	logExporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(endpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return nil, errors.Join(err, meterProvider.Shutdown(ctx), tracerProvider.Shutdown(ctx))
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(loggerProvider)

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			loggerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
			tracerProvider.Shutdown(ctx),
		)
	}

	return shutdown, nil
}

// InitMetrics creates the scraper instruments on the global meter provider
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	runCount, err := meter.Int64Counter(
		"scraper.run.count",
		metric.WithDescription("Number of scrape runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"scraper.fetch.duration",
		metric.WithDescription("Availability fetch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	renewalCount, err := meter.Int64Counter(
		"scraper.session.renewal.count",
		metric.WithDescription("Number of session renewals by outcome"),
	)
	if err != nil {
		return nil, err
	}

	matchedCount, err := meter.Int64Counter(
		"scraper.slots.matched.count",
		metric.WithDescription("Number of slots inside the time window"),
	)
	if err != nil {
		return nil, err
	}

	notificationCount, err := meter.Int64Counter(
		"scraper.notification.count",
		metric.WithDescription("Number of notifications by channel and status"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RunCount:            runCount,
		FetchDuration:       fetchDuration,
		SessionRenewalCount: renewalCount,
		SlotsMatchedCount:   matchedCount,
		NotificationCount:   notificationCount,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError records an error in the span and marks it failed
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// RecordRun counts a finished run
func (m *Metrics) RecordRun(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.RunCount.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordFetch records one availability call
func (m *Metrics) RecordFetch(ctx context.Context, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attribute.String("result", result)))
}

// RecordSessionRenewal counts a re-login attempt
func (m *Metrics) RecordSessionRenewal(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.SessionRenewalCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordSlotsMatched counts the slots of a date that passed the window filter
func (m *Metrics) RecordSlotsMatched(ctx context.Context, date string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.SlotsMatchedCount.Add(ctx, int64(count), metric.WithAttributes(attribute.String("date", date)))
}

// RecordNotification counts a delivery attempt
func (m *Metrics) RecordNotification(ctx context.Context, channel, status string) {
	if m == nil {
		return
	}
	m.NotificationCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("status", status),
	))
}
