// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry wires OpenTelemetry tracing and metrics for the catalog
// assistant. Until Start is called the exported Tracer and Meter are no-ops,
// so instrumentation points are always safe to use.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopm "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	noopt "go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentationName = "genai-product-catalog"

var (
	// Tracer is the tracer used around model invocations and workflow stages.
	Tracer trace.Tracer = noopt.Tracer{}
	// Meter is the meter for request and workflow counters.
	Meter metric.Meter = noopm.Meter{}
)

// Option configures telemetry startup.
type Option func(*options)

type options struct {
	endpoint       string
	serviceName    string
	serviceVersion string
}

// WithEndpoint sets the OTLP collector endpoint ("host:port", no scheme).
// When unset, OTEL_EXPORTER_OTLP_ENDPOINT is consulted, then localhost:4317.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithService sets the reported service name and version.
func WithService(name, version string) Option {
	return func(o *options) {
		o.serviceName = name
		o.serviceVersion = version
	}
}

// Start initializes OTLP trace and metric export over gRPC and installs the
// global Tracer and Meter. The returned clean function flushes and shuts
// down both providers.
func Start(ctx context.Context, opts ...Option) (clean func() error, err error) {
	o := &options{
		endpoint:       collectorEndpoint(),
		serviceName:    "catalog-assistant",
		serviceVersion: "v0.1.0",
	}
	for _, opt := range opts {
		opt(o)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(o.serviceName),
			semconv.ServiceVersion(o.serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create telemetry resource: %w", err)
	}

	conn, err := grpc.NewClient(o.endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect telemetry collector: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(traceExporter)),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	Tracer = otel.Tracer(instrumentationName)
	Meter = otel.Meter(instrumentationName)

	clean = func() error {
		var err error
		if tracerErr := tracerProvider.Shutdown(ctx); tracerErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown tracer provider: %w", tracerErr))
		}
		if meterErr := meterProvider.Shutdown(ctx); meterErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown meter provider: %w", meterErr))
		}
		return err
	}
	return clean, nil
}

func collectorEndpoint() string {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	return "localhost:4317"
}
