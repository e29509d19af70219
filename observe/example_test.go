package observe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/guidelinely/observe"
)

func ExampleConfig_Validate() {
	cfg := observe.Config{
		ServiceName: "guidelinely",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "zipkin"},
	}
	err := cfg.Validate()
	fmt.Println(errors.Is(err, observe.ErrInvalidTracingExporter))
	// Output:
	// true
}

func ExampleOpMeta_SpanName() {
	meta := observe.OpMeta{Name: "calculate_batch", Endpoint: "calculate/batch"}
	fmt.Println(meta.SpanName())
	// Output:
	// guidelinely.calculate_batch
}

func ExampleMiddleware_Wrap() {
	mw := observe.NopMiddleware()

	calc := mw.Wrap(func(ctx context.Context, op observe.OpMeta) (any, error) {
		return "ok from " + op.Name, nil
	})

	out, err := calc(context.Background(), observe.OpMeta{Name: "calculate"})
	fmt.Println(out, err)
	// Output:
	// ok from calculate <nil>
}

func ExampleNewLoggerWithWriter() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("warn", &buf)

	logger.Info(context.Background(), "dropped")
	logger.Warn(context.Background(), "kept", observe.Field{Key: "api_key", Value: "k"})

	fmt.Println(bytes.Count(buf.Bytes(), []byte("\n")))
	fmt.Println(bytes.Contains(buf.Bytes(), []byte(`"api_key":"[REDACTED]"`)))
	// Output:
	// 1
	// true
}
