package telemetry

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/blogicum/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestInitTracerDisabled(t *testing.T) {
	tp, err := InitTracer(Config{Enabled: false})
	assert.NoError(t, err)
	assert.Nil(t, tp)
}

func TestSamplingRateIsClamped(t *testing.T) {
	assert.Equal(t, 1.0, samplingRate(3))
	assert.Equal(t, 0.25, samplingRate(0.25))
	assert.Equal(t, 0.0, samplingRate(-1))
}

func TestBusinessEventsRecordSpans(t *testing.T) {
	recorder := withRecorder(t)
	be := NewBusinessEvents()

	_, span := be.TraceCreatePost(context.Background(), 3, true)
	RecordError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "blog.create_post", spans[0].Name())
	assert.Equal(t, "Error", spans[0].Status().Code.String())
}

func TestGORMTracingPlugin(t *testing.T) {
	recorder := withRecorder(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Use(GORMTracingPlugin("sqlite")))
	require.NoError(t, db.AutoMigrate(&models.Location{}))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&models.Location{Name: "Kazan", IsPublished: true}).Error)

	var locations []models.Location
	require.NoError(t, db.WithContext(ctx).Find(&locations).Error)

	var missing models.Location
	err = db.WithContext(ctx).First(&missing, 999).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, span := range recorder.Ended() {
		byName[span.Name()] = span
	}
	require.Contains(t, byName, "db.insert locations")
	require.Contains(t, byName, "db.select locations")

	selectSpan := byName["db.select locations"]
	assert.Contains(t, selectSpan.Attributes(), attribute.String(blogResourceKey, "location"))
	assert.Contains(t, selectSpan.Attributes(), attribute.String(dbSystemKey, "sqlite"))

	// A lookup that finds nothing is not a failed span
	for _, span := range recorder.Ended() {
		assert.NotEqual(t, "Error", span.Status().Code.String(), span.Name())
	}
}

func TestSpanNameAndStatementTruncation(t *testing.T) {
	assert.Equal(t, "db.update posts", spanName("UPDATE", "posts"))
	assert.Equal(t, "short", truncateStatement("short"))

	long := truncateStatement(strings.Repeat("x", maxStatementLen+10))
	assert.True(t, strings.HasSuffix(long, "... (truncated)"))
	assert.Len(t, long, maxStatementLen+len("... (truncated)"))
}
