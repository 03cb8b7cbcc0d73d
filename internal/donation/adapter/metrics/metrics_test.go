package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vitamend-data/internal/donation/adapter/persistence/adaptertest"
	"vitamend-data/internal/donation/adapter/persistence/mock"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedAdapter_Contract(t *testing.T) {
	adaptertest.Run(t, adaptertest.Harness{
		New: func(t *testing.T) repository.DatabaseAdapter {
			return Wrap(mock.New(nil), NewCollector(prometheus.NewRegistry()))
		},
		AddMedicine: func(t *testing.T, a repository.DatabaseAdapter, m model.Medicine) {
			a.(*InstrumentedAdapter).Unwrap().(*mock.Adapter).AddMedicine(m)
		},
		Storage: true,
		Pause:   2 * time.Millisecond,
	})
}

func TestInstrumentedAdapter_CountsOutcomes(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	a := Wrap(mock.New(nil), c)
	ctx := context.Background()

	a.InitDatabase(ctx)
	a.GetMedicines(ctx)
	a.GetMedicines(ctx)
	assert.Nil(t, a.GetDonationByID(ctx, "missing"))
	a.UpdateDonationStatus(ctx, "missing", model.DonationStatusVerified)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("mock", "InitDatabase", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues("mock", "GetMedicines", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("mock", "GetDonationByID", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("mock", "UpdateDonationStatus", OutcomeFailure)))
	assert.Equal(t, 4, testutil.CollectAndCount(c.duration))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordOperation("supabase", "GetDonations", true, 10*time.Millisecond)

	app := fiber.New()
	app.Get("/metrics", Handler(reg))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `vitamend_db_operations_total{operation="GetDonations",outcome="success",provider="supabase"} 1`))
	assert.Contains(t, string(body), "vitamend_db_operation_duration_seconds_bucket")
}
