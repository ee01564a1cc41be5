package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/username/dividendtax/backend/src/config"
	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
	"github.com/username/dividendtax/backend/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

type stubReportService struct {
	result *services.ReportResult
	err    error
}

func (s stubReportService) GenerateReport(inputPath, source string) (*services.ReportResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestServer(svc services.ReportService) *httptest.Server {
	cfg := &config.AppConfig{InputFile: "statement.xlsx", HomeCurrency: "PLN"}
	return httptest.NewServer(NewRouter(NewReportHandler(svc, cfg)))
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(stubReportService{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
}

func TestHandleGetReport(t *testing.T) {
	report := &models.DividendReport{
		StatementCurrency: "USD",
		HomeCurrency:      "PLN",
		Rows:              []models.ReportRow{{Date: "2023-07-12", Instrument: "SBUX.US"}},
		TotalTaxDue:       1.55,
		GeneratedAt:       time.Now().UTC(),
	}
	server := newTestServer(stubReportService{result: &services.ReportResult{Report: report}})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded models.DividendReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.Equal(t, "USD", decoded.StatementCurrency)
	require.Len(t, decoded.Rows, 1)
	require.InDelta(t, 1.55, decoded.TotalTaxDue, 1e-9)
}

func TestHandleGetReportError(t *testing.T) {
	server := newTestServer(stubReportService{err: errors.New("bad statement")})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Contains(t, body["error"], "bad statement")
}

func TestHandleGetReportEventsEmpty(t *testing.T) {
	result := &services.ReportResult{Report: &models.DividendReport{}, Events: nil}
	server := newTestServer(stubReportService{result: result})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/report/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var events []models.DividendEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&events))
	require.Empty(t, events)
}
