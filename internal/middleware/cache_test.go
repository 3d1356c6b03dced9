package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func boardContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/parking/slots")
	return c
}

func TestCacheKeySeparatesQueries(t *testing.T) {
	full := cacheKey("slotboard", boardContext(t, "/v1/parking/slots"))
	floor2 := cacheKey("slotboard", boardContext(t, "/v1/parking/slots?floor=2"))
	floor3 := cacheKey("slotboard", boardContext(t, "/v1/parking/slots?floor=3"))

	require.NotEqual(t, full, floor2, "floor boards cache independently")
	require.NotEqual(t, floor2, floor3)
	require.Equal(t, floor2, cacheKey("slotboard", boardContext(t, "/v1/parking/slots?floor=2")))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	body := []byte(`[{"slot_number":1}]`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	require.Equal(t, body, gotBody)

	// Garbage and short inputs are rejected, never replayed.
	_, _, _, ok = decodePayload([]byte("short"))
	require.False(t, ok)
}

func TestCaptureWriterTracksFullSize(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 10}

	_, err := cw.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)

	// The client sees the whole body; the capture stops at the limit
	// and size records the true length so the store step can skip it.
	require.Equal(t, "0123456789abcdef", rec.Body.String())
	require.Equal(t, "0123456789", cw.buf.String())
	require.Equal(t, int64(16), cw.size)
}
