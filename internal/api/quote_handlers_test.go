package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateQuote(t *testing.T, env *testEnv) (token string) {
	t.Helper()
	resp, body := env.post(t, "/generate-quote", map[string]string{
		"record_id": "recCLI",
		"password":  "poutine",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ = body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "/quote/"+token, body["url"])
	return token
}

func TestGenerateQuoteRequiresRecordID(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.post(t, "/generate-quote", map[string]string{"password": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuotePageUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get(t, "/quote/not-a-token")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQuoteViewGating(t *testing.T) {
	env := newTestEnv(t)
	token := generateQuote(t, env)

	// Ungated: the view is locked.
	resp, _ := env.get(t, "/quote/"+token+"/view")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong password: still locked.
	resp, _ = env.post(t, "/quote/"+token+"/auth", map[string]string{"password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = env.get(t, "/quote/"+token+"/view")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Correct password unlocks this session.
	resp, body := env.post(t, "/quote/"+token+"/auth", map[string]string{"password": "poutine"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["authenticated"])

	resp, body = env.get(t, "/quote/"+token+"/view")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "recCLI", body["record_id"])
	assert.Equal(t, "Dana Roy", body["client_name"])
	assert.Equal(t, 12.0, body["guest_count"])
}

func TestQuoteAuthDoesNotLeakAcrossSessions(t *testing.T) {
	env := newTestEnv(t)
	token := generateQuote(t, env)

	resp, _ := env.post(t, "/quote/"+token+"/auth", map[string]string{"password": "poutine"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A different browser (no cookies) is still locked out.
	fresh := &http.Client{}
	r, err := fresh.Get(env.srv.URL + "/quote/" + token + "/view")
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, r.StatusCode)
}

func TestQuotePatchEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	token := generateQuote(t, env)

	resp, _ := env.post(t, "/quote/"+token+"/update-event", map[string]string{"event_id": "recEV1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.post(t, "/quote/"+token+"/update-field", map[string]string{
		"field": "Number of Guests",
		"value": "15",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestQuoteUpdateFieldAllowList(t *testing.T) {
	env := newTestEnv(t)
	token := generateQuote(t, env)

	resp, _ := env.post(t, "/quote/"+token+"/auth", map[string]string{"password": "poutine"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.post(t, "/quote/"+token+"/update-field", map[string]string{
		"field": "Number of Guests",
		"value": "15",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["updated"])

	resp, _ = env.post(t, "/quote/"+token+"/update-field", map[string]string{
		"field": "Grand Total",
		"value": "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.post(t, "/quote/"+token+"/update-field", map[string]string{
		"field": "Number of Guests",
		"value": "a dozen",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuoteUpdateEventRequiresEventID(t *testing.T) {
	env := newTestEnv(t)
	token := generateQuote(t, env)

	resp, _ := env.post(t, "/quote/"+token+"/auth", map[string]string{"password": "poutine"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.post(t, "/quote/"+token+"/update-event", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
