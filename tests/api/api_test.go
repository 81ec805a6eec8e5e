//go:build api

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceURL = "http://localhost:8080"

// TestAPI_FullFlow walks the whole registration lifecycle against a running
// service: browse classes, fetch a nonce, submit, then manage the record
// through the admin endpoints.
func TestAPI_FullFlow(t *testing.T) {
	waitForService(t)

	var nonce string
	var registrationID float64
	var deleteToken string

	t.Run("Step1_ListClasses", func(t *testing.T) {
		t.Log("STEP 1: List classes")
		t.Log("    Request:  GET /api/v1/classes")

		resp := get(t, serviceURL+"/api/v1/classes")
		assert.Equal(t, 200, resp.StatusCode)

		var classes []map[string]interface{}
		decodeJSON(t, resp, &classes)
		require.NotEmpty(t, classes, "the seeded classes should be listed")

		for _, c := range classes {
			t.Logf("    Class: %v seats=%v registered=%v available=%v",
				c["class_id"], c["max_seats"], c["registered"], c["available"])
		}
	})

	t.Run("Step2_FetchNonce", func(t *testing.T) {
		t.Log("STEP 2: Fetch submission nonce")
		t.Log("    Request:  GET /api/v1/registrations/nonce")

		resp := get(t, serviceURL+"/api/v1/registrations/nonce")
		assert.Equal(t, 200, resp.StatusCode)

		var nonceResp map[string]string
		decodeJSON(t, resp, &nonceResp)
		nonce = nonceResp["nonce"]
		require.NotEmpty(t, nonce)

		t.Log("    Result:   nonce issued")
	})

	t.Run("Step3_SubmitRegistration", func(t *testing.T) {
		t.Log("STEP 3: Submit registration")
		t.Log("    Request:  POST /api/v1/registrations")

		form := registrationForm(nonce)
		resp := postForm(t, serviceURL+"/api/v1/registrations", form)
		assert.Equal(t, 200, resp.StatusCode)

		var env map[string]interface{}
		decodeJSON(t, resp, &env)
		require.Equal(t, true, env["success"], "submission should succeed: %v", env["message"])

		data := env["data"].(map[string]interface{})
		registrationID = data["id"].(float64)
		orderCode := data["order_code"].(string)
		assert.Len(t, orderCode, 4)

		t.Logf("    Result:   id=%v order_code=%v", registrationID, orderCode)
	})

	t.Run("Step4_NonceIsSingleUse", func(t *testing.T) {
		t.Log("STEP 4: Reused nonce is rejected")
		t.Log("    Request:  POST /api/v1/registrations (same nonce)")

		resp := postForm(t, serviceURL+"/api/v1/registrations", registrationForm(nonce))
		assert.Equal(t, 403, resp.StatusCode, "a spent nonce must be refused")
		resp.Body.Close()

		t.Log("    Result:   HTTP 403 Forbidden")
	})

	t.Run("Step5_AdminList", func(t *testing.T) {
		t.Log("STEP 5: Admin list with search")
		t.Log("    Request:  GET /api/v1/admin/registrations?q=reed")

		resp := get(t, serviceURL+"/api/v1/admin/registrations?q=reed")
		assert.Equal(t, 200, resp.StatusCode)

		var list map[string]interface{}
		decodeJSON(t, resp, &list)
		assert.GreaterOrEqual(t, list["total"].(float64), float64(1))
		assert.Equal(t, float64(20), list["per_page"])

		t.Logf("    Result:   total=%v", list["total"])
	})

	t.Run("Step6_AdminGet", func(t *testing.T) {
		t.Log("STEP 6: Admin single view issues a delete token")
		t.Logf("    Request:  GET /api/v1/admin/registrations/%v", registrationID)

		resp := get(t, fmt.Sprintf("%s/api/v1/admin/registrations/%v", serviceURL, registrationID))
		assert.Equal(t, 200, resp.StatusCode)

		var reg map[string]interface{}
		decodeJSON(t, resp, &reg)
		assert.Equal(t, "pending", reg["payment_status"])
		assert.Equal(t, "pending", reg["reg_status"])

		deleteToken, _ = reg["delete_token"].(string)
		require.NotEmpty(t, deleteToken)

		t.Log("    Result:   HTTP 200 OK, delete token present")
	})

	t.Run("Step7_AdminUpdate", func(t *testing.T) {
		t.Log("STEP 7: Admin marks the registration paid and active")
		t.Logf("    Request:  PATCH /api/v1/admin/registrations/%v", registrationID)

		body := `{"payment_status":"paid","payment_amount":159.98,"reg_status":"active"}`
		resp := patch(t, fmt.Sprintf("%s/api/v1/admin/registrations/%v", serviceURL, registrationID), body)
		assert.Equal(t, 200, resp.StatusCode)

		var reg map[string]interface{}
		decodeJSON(t, resp, &reg)
		assert.Equal(t, "paid", reg["payment_status"])
		assert.Equal(t, "active", reg["reg_status"])

		t.Log("    Result:   HTTP 200 OK")
	})

	t.Run("Step8_DeleteWithoutTokenRejected", func(t *testing.T) {
		t.Log("STEP 8: Delete without the confirmation token")
		t.Logf("    Request:  DELETE /api/v1/admin/registrations/%v", registrationID)

		resp := del(t, fmt.Sprintf("%s/api/v1/admin/registrations/%v", serviceURL, registrationID))
		assert.Equal(t, 403, resp.StatusCode)
		resp.Body.Close()

		t.Log("    Result:   HTTP 403 Forbidden")
	})

	t.Run("Step9_DeleteWithToken", func(t *testing.T) {
		t.Log("STEP 9: Delete with the confirmation token")

		resp := del(t, fmt.Sprintf("%s/api/v1/admin/registrations/%v?token=%s",
			serviceURL, registrationID, url.QueryEscape(deleteToken)))
		assert.Equal(t, 204, resp.StatusCode)
		resp.Body.Close()

		// And it is gone.
		resp = get(t, fmt.Sprintf("%s/api/v1/admin/registrations/%v", serviceURL, registrationID))
		assert.Equal(t, 404, resp.StatusCode)
		resp.Body.Close()

		t.Log("    Result:   HTTP 204 No Content, record removed")
	})
}

// Helper functions

func registrationForm(nonce string) url.Values {
	form := url.Values{}
	form.Set("parent_first_name", "Jordan")
	form.Set("parent_last_name", "Reed")
	form.Set("parent_email", "jordan.reed@example.com")
	form.Set("parent_phone", "07700900123")
	form.Set("student_first_name", "Sam")
	form.Set("student_last_name", "Reed")
	form.Set("location", "Birmingham")
	form.Set("year_group", "Year 5")
	form.Set("classes", `[{"id":"sat-morning","title":"Saturday Morning","price":79.99},{"id":"sun-morning","title":"Sunday Morning","price":79.99}]`)
	form.Set("monthly_total", "159.98")
	form.Set("payment_method", "cash")
	form.Set("accepted_terms", "1")
	form.Set("_ajax_nonce", nonce)
	return form
}

func waitForService(t *testing.T) {
	t.Log("Waiting for the service to be ready...")

	maxRetries := 30
	for i := 0; i < maxRetries; i++ {
		resp, err := http.Get(serviceURL + "/health")
		if err == nil && resp.StatusCode == 200 {
			resp.Body.Close()
			t.Log("Service is ready")
			return
		}
		time.Sleep(1 * time.Second)
	}

	t.Fatal("Service did not become ready in time")
}

func get(t *testing.T, url string) *http.Response {
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp
}

func postForm(t *testing.T, target string, form url.Values) *http.Response {
	resp, err := http.Post(target, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	return resp
}

func patch(t *testing.T, url, body string) *http.Response {
	req, err := http.NewRequest(http.MethodPatch, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func del(t *testing.T, url string) *http.Response {
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, target interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(target)
	if err != nil && resp.StatusCode >= 400 {
		// Error responses might not carry a JSON body.
		return
	}
	require.NoError(t, err)
}

func TestMain(m *testing.M) {
	fmt.Println("Starting API tests...")
	fmt.Println("Make sure the service is running: make docker-up")
	fmt.Println()

	code := m.Run()

	fmt.Println()
	fmt.Println("API tests complete")
	os.Exit(code)
}
