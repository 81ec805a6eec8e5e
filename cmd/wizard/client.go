package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/geniusacademy/registration-service/internal/dto"
)

// apiClient is the wizard's thin HTTP layer. The submission itself is a
// single POST; there is no retry or cancellation of an in-flight call.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) fetchClasses() ([]dto.ClassStatusResponse, error) {
	resp, err := c.http.Get(c.baseURL + "/api/v1/classes")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var classes []dto.ClassStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&classes); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}
	return classes, nil
}

func (c *apiClient) fetchNonce() (string, error) {
	resp, err := c.http.Get(c.baseURL + "/api/v1/registrations/nonce")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out dto.NonceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	return out.Nonce, nil
}

func (c *apiClient) submit(form url.Values) (*dto.SubmitEnvelope, error) {
	resp, err := c.http.PostForm(c.baseURL+"/api/v1/registrations", form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope dto.SubmitEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &envelope, nil
}

// signatureDataURI reads a PNG or JPEG signature image from disk and encodes
// it as the data URI the submission endpoint expects.
func signatureDataURI(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var mediaType string
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".png"):
		mediaType = "image/png"
	case strings.HasSuffix(strings.ToLower(path), ".jpg"),
		strings.HasSuffix(strings.ToLower(path), ".jpeg"):
		mediaType = "image/jpeg"
	default:
		return "", fmt.Errorf("signature must be a .png or .jpg file")
	}

	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
