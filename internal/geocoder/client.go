// Package geocoder resolves postal codes to coordinates through the
// MapQuest open geocoding API.
package geocoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const baseURL = "https://open.mapquestapi.com/geocoding/v1"

// ErrNoResult means the provider returned no location for the query.
var ErrNoResult = errors.New("no geocoding result")

// Location is a resolved coordinate pair.
type Location struct {
	Lat float64
	Lng float64
}

type geocodeResponse struct {
	Results []struct {
		Locations []struct {
			LatLng struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

// Client calls the geocoding provider.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a geocoder client with the given provider API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Geocode resolves a zipcode (or free-form address) to coordinates.
func (c *Client) Geocode(location string) (Location, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("location", location)

	fullURL := fmt.Sprintf("%s/address?%s", baseURL, params.Encode())

	resp, err := c.httpClient.Get(fullURL)
	if err != nil {
		log.Printf("geocode request failed: %v", err)
		return Location{}, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Location{}, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("geocode error: status %d, body: %s", resp.StatusCode, string(body))
		return Location{}, fmt.Errorf("geocoder error: status %d", resp.StatusCode)
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return Location{}, fmt.Errorf("unmarshal: %w", err)
	}
	if len(result.Results) == 0 || len(result.Results[0].Locations) == 0 {
		return Location{}, ErrNoResult
	}

	ll := result.Results[0].Locations[0].LatLng
	return Location{Lat: ll.Lat, Lng: ll.Lng}, nil
}
