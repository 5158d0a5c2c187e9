// Package amapweb implements the search API against the AMap web service.
// Every submission runs on its own goroutine and reports through the shared
// delegate, matching the callback discipline of the on-device SDK.
package amapweb

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shanshu/mapbridge/internal/geo"
	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/shanshu/mapbridge/internal/search"
)

const DefaultBaseURL = "https://restapi.amap.com"

// Client talks to the AMap web service. Safe for concurrent use.
type Client struct {
	baseURL string
	key     string
	client  *http.Client
	log     zerolog.Logger

	mu       sync.RWMutex
	delegate search.Delegate
}

// Config carries the client's construction parameters, read from the
// application config.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// New builds a client. A zero timeout defaults to 10s.
func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		key:     cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     log.With().Str("component", "amapweb").Logger(),
	}
}

// SetDelegate registers the shared completion callback.
func (c *Client) SetDelegate(d search.Delegate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delegate = d
}

func (c *Client) currentDelegate() search.Delegate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.delegate
}

// SearchInputTips submits a suggestion query.
func (c *Client) SearchInputTips(req *search.InputTipsRequest) {
	params := url.Values{"keywords": {req.Keywords}}
	setIf(params, "city", req.City)
	setIf(params, "type", req.Types)
	setIf(params, "location", req.Location)
	if req.CityLimit {
		params.Set("citylimit", "true")
	}
	go c.run(req, "/v3/assistant/inputtips", params, decodeInputTips)
}

// SearchGeocode submits a forward geocode query.
func (c *Client) SearchGeocode(req *search.GeocodeRequest) {
	params := url.Values{"address": {req.Address}}
	setIf(params, "city", req.City)
	setIf(params, "country", req.Country)
	go c.run(req, "/v3/geocode/geo", params, decodeGeocode)
}

// SearchReGeocode submits a reverse geocode query.
func (c *Client) SearchReGeocode(req *search.ReGeocodeRequest) {
	params := url.Values{
		"location": {geo.FormatCoordinate(req.Location)},
		"radius":   {strconv.Itoa(req.Radius)},
	}
	setIf(params, "poitype", req.POIType)
	setIf(params, "mode", req.Mode)
	if req.RequireExtension {
		params.Set("extensions", "all")
	}
	go c.run(req, "/v3/geocode/regeo", params, decodeReGeocode)
}

// SearchDrivingRoute submits a driving route query.
func (c *Client) SearchDrivingRoute(req *search.DrivingRouteRequest) {
	params := routeParams(req.Origin, req.Destination, req.ShowFieldType)
	go c.run(req, "/v5/direction/driving", params, decodeRoute)
}

// SearchWalkingRoute submits a walking route query.
func (c *Client) SearchWalkingRoute(req *search.WalkingRouteRequest) {
	params := routeParams(req.Origin, req.Destination, req.ShowFieldType)
	go c.run(req, "/v5/direction/walking", params, decodeRoute)
}

// SearchRidingRoute submits a riding route query.
func (c *Client) SearchRidingRoute(req *search.RidingRouteRequest) {
	params := routeParams(req.Origin, req.Destination, req.ShowFieldType)
	params.Set("alternative_route", strconv.Itoa(req.AlternativeRoute))
	go c.run(req, "/v5/direction/bicycling", params, decodeRoute)
}

// SearchTransitRoute submits a transit route query.
func (c *Client) SearchTransitRoute(req *search.TransitRouteRequest) {
	params := routeParams(req.Origin, req.Destination, req.ShowFieldType)
	params.Set("city1", req.City)
	params.Set("city2", req.DestinationCity)
	params.Set("strategy", strconv.Itoa(req.Strategy))
	params.Set("AlternativeRoute", strconv.Itoa(req.AlternativeRoute))
	params.Set("max_trans", strconv.Itoa(req.MaxTrans))
	if req.NightFlag {
		params.Set("nightflag", "1")
	}
	setIf(params, "date", req.Date)
	setIf(params, "time", req.Time)
	go c.run(req, "/v5/direction/transit/integrated", params, decodeRoute)
}

func routeParams(origin, destination core.Coordinate, show core.ShowFieldType) url.Values {
	params := url.Values{
		"origin":      {geo.FormatCoordinate(origin)},
		"destination": {geo.FormatCoordinate(destination)},
	}
	if show != "" && show != core.ShowFieldNone {
		params.Set("show_fields", string(show))
	}
	return params
}

// run performs one request/decode cycle and reports through the delegate.
func (c *Client) run(req search.Request, path string, params url.Values, decode func([]byte) (any, error)) {
	d := c.currentDelegate()
	if d == nil {
		c.log.Warn().Str("path", path).Msg("dropping completion, no delegate registered")
		return
	}

	body, err := c.get(path, params)
	if err != nil {
		c.log.Error().Str("path", path).Err(err).Msg("search request failed")
		d.SearchFailed(req, err)
		return
	}
	resp, err := decode(body)
	if err != nil {
		c.log.Error().Str("path", path).Err(err).Msg("search response rejected")
		d.SearchFailed(req, err)
		return
	}
	d.SearchDone(req, resp)
}

func (c *Client) get(path string, params url.Values) ([]byte, error) {
	params.Set("key", c.key)
	params.Set("output", "JSON")

	resp, err := c.client.Get(c.baseURL + path + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("amap request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("amap request: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("amap response: %w", err)
	}

	var envelope struct {
		Status string `json:"status"`
		Info   string `json:"info"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("amap response: %w", err)
	}
	if envelope.Status != "1" {
		return nil, fmt.Errorf("amap error: %s", envelope.Info)
	}
	return body, nil
}

func setIf(params url.Values, name, value string) {
	if value != "" {
		params.Set(name, value)
	}
}
