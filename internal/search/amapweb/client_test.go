package amapweb

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/shanshu/mapbridge/internal/search"
)

type capturedResult struct {
	req  search.Request
	resp any
	err  error
}

// channelDelegate funnels delegate callbacks into a channel so tests can
// wait for the asynchronous completion.
type channelDelegate struct {
	results chan capturedResult
}

func newChannelDelegate() *channelDelegate {
	return &channelDelegate{results: make(chan capturedResult, 1)}
}

func (d *channelDelegate) SearchDone(req search.Request, resp any) {
	d.results <- capturedResult{req: req, resp: resp}
}

func (d *channelDelegate) SearchFailed(req search.Request, err error) {
	d.results <- capturedResult{req: req, err: err}
}

func (d *channelDelegate) wait(t *testing.T) capturedResult {
	t.Helper()
	select {
	case r := <-d.results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delegate callback")
		return capturedResult{}
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *channelDelegate) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop())
	d := newChannelDelegate()
	c.SetDelegate(d)
	return c, d
}

func TestSearchGeocode_DecodesResponse(t *testing.T) {
	var gotPath, gotKey string
	c, d := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{
			"status": "1", "info": "OK", "count": "1",
			"geocodes": [{
				"formatted_address": "上海市黄浦区人民广场",
				"country": "中国", "province": "上海市", "city": "上海市",
				"citycode": "021", "district": "黄浦区", "adcode": "310101",
				"level": "兴趣点", "location": "121.473724,31.230545"
			}]
		}`))
	})

	c.SearchGeocode(&search.GeocodeRequest{Address: "人民广场", City: "上海"})
	result := d.wait(t)

	require.NoError(t, result.err)
	assert.Equal(t, "/v3/geocode/geo", gotPath)
	assert.Equal(t, "test-key", gotKey)

	resp := result.resp.(*search.GeocodeResponse)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Geocodes, 1)
	assert.Equal(t, "310101", resp.Geocodes[0].Adcode)
	assert.InDelta(t, 31.230545, resp.Geocodes[0].Location.Latitude, 1e-9)
}

func TestSearchDrivingRoute_DecodesRoute(t *testing.T) {
	c, d := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/direction/driving", r.URL.Path)
		assert.Equal(t, "polyline", r.URL.Query().Get("show_fields"))
		_, _ = w.Write([]byte(`{
			"status": "1", "info": "OK", "count": "1",
			"route": {
				"origin": "121.473724,31.230545",
				"destination": "116.401049,39.900896",
				"taxi_cost": "540.5",
				"paths": [{
					"distance": "1200000",
					"cost": {"duration": "43200"},
					"steps": [
						{"instruction": "向北行驶", "polyline": "121.47,31.23;121.48,31.24"},
						{"instruction": "到达终点", "polyline": "121.48,31.24;116.40,39.90"}
					]
				}]
			}
		}`))
	})

	c.SearchDrivingRoute(&search.DrivingRouteRequest{
		Origin:        core.Coordinate{Latitude: 31.230545, Longitude: 121.473724},
		Destination:   core.Coordinate{Latitude: 39.900896, Longitude: 116.401049},
		ShowFieldType: core.ShowFieldPolyline,
	})
	result := d.wait(t)

	require.NoError(t, result.err)
	resp := result.resp.(*search.RouteResponse)
	require.NotNil(t, resp.Route)
	assert.Equal(t, 540.5, resp.Route.TaxiCost)
	require.Len(t, resp.Route.Paths, 1)
	assert.Equal(t, 1200000.0, resp.Route.Paths[0].Distance)
	assert.Equal(t, 43200.0, resp.Route.Paths[0].Duration, "duration falls back to cost.duration")
	assert.Len(t, resp.Route.Paths[0].Steps, 2)
}

func TestVendorErrorStatusFailsTheRequest(t *testing.T) {
	c, d := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "0", "info": "INVALID_USER_KEY"}`))
	})

	c.SearchInputTips(&search.InputTipsRequest{Keywords: "外滩"})
	result := d.wait(t)

	require.Error(t, result.err)
	assert.Contains(t, result.err.Error(), "INVALID_USER_KEY")
}

func TestHTTPErrorFailsTheRequest(t *testing.T) {
	c, d := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	c.SearchReGeocode(&search.ReGeocodeRequest{
		Location: core.Coordinate{Latitude: 31.2, Longitude: 121.4},
		Radius:   1000,
	})
	result := d.wait(t)

	require.Error(t, result.err)
	assert.Contains(t, result.err.Error(), "unexpected status 502")
}

func TestReGeocode_EmptyCollapsedFields(t *testing.T) {
	c, d := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("extensions"))
		assert.Equal(t, "distance", r.URL.Query().Get("mode"))
		_, _ = w.Write([]byte(`{
			"status": "1", "info": "OK",
			"regeocode": {
				"formatted_address": "上海市黄浦区南京东路",
				"addressComponent": {
					"country": "中国", "province": "上海市", "city": [],
					"citycode": "021", "district": "黄浦区", "adcode": "310101",
					"township": "南京东路街道", "towncode": "310101013000",
					"neighborhood": {"name": []}, "building": {"name": []}
				},
				"pois": [], "aois": [], "roads": [], "roadinters": []
			}
		}`))
	})

	c.SearchReGeocode(&search.ReGeocodeRequest{
		Location:         core.Coordinate{Latitude: 31.2, Longitude: 121.4},
		Radius:           1000,
		Mode:             "distance",
		RequireExtension: true,
	})
	result := d.wait(t)

	require.NoError(t, result.err)
	resp := result.resp.(*search.ReGeocodeResponse)
	require.NotNil(t, resp.ReGeocode)
	assert.Equal(t, "上海市黄浦区南京东路", resp.ReGeocode.FormattedAddress)
	assert.Equal(t, "", resp.ReGeocode.AddressComponent.City, "collapsed [] decodes to empty")
	assert.Equal(t, "南京东路街道", resp.ReGeocode.AddressComponent.Township)
}
