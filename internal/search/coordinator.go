package search

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shanshu/mapbridge/internal/correlator"
	"github.com/shanshu/mapbridge/internal/model/core"
)

// Route search defaults applied for absent optional fields.
const (
	defaultAlternativeRoutes = 5
	defaultMaxTransfers      = 4
)

// ResultCache is an optional persistent response cache consulted before a
// request is submitted to the vendor. Implemented by searchcache.
type ResultCache interface {
	Lookup(category, key string) ([]byte, bool)
	Store(category, key string, payload []byte)
}

// Coordinator owns one correlator per request category. At most one request
// per category may be in flight: a second Begin before the first resolves
// overwrites the pending continuation and orphans the first caller, which
// is the documented vendor-delegate hazard, deliberately preserved.
type Coordinator struct {
	api   API
	cache ResultCache
	log   zerolog.Logger

	inputTips *correlator.Correlator[core.InputTipsResult]
	geocode   *correlator.Correlator[core.GeocodeResult]
	reGeocode *correlator.Correlator[core.ReGeocodeResult]
	driving   *correlator.Correlator[core.RouteResult]
	walking   *correlator.Correlator[core.RouteResult]
	riding    *correlator.Correlator[core.RouteResult]
	transit   *correlator.Correlator[core.RouteResult]
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithCache installs a persistent response cache for geocode and route
// lookups.
func WithCache(cache ResultCache) Option {
	return func(c *Coordinator) { c.cache = cache }
}

// NewCoordinator wires a coordinator to the vendor API and registers itself
// as the shared delegate. A nil api is allowed: every search then fails
// immediately with the delegate-not-initialized code.
func NewCoordinator(api API, log zerolog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		api:       api,
		log:       log.With().Str("component", "search").Logger(),
		inputTips: correlator.New[core.InputTipsResult](),
		geocode:   correlator.New[core.GeocodeResult](),
		reGeocode: correlator.New[core.ReGeocodeResult](),
		driving:   correlator.New[core.RouteResult](),
		walking:   correlator.New[core.RouteResult](),
		riding:    correlator.New[core.RouteResult](),
		transit:   correlator.New[core.RouteResult](),
	}
	for _, o := range opts {
		o(c)
	}
	if api != nil {
		api.SetDelegate(c)
	}
	return c
}

// SearchInputTips submits a suggestion query.
func (c *Coordinator) SearchInputTips(opts core.InputTipsOptions, resolve func(core.InputTipsResult), reject func(code, message string)) {
	if c.api == nil {
		reject(CodeDelegateNotInitialized, ErrDelegateNotInitialized.Error())
		return
	}
	if strings.TrimSpace(opts.Keywords) == "" {
		reject(CodeInvalidOptions, "keywords is required")
		return
	}
	c.inputTips.Begin(resolve, reject)
	c.api.SearchInputTips(&InputTipsRequest{
		Keywords:  opts.Keywords,
		City:      strOr(opts.City),
		Types:     strOr(opts.Types),
		CityLimit: boolOr(opts.CityLimit),
		Location:  strOr(opts.Location),
	})
}

// SearchGeocode submits a forward geocode query, consulting the persistent
// cache first when one is installed.
func (c *Coordinator) SearchGeocode(opts core.GeocodeOptions, resolve func(core.GeocodeResult), reject func(code, message string)) {
	if c.api == nil {
		reject(CodeDelegateNotInitialized, ErrDelegateNotInitialized.Error())
		return
	}
	if opts.Address == nil || strings.TrimSpace(*opts.Address) == "" {
		reject(CodeInvalidOptions, "address is required")
		return
	}

	key := requestKey(opts)
	if cached, ok := c.lookupCached("geocode", key); ok {
		var result core.GeocodeResult
		if err := json.Unmarshal(cached, &result); err == nil {
			resolve(result)
			return
		}
	}

	c.geocode.Begin(c.storing("geocode", key, resolve), reject)
	c.api.SearchGeocode(&GeocodeRequest{
		Address: *opts.Address,
		City:    strOr(opts.City),
		Country: strOr(opts.Country),
	})
}

// SearchReGeocode submits a reverse geocode query.
func (c *Coordinator) SearchReGeocode(opts core.ReGeocodeOptions, resolve func(core.ReGeocodeResult), reject func(code, message string)) {
	if c.api == nil {
		reject(CodeDelegateNotInitialized, ErrDelegateNotInitialized.Error())
		return
	}
	if opts.Location == nil {
		reject(CodeInvalidOptions, "location is required")
		return
	}
	req := &ReGeocodeRequest{
		Location:         *opts.Location,
		Radius:           1000,
		POIType:          strOr(opts.POIType),
		Mode:             strOr(opts.Mode),
		RequireExtension: boolOr(opts.RequireExtension),
	}
	if opts.Radius != nil {
		req.Radius = *opts.Radius
	}
	c.reGeocode.Begin(resolve, reject)
	c.api.SearchReGeocode(req)
}

// SearchDrivingRoute submits a driving route query.
func (c *Coordinator) SearchDrivingRoute(opts core.DrivingRouteOptions, resolve func(core.RouteResult), reject func(code, message string)) {
	if c.api == nil {
		reject(CodeDelegateNotInitialized, ErrDelegateNotInitialized.Error())
		return
	}
	if !checkEndpoints(opts.Origin, opts.Destination, reject) {
		return
	}
	key := requestKey(opts)
	if c.resolveCachedRoute("driving", key, resolve) {
		return
	}
	c.driving.Begin(c.storingRoute("driving", key, resolve), reject)
	c.api.SearchDrivingRoute(&DrivingRouteRequest{
		Origin:        *opts.Origin,
		Destination:   *opts.Destination,
		ShowFieldType: opts.ShowFieldType,
	})
}

// SearchWalkingRoute submits a walking route query.
func (c *Coordinator) SearchWalkingRoute(opts core.WalkingRouteOptions, resolve func(core.RouteResult), reject func(code, message string)) {
	if c.api == nil {
		reject(CodeDelegateNotInitialized, ErrDelegateNotInitialized.Error())
		return
	}
	if !checkEndpoints(opts.Origin, opts.Destination, reject) {
		return
	}
	key := requestKey(opts)
	if c.resolveCachedRoute("walking", key, resolve) {
		return
	}
	c.walking.Begin(c.storingRoute("walking", key, resolve), reject)
	c.api.SearchWalkingRoute(&WalkingRouteRequest{
		Origin:        *opts.Origin,
		Destination:   *opts.Destination,
		ShowFieldType: opts.ShowFieldType,
	})
}

// SearchRidingRoute submits a riding route query.
func (c *Coordinator) SearchRidingRoute(opts core.RidingRouteOptions, resolve func(core.RouteResult), reject func(code, message string)) {
	if c.api == nil {
		reject(CodeDelegateNotInitialized, ErrDelegateNotInitialized.Error())
		return
	}
	if !checkEndpoints(opts.Origin, opts.Destination, reject) {
		return
	}
	key := requestKey(opts)
	if c.resolveCachedRoute("riding", key, resolve) {
		return
	}
	c.riding.Begin(c.storingRoute("riding", key, resolve), reject)
	c.api.SearchRidingRoute(&RidingRouteRequest{
		Origin:           *opts.Origin,
		Destination:      *opts.Destination,
		AlternativeRoute: opts.AlternativeRoute,
		ShowFieldType:    opts.ShowFieldType,
	})
}

// SearchTransitRoute submits a transit route query. Absent alternative-route
// and max-transfer counts take the documented defaults.
func (c *Coordinator) SearchTransitRoute(opts core.TransitRouteOptions, resolve func(core.RouteResult), reject func(code, message string)) {
	if c.api == nil {
		reject(CodeDelegateNotInitialized, ErrDelegateNotInitialized.Error())
		return
	}
	if !checkEndpoints(opts.Origin, opts.Destination, reject) {
		return
	}
	if strings.TrimSpace(opts.City) == "" {
		reject(CodeInvalidOptions, "city is required")
		return
	}
	req := &TransitRouteRequest{
		Origin:           *opts.Origin,
		Destination:      *opts.Destination,
		Strategy:         opts.Strategy,
		City:             opts.City,
		DestinationCity:  opts.DestinationCity,
		NightFlag:        opts.NightFlag,
		AlternativeRoute: defaultAlternativeRoutes,
		MaxTrans:         defaultMaxTransfers,
		Date:             strOr(opts.Date),
		Time:             strOr(opts.Time),
		ShowFieldType:    opts.ShowFieldType,
	}
	if opts.AlternativeRoute != nil {
		req.AlternativeRoute = *opts.AlternativeRoute
	}
	if opts.MaxTrans != nil {
		req.MaxTrans = *opts.MaxTrans
	}
	key := requestKey(opts)
	if c.resolveCachedRoute("transit", key, resolve) {
		return
	}
	c.transit.Begin(c.storingRoute("transit", key, resolve), reject)
	c.api.SearchTransitRoute(req)
}

// SearchDone is the shared vendor completion callback. The category is
// recovered from the request's concrete type.
func (c *Coordinator) SearchDone(req Request, resp any) {
	switch r := req.(type) {
	case *InputTipsRequest:
		tips, ok := resp.(*InputTipsResponse)
		if !ok || tips == nil {
			c.inputTips.FinishFailure(CodeInvalidResponse, ErrInvalidResponse.Error())
			return
		}
		c.inputTips.FinishSuccess(core.InputTipsResult{Count: tips.Count, Tips: tips.Tips})
	case *GeocodeRequest:
		geo, ok := resp.(*GeocodeResponse)
		if !ok || geo == nil {
			c.geocode.FinishFailure(CodeInvalidResponse, ErrInvalidResponse.Error())
			return
		}
		c.geocode.FinishSuccess(core.GeocodeResult{Count: geo.Count, Geocodes: geo.Geocodes})
	case *ReGeocodeRequest:
		rg, ok := resp.(*ReGeocodeResponse)
		if !ok || rg == nil || rg.ReGeocode == nil {
			c.reGeocode.FinishFailure(CodeInvalidResponse, ErrInvalidResponse.Error())
			return
		}
		c.reGeocode.FinishSuccess(*rg.ReGeocode)
	case *DrivingRouteRequest:
		c.finishRoute(c.driving, r.Origin, r.Destination, resp)
	case *WalkingRouteRequest:
		c.finishRoute(c.walking, r.Origin, r.Destination, resp)
	case *RidingRouteRequest:
		c.finishRoute(c.riding, r.Origin, r.Destination, resp)
	case *TransitRouteRequest:
		c.finishRoute(c.transit, r.Origin, r.Destination, resp)
	default:
		c.log.Warn().Msg("completion for unknown request type")
	}
}

// SearchFailed is the shared vendor failure callback.
func (c *Coordinator) SearchFailed(req Request, err error) {
	msg := ErrSearchFailed.Error()
	if err != nil {
		msg = err.Error()
	}
	switch req.(type) {
	case *InputTipsRequest:
		c.inputTips.FinishFailure(CodeSearchFailed, msg)
	case *GeocodeRequest:
		c.geocode.FinishFailure(CodeSearchFailed, msg)
	case *ReGeocodeRequest:
		c.reGeocode.FinishFailure(CodeSearchFailed, msg)
	case *DrivingRouteRequest:
		c.driving.FinishFailure(CodeSearchFailed, msg)
	case *WalkingRouteRequest:
		c.walking.FinishFailure(CodeSearchFailed, msg)
	case *RidingRouteRequest:
		c.riding.FinishFailure(CodeSearchFailed, msg)
	case *TransitRouteRequest:
		c.transit.FinishFailure(CodeSearchFailed, msg)
	default:
		c.log.Warn().Err(err).Msg("failure for unknown request type")
	}
}

func (c *Coordinator) finishRoute(corr *correlator.Correlator[core.RouteResult], origin, destination core.Coordinate, resp any) {
	route, ok := resp.(*RouteResponse)
	if !ok || route == nil || route.Route == nil {
		corr.FinishFailure(CodeInvalidResponse, ErrInvalidResponse.Error())
		return
	}
	corr.FinishSuccess(shapeRouteResult(origin, destination, route))
}

// shapeRouteResult serializes a vendor route payload into the fixed result
// shape: origin/destination echoed back, taxi cost, an overall polyline, a
// path summary per alternative, and the transit summaries when present.
func shapeRouteResult(origin, destination core.Coordinate, resp *RouteResponse) core.RouteResult {
	payload := resp.Route
	route := core.Route{
		Origin:      &origin,
		Destination: &destination,
		TaxiCost:    payload.TaxiCost,
		TransitNavi: payload.Navi,
	}
	if payload.Origin != nil {
		route.Origin = payload.Origin
	}
	if payload.Destination != nil {
		route.Destination = payload.Destination
	}

	for _, p := range payload.Paths {
		route.Paths = append(route.Paths, core.Path{
			Distance:  p.Distance,
			Duration:  p.Duration,
			StepCount: len(p.Steps),
			Polyline:  pathPolyline(p),
		})
	}
	if len(route.Paths) > 0 {
		route.Polyline = route.Paths[0].Polyline
	}
	for _, t := range payload.Transits {
		route.Transits = append(route.Transits, core.Transit{
			Cost:            t.Cost,
			Duration:        t.Duration,
			NightFlag:       t.NightFlag,
			WalkingDistance: t.WalkingDistance,
			Distance:        t.Distance,
		})
	}
	return core.RouteResult{Success: true, Count: resp.Count, Route: route}
}

// pathPolyline prefers the path-level polyline; absent that it stitches the
// step polylines in order.
func pathPolyline(p RoutePath) string {
	if p.Polyline != "" {
		return p.Polyline
	}
	segments := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		if s.Polyline != "" {
			segments = append(segments, s.Polyline)
		}
	}
	return strings.Join(segments, ";")
}

func (c *Coordinator) lookupCached(category, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	payload, ok := c.cache.Lookup(category, key)
	if ok {
		c.log.Debug().Str("category", category).Msg("search cache hit")
	}
	return payload, ok
}

func (c *Coordinator) resolveCachedRoute(category, key string, resolve func(core.RouteResult)) bool {
	cached, ok := c.lookupCached(category, key)
	if !ok {
		return false
	}
	var result core.RouteResult
	if err := json.Unmarshal(cached, &result); err != nil {
		return false
	}
	resolve(result)
	return true
}

func (c *Coordinator) storing(category, key string, resolve func(core.GeocodeResult)) func(core.GeocodeResult) {
	if c.cache == nil {
		return resolve
	}
	return func(result core.GeocodeResult) {
		if payload, err := json.Marshal(result); err == nil {
			c.cache.Store(category, key, payload)
		}
		resolve(result)
	}
}

func (c *Coordinator) storingRoute(category, key string, resolve func(core.RouteResult)) func(core.RouteResult) {
	if c.cache == nil {
		return resolve
	}
	return func(result core.RouteResult) {
		if payload, err := json.Marshal(result); err == nil {
			c.cache.Store(category, key, payload)
		}
		resolve(result)
	}
}

// requestKey derives a stable cache key from the option payload.
func requestKey(opts any) string {
	payload, err := json.Marshal(opts)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// checkEndpoints rejects a route search whose origin or destination is
// absent before it reaches the vendor.
func checkEndpoints(origin, destination *core.Coordinate, reject func(code, message string)) bool {
	if origin == nil {
		reject(CodeInvalidOptions, "origin is required")
		return false
	}
	if destination == nil {
		reject(CodeInvalidOptions, "destination is required")
		return false
	}
	return true
}

func strOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func boolOr(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}
