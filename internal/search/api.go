// Package search correlates typed search requests against the vendor SDK's
// single shared completion delegate. Each request category owns one
// correlator; the delegate dispatches by concrete request subtype.
package search

import (
	"errors"

	"github.com/shanshu/mapbridge/internal/model/core"
)

// Fixed rejection codes surfaced to callers.
const (
	CodeDelegateNotInitialized = "delegate-not-initialized"
	CodeManagerNotInitialized  = "manager-not-initialized"
	CodeInvalidOptions         = "invalid-options"
	CodeInvalidResponse        = "invalid-response"
	CodeSearchFailed           = "search-failed"
)

// Sentinel errors matching the fixed codes.
var (
	ErrDelegateNotInitialized = errors.New("search delegate not initialized")
	ErrInvalidResponse        = errors.New("invalid search response")
	ErrSearchFailed           = errors.New("search failed")
)

// Request is one of the typed request shapes submitted to the vendor API.
// The shared delegate receives it back on completion and the coordinator
// recovers the category from its concrete type.
type Request interface {
	isSearchRequest()
}

// InputTipsRequest is the vendor shape of a suggestion query.
type InputTipsRequest struct {
	Keywords  string
	City      string
	Types     string
	CityLimit bool
	Location  string
}

// GeocodeRequest is the vendor shape of a forward geocode query.
type GeocodeRequest struct {
	Address string
	City    string
	Country string
}

// ReGeocodeRequest is the vendor shape of a reverse geocode query.
type ReGeocodeRequest struct {
	Location         core.Coordinate
	Radius           int
	POIType          string
	Mode             string
	RequireExtension bool
}

// DrivingRouteRequest is the vendor shape of a driving route query.
type DrivingRouteRequest struct {
	Origin        core.Coordinate
	Destination   core.Coordinate
	ShowFieldType core.ShowFieldType
}

// WalkingRouteRequest is the vendor shape of a walking route query.
type WalkingRouteRequest struct {
	Origin        core.Coordinate
	Destination   core.Coordinate
	ShowFieldType core.ShowFieldType
}

// RidingRouteRequest is the vendor shape of a riding route query.
type RidingRouteRequest struct {
	Origin           core.Coordinate
	Destination      core.Coordinate
	AlternativeRoute int
	ShowFieldType    core.ShowFieldType
}

// TransitRouteRequest is the vendor shape of a transit route query.
type TransitRouteRequest struct {
	Origin           core.Coordinate
	Destination      core.Coordinate
	Strategy         int
	City             string
	DestinationCity  string
	NightFlag        bool
	AlternativeRoute int
	MaxTrans         int
	Date             string
	Time             string
	ShowFieldType    core.ShowFieldType
}

func (*InputTipsRequest) isSearchRequest()    {}
func (*GeocodeRequest) isSearchRequest()      {}
func (*ReGeocodeRequest) isSearchRequest()    {}
func (*DrivingRouteRequest) isSearchRequest() {}
func (*WalkingRouteRequest) isSearchRequest() {}
func (*RidingRouteRequest) isSearchRequest()  {}
func (*TransitRouteRequest) isSearchRequest() {}

// InputTipsResponse is the vendor completion payload for input tips.
type InputTipsResponse struct {
	Count int
	Tips  []core.InputTip
}

// GeocodeResponse is the vendor completion payload for forward geocoding.
type GeocodeResponse struct {
	Count    int
	Geocodes []core.Geocode
}

// ReGeocodeResponse is the vendor completion payload for reverse geocoding.
type ReGeocodeResponse struct {
	ReGeocode *core.ReGeocodeResult
}

// RouteStep is one navigation step of a route path.
type RouteStep struct {
	Instruction string
	Polyline    string
}

// RoutePath is one alternative inside a vendor route payload.
type RoutePath struct {
	Distance float64
	Duration float64
	Polyline string
	Steps    []RouteStep
}

// RouteTransit is one transit alternative inside a vendor route payload.
type RouteTransit struct {
	Cost            float64
	Duration        float64
	NightFlag       bool
	WalkingDistance float64
	Distance        float64
}

// RoutePayload is the vendor route body.
type RoutePayload struct {
	Origin      *core.Coordinate
	Destination *core.Coordinate
	TaxiCost    float64
	Paths       []RoutePath
	Transits    []RouteTransit
	Navi        *core.TransitNavi
}

// RouteResponse is the vendor completion payload for all route categories.
type RouteResponse struct {
	Count int
	Route *RoutePayload
}

// Delegate is the single shared completion callback of the vendor API.
// Completions carry the originating request; the category is recovered from
// its concrete type, never from a request-scoped token.
type Delegate interface {
	SearchDone(req Request, resp any)
	SearchFailed(req Request, err error)
}

// API is the narrow contract to the vendor search SDK. Submissions are
// fire-and-forget; results arrive later on the registered delegate.
type API interface {
	SetDelegate(d Delegate)
	SearchInputTips(req *InputTipsRequest)
	SearchGeocode(req *GeocodeRequest)
	SearchReGeocode(req *ReGeocodeRequest)
	SearchDrivingRoute(req *DrivingRouteRequest)
	SearchWalkingRoute(req *WalkingRouteRequest)
	SearchRidingRoute(req *RidingRouteRequest)
	SearchTransitRoute(req *TransitRouteRequest)
}
