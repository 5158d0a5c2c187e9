package core

// ShowFieldType selects which optional, potentially expensive fields a route
// search response should include. The driving search accepts the full set;
// walking/riding/transit accept the subset without tmcs/cities/newEnergy.
type ShowFieldType string

const (
	ShowFieldNone      ShowFieldType = "none"
	ShowFieldCost      ShowFieldType = "cost"
	ShowFieldTmcs      ShowFieldType = "tmcs"
	ShowFieldNavi      ShowFieldType = "navi"
	ShowFieldCities    ShowFieldType = "cities"
	ShowFieldPolyline  ShowFieldType = "polyline"
	ShowFieldNewEnergy ShowFieldType = "newEnergy"
	ShowFieldAll       ShowFieldType = "all"
)

// InputTipsOptions are the parameters of an input-tips (suggestion) search.
type InputTipsOptions struct {
	Keywords  string  `json:"keywords"`
	City      *string `json:"city,omitempty"`
	Types     *string `json:"types,omitempty"`
	CityLimit *bool   `json:"cityLimit,omitempty"`
	Location  *string `json:"location,omitempty"`
}

// GeocodeOptions are the parameters of a forward geocode search.
type GeocodeOptions struct {
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	Country *string `json:"country,omitempty"`
}

// ReGeocodeOptions are the parameters of a reverse geocode search.
type ReGeocodeOptions struct {
	Location         *Coordinate `json:"location,omitempty"`
	Radius           *int        `json:"radius,omitempty"`
	POIType          *string     `json:"poitype,omitempty"`
	Mode             *string     `json:"mode,omitempty"`
	RequireExtension *bool       `json:"requireExtension,omitempty"`
}

// DrivingRouteOptions are the parameters of a driving route search. Origin
// and destination are pointers so an absent endpoint is distinguishable
// from (0,0) and rejected before any vendor call.
type DrivingRouteOptions struct {
	Origin        *Coordinate   `json:"origin,omitempty"`
	Destination   *Coordinate   `json:"destination,omitempty"`
	ShowFieldType ShowFieldType `json:"showFieldType"`
}

// WalkingRouteOptions are the parameters of a walking route search.
type WalkingRouteOptions struct {
	Origin        *Coordinate   `json:"origin,omitempty"`
	Destination   *Coordinate   `json:"destination,omitempty"`
	ShowFieldType ShowFieldType `json:"showFieldType"`
}

// RidingRouteOptions are the parameters of a riding route search.
type RidingRouteOptions struct {
	Origin           *Coordinate   `json:"origin,omitempty"`
	Destination      *Coordinate   `json:"destination,omitempty"`
	AlternativeRoute int           `json:"alternativeRoute"`
	ShowFieldType    ShowFieldType `json:"showFieldType"`
}

// TransitRouteOptions are the parameters of a transit route search.
type TransitRouteOptions struct {
	Origin            *Coordinate   `json:"origin,omitempty"`
	Destination       *Coordinate   `json:"destination,omitempty"`
	Strategy          int           `json:"strategy"`
	City              string        `json:"city"`
	DestinationCity   string        `json:"destinationCity"`
	NightFlag         bool          `json:"nightflag"`
	OriginPOI         *string       `json:"originPOI,omitempty"`
	DestinationPOI    *string       `json:"destinationPOI,omitempty"`
	Adcode            *string       `json:"adcode,omitempty"`
	DestinationAdcode *string       `json:"destinationAdcode,omitempty"`
	AlternativeRoute  *int          `json:"alternativeRoute,omitempty"`
	MultiExport       *bool         `json:"multiExport,omitempty"`
	MaxTrans          *int          `json:"maxTrans,omitempty"`
	Date              *string       `json:"date,omitempty"`
	Time              *string       `json:"time,omitempty"`
	ShowFieldType     ShowFieldType `json:"showFieldType"`
}

// InputTip is one suggestion returned by an input-tips search.
type InputTip struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Adcode   string `json:"adcode"`
	District string `json:"district"`
	Typecode string `json:"typecode"`
}

// InputTipsResult is the shaped response of an input-tips search.
type InputTipsResult struct {
	Count int        `json:"count"`
	Tips  []InputTip `json:"tips"`
}

// Geocode is one forward-geocode match, field names passed through from the
// vendor schema.
type Geocode struct {
	FormattedAddress string     `json:"formattedAddress"`
	Country          string     `json:"country"`
	Province         string     `json:"province"`
	City             string     `json:"city"`
	CityCode         string     `json:"citycode"`
	District         string     `json:"district"`
	Adcode           string     `json:"adcode"`
	Level            string     `json:"level"`
	Location         Coordinate `json:"location"`
}

// GeocodeResult is the shaped response of a forward geocode search.
type GeocodeResult struct {
	Count    int       `json:"count"`
	Geocodes []Geocode `json:"geocodes"`
}

// AddressComponent is the structured address of a reverse geocode response.
type AddressComponent struct {
	Country      string `json:"country"`
	Province     string `json:"province"`
	City         string `json:"city"`
	CityCode     string `json:"citycode"`
	District     string `json:"district"`
	Adcode       string `json:"adcode"`
	Township     string `json:"township"`
	Towncode     string `json:"towncode"`
	Neighborhood string `json:"neighborhood"`
	Building     string `json:"building"`
}

// POI is a point of interest in a reverse geocode response.
type POI struct {
	UID      string     `json:"uid"`
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Address  string     `json:"address"`
	Distance float64    `json:"distance"`
	Location Coordinate `json:"location"`
}

// AOI is an area of interest in a reverse geocode response.
type AOI struct {
	UID      string     `json:"uid"`
	Name     string     `json:"name"`
	Adcode   string     `json:"adcode"`
	Area     float64    `json:"area"`
	Location Coordinate `json:"location"`
}

// Road is a road record in a reverse geocode response.
type Road struct {
	UID       string     `json:"uid"`
	Name      string     `json:"name"`
	Direction string     `json:"direction"`
	Distance  float64    `json:"distance"`
	Location  Coordinate `json:"location"`
}

// RoadInter is a road intersection record in a reverse geocode response.
type RoadInter struct {
	Direction   string     `json:"direction"`
	Distance    float64    `json:"distance"`
	FirstRoadID string     `json:"firstId"`
	FirstName   string     `json:"firstName"`
	SecondID    string     `json:"secondId"`
	SecondName  string     `json:"secondName"`
	Location    Coordinate `json:"location"`
}

// ReGeocodeResult is the shaped response of a reverse geocode search.
type ReGeocodeResult struct {
	FormattedAddress string           `json:"formattedAddress"`
	AddressComponent AddressComponent `json:"addressComponent"`
	AOIs             []AOI            `json:"aois"`
	POIs             []POI            `json:"pois"`
	RoadInters       []RoadInter      `json:"roadinters"`
	Roads            []Road           `json:"roads"`
}

// Path is one route alternative inside a route response.
type Path struct {
	Distance  float64 `json:"distance"`
	Duration  float64 `json:"duration"`
	StepCount int     `json:"stepCount"`
	Polyline  string  `json:"polyline"`
}

// Transit is one transit alternative inside a transit route response.
type Transit struct {
	Cost            float64 `json:"cost"`
	Duration        float64 `json:"duration"`
	NightFlag       bool    `json:"nightflag"`
	WalkingDistance float64 `json:"walkingDistance"`
	Distance        float64 `json:"distance"`
}

// TransitNavi summarizes the navigation instructions of a transit route.
type TransitNavi struct {
	Action          string `json:"action"`
	AssistantAction string `json:"assistantAction"`
}

// Route is the shaped route payload common to all route search categories.
type Route struct {
	Origin      *Coordinate  `json:"origin,omitempty"`
	Destination *Coordinate  `json:"destination,omitempty"`
	TaxiCost    float64      `json:"taxiCost"`
	Polyline    string       `json:"polyline"`
	Paths       []Path       `json:"paths,omitempty"`
	Transits    []Transit    `json:"transits,omitempty"`
	TransitNavi *TransitNavi `json:"transitNavi,omitempty"`
}

// RouteResult is the shaped response of a route search.
type RouteResult struct {
	Success bool  `json:"success"`
	Count   int   `json:"count"`
	Route   Route `json:"route"`
}

// Location is the shaped response of a location request, echoing the vendor
// regeocode fields.
type Location struct {
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	ReGeocode LocationReGeocode `json:"regeocode"`
}

// LocationReGeocode is the address payload attached to a located position.
type LocationReGeocode struct {
	FormattedAddress string `json:"formattedAddress"`
	Country          string `json:"country"`
	Province         string `json:"province"`
	City             string `json:"city"`
	District         string `json:"district"`
	CityCode         string `json:"citycode"`
	Adcode           string `json:"adcode"`
	Street           string `json:"street"`
	Number           string `json:"number"`
	POIName          string `json:"poiName"`
	AOIName          string `json:"aoiName"`
}
