package parser

import (
	"github.com/shanshu/mapbridge/internal/model/core"
)

// The route searches accept a narrower show-field subset than driving; the
// sets below mirror the vendor's per-category menus.
var (
	drivingShowFields = showFieldSet(
		core.ShowFieldNone, core.ShowFieldCost, core.ShowFieldTmcs, core.ShowFieldNavi,
		core.ShowFieldCities, core.ShowFieldPolyline, core.ShowFieldNewEnergy, core.ShowFieldAll,
	)
	commonShowFields = showFieldSet(
		core.ShowFieldNone, core.ShowFieldCost, core.ShowFieldNavi,
		core.ShowFieldPolyline, core.ShowFieldAll,
	)
)

func showFieldSet(fields ...core.ShowFieldType) map[core.ShowFieldType]bool {
	set := make(map[core.ShowFieldType]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func checkShowField(payload string, value core.ShowFieldType, allowed map[core.ShowFieldType]bool) error {
	if allowed[value] {
		return nil
	}
	return &DecodeError{Payload: payload, Field: "showFieldType", Reason: "unsupported value " + string(value)}
}

// defaultShowField fills an absent showFieldType with polyline, the value
// callers overwhelmingly want and the one an omitted field selects upstream.
func defaultShowField(value core.ShowFieldType) core.ShowFieldType {
	if value == "" {
		return core.ShowFieldPolyline
	}
	return value
}

// checkEndpoints rejects route options whose origin or destination is
// absent, before anything reaches the vendor.
func checkEndpoints(payload string, origin, destination *core.Coordinate) error {
	if origin == nil {
		return &DecodeError{Payload: payload, Field: "origin", Reason: "required"}
	}
	if destination == nil {
		return &DecodeError{Payload: payload, Field: "destination", Reason: "required"}
	}
	return nil
}

// ParseInputTipsOptions decodes input-tips search options.
func (p *Parser) ParseInputTipsOptions(data []byte) (core.InputTipsOptions, error) {
	var opts core.InputTipsOptions
	if err := decode("inputTipsOptions", data, &opts); err != nil {
		return core.InputTipsOptions{}, err
	}
	return opts, nil
}

// ParseGeocodeOptions decodes forward-geocode search options.
func (p *Parser) ParseGeocodeOptions(data []byte) (core.GeocodeOptions, error) {
	var opts core.GeocodeOptions
	if err := decode("geocodeOptions", data, &opts); err != nil {
		return core.GeocodeOptions{}, err
	}
	return opts, nil
}

// ParseReGeocodeOptions decodes reverse-geocode search options.
func (p *Parser) ParseReGeocodeOptions(data []byte) (core.ReGeocodeOptions, error) {
	var opts core.ReGeocodeOptions
	if err := decode("reGeocodeOptions", data, &opts); err != nil {
		return core.ReGeocodeOptions{}, err
	}
	return opts, nil
}

// ParseDrivingRouteOptions decodes driving route options, accepting the
// full show-field menu.
func (p *Parser) ParseDrivingRouteOptions(data []byte) (core.DrivingRouteOptions, error) {
	var opts core.DrivingRouteOptions
	if err := decode("drivingRouteOptions", data, &opts); err != nil {
		return core.DrivingRouteOptions{}, err
	}
	if err := checkEndpoints("drivingRouteOptions", opts.Origin, opts.Destination); err != nil {
		return core.DrivingRouteOptions{}, err
	}
	opts.ShowFieldType = defaultShowField(opts.ShowFieldType)
	if err := checkShowField("drivingRouteOptions", opts.ShowFieldType, drivingShowFields); err != nil {
		return core.DrivingRouteOptions{}, err
	}
	return opts, nil
}

// ParseWalkingRouteOptions decodes walking route options.
func (p *Parser) ParseWalkingRouteOptions(data []byte) (core.WalkingRouteOptions, error) {
	var opts core.WalkingRouteOptions
	if err := decode("walkingRouteOptions", data, &opts); err != nil {
		return core.WalkingRouteOptions{}, err
	}
	if err := checkEndpoints("walkingRouteOptions", opts.Origin, opts.Destination); err != nil {
		return core.WalkingRouteOptions{}, err
	}
	opts.ShowFieldType = defaultShowField(opts.ShowFieldType)
	if err := checkShowField("walkingRouteOptions", opts.ShowFieldType, commonShowFields); err != nil {
		return core.WalkingRouteOptions{}, err
	}
	return opts, nil
}

// ParseRidingRouteOptions decodes riding route options.
func (p *Parser) ParseRidingRouteOptions(data []byte) (core.RidingRouteOptions, error) {
	var opts core.RidingRouteOptions
	if err := decode("ridingRouteOptions", data, &opts); err != nil {
		return core.RidingRouteOptions{}, err
	}
	if err := checkEndpoints("ridingRouteOptions", opts.Origin, opts.Destination); err != nil {
		return core.RidingRouteOptions{}, err
	}
	opts.ShowFieldType = defaultShowField(opts.ShowFieldType)
	if err := checkShowField("ridingRouteOptions", opts.ShowFieldType, commonShowFields); err != nil {
		return core.RidingRouteOptions{}, err
	}
	return opts, nil
}

// ParseTransitRouteOptions decodes transit route options.
func (p *Parser) ParseTransitRouteOptions(data []byte) (core.TransitRouteOptions, error) {
	var opts core.TransitRouteOptions
	if err := decode("transitRouteOptions", data, &opts); err != nil {
		return core.TransitRouteOptions{}, err
	}
	if err := checkEndpoints("transitRouteOptions", opts.Origin, opts.Destination); err != nil {
		return core.TransitRouteOptions{}, err
	}
	opts.ShowFieldType = defaultShowField(opts.ShowFieldType)
	if err := checkShowField("transitRouteOptions", opts.ShowFieldType, commonShowFields); err != nil {
		return core.TransitRouteOptions{}, err
	}
	return opts, nil
}
