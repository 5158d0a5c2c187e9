package amapweb

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shanshu/mapbridge/internal/geo"
	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/shanshu/mapbridge/internal/search"
)

// The web service encodes numbers as strings and collapses empty fields to
// "[]"; the wire types below absorb both quirks before anything typed is
// built.

type wireString string

func (s *wireString) UnmarshalJSON(data []byte) error {
	// Empty objects/arrays stand in for missing strings.
	if len(data) > 0 && (data[0] == '[' || data[0] == '{') {
		*s = ""
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = wireString(raw)
	return nil
}

func (s wireString) float() float64 {
	f, _ := strconv.ParseFloat(string(s), 64)
	return f
}

func (s wireString) int() int {
	i, _ := strconv.Atoi(string(s))
	return i
}

func (s wireString) coordinate() core.Coordinate {
	c, _ := geo.ParseCoordinate(string(s))
	return c
}

// wireNamed is a {"name": ...} object that the service collapses to "[]"
// when absent.
type wireNamed struct {
	Name wireString
}

func (n *wireNamed) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		return nil
	}
	var raw struct {
		Name wireString `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Name = raw.Name
	return nil
}

func decodeInputTips(body []byte) (any, error) {
	var wire struct {
		Count wireString `json:"count"`
		Tips  []struct {
			ID       wireString `json:"id"`
			Name     wireString `json:"name"`
			Address  wireString `json:"address"`
			Adcode   wireString `json:"adcode"`
			District wireString `json:"district"`
			Typecode wireString `json:"typecode"`
		} `json:"tips"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode input tips: %w", err)
	}
	resp := &search.InputTipsResponse{Count: wire.Count.int()}
	for _, t := range wire.Tips {
		resp.Tips = append(resp.Tips, core.InputTip{
			UID:      string(t.ID),
			Name:     string(t.Name),
			Address:  string(t.Address),
			Adcode:   string(t.Adcode),
			District: string(t.District),
			Typecode: string(t.Typecode),
		})
	}
	return resp, nil
}

func decodeGeocode(body []byte) (any, error) {
	var wire struct {
		Count    wireString `json:"count"`
		Geocodes []struct {
			FormattedAddress wireString `json:"formatted_address"`
			Country          wireString `json:"country"`
			Province         wireString `json:"province"`
			City             wireString `json:"city"`
			CityCode         wireString `json:"citycode"`
			District         wireString `json:"district"`
			Adcode           wireString `json:"adcode"`
			Level            wireString `json:"level"`
			Location         wireString `json:"location"`
		} `json:"geocodes"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode geocode: %w", err)
	}
	resp := &search.GeocodeResponse{Count: wire.Count.int()}
	for _, g := range wire.Geocodes {
		resp.Geocodes = append(resp.Geocodes, core.Geocode{
			FormattedAddress: string(g.FormattedAddress),
			Country:          string(g.Country),
			Province:         string(g.Province),
			City:             string(g.City),
			CityCode:         string(g.CityCode),
			District:         string(g.District),
			Adcode:           string(g.Adcode),
			Level:            string(g.Level),
			Location:         g.Location.coordinate(),
		})
	}
	return resp, nil
}

func decodeReGeocode(body []byte) (any, error) {
	var wire struct {
		ReGeocode *struct {
			FormattedAddress wireString `json:"formatted_address"`
			AddressComponent struct {
				Country      wireString `json:"country"`
				Province     wireString `json:"province"`
				City         wireString `json:"city"`
				CityCode     wireString `json:"citycode"`
				District     wireString `json:"district"`
				Adcode       wireString `json:"adcode"`
				Township     wireString `json:"township"`
				Towncode     wireString `json:"towncode"`
				Neighborhood wireNamed  `json:"neighborhood"`
				Building     wireNamed  `json:"building"`
			} `json:"addressComponent"`
			POIs []struct {
				ID       wireString `json:"id"`
				Name     wireString `json:"name"`
				Type     wireString `json:"type"`
				Address  wireString `json:"address"`
				Distance wireString `json:"distance"`
				Location wireString `json:"location"`
			} `json:"pois"`
			AOIs []struct {
				ID       wireString `json:"id"`
				Name     wireString `json:"name"`
				Adcode   wireString `json:"adcode"`
				Area     wireString `json:"area"`
				Location wireString `json:"location"`
			} `json:"aois"`
			Roads []struct {
				ID        wireString `json:"id"`
				Name      wireString `json:"name"`
				Direction wireString `json:"direction"`
				Distance  wireString `json:"distance"`
				Location  wireString `json:"location"`
			} `json:"roads"`
			RoadInters []struct {
				Direction  wireString `json:"direction"`
				Distance   wireString `json:"distance"`
				FirstID    wireString `json:"first_id"`
				FirstName  wireString `json:"first_name"`
				SecondID   wireString `json:"second_id"`
				SecondName wireString `json:"second_name"`
				Location   wireString `json:"location"`
			} `json:"roadinters"`
		} `json:"regeocode"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode regeocode: %w", err)
	}
	if wire.ReGeocode == nil {
		return &search.ReGeocodeResponse{}, nil
	}

	w := wire.ReGeocode
	result := &core.ReGeocodeResult{
		FormattedAddress: string(w.FormattedAddress),
		AddressComponent: core.AddressComponent{
			Country:      string(w.AddressComponent.Country),
			Province:     string(w.AddressComponent.Province),
			City:         string(w.AddressComponent.City),
			CityCode:     string(w.AddressComponent.CityCode),
			District:     string(w.AddressComponent.District),
			Adcode:       string(w.AddressComponent.Adcode),
			Township:     string(w.AddressComponent.Township),
			Towncode:     string(w.AddressComponent.Towncode),
			Neighborhood: string(w.AddressComponent.Neighborhood.Name),
			Building:     string(w.AddressComponent.Building.Name),
		},
	}
	for _, p := range w.POIs {
		result.POIs = append(result.POIs, core.POI{
			UID:      string(p.ID),
			Name:     string(p.Name),
			Type:     string(p.Type),
			Address:  string(p.Address),
			Distance: p.Distance.float(),
			Location: p.Location.coordinate(),
		})
	}
	for _, a := range w.AOIs {
		result.AOIs = append(result.AOIs, core.AOI{
			UID:      string(a.ID),
			Name:     string(a.Name),
			Adcode:   string(a.Adcode),
			Area:     a.Area.float(),
			Location: a.Location.coordinate(),
		})
	}
	for _, r := range w.Roads {
		result.Roads = append(result.Roads, core.Road{
			UID:       string(r.ID),
			Name:      string(r.Name),
			Direction: string(r.Direction),
			Distance:  r.Distance.float(),
			Location:  r.Location.coordinate(),
		})
	}
	for _, r := range w.RoadInters {
		result.RoadInters = append(result.RoadInters, core.RoadInter{
			Direction:   string(r.Direction),
			Distance:    r.Distance.float(),
			FirstRoadID: string(r.FirstID),
			FirstName:   string(r.FirstName),
			SecondID:    string(r.SecondID),
			SecondName:  string(r.SecondName),
			Location:    r.Location.coordinate(),
		})
	}
	return &search.ReGeocodeResponse{ReGeocode: result}, nil
}

func decodeRoute(body []byte) (any, error) {
	var wire struct {
		Count wireString `json:"count"`
		Route *struct {
			Origin      wireString `json:"origin"`
			Destination wireString `json:"destination"`
			TaxiCost    wireString `json:"taxi_cost"`
			Paths       []struct {
				Distance wireString `json:"distance"`
				Duration wireString `json:"duration"`
				Cost     struct {
					Duration wireString `json:"duration"`
				} `json:"cost"`
				Polyline wireString `json:"polyline"`
				Steps    []struct {
					Instruction wireString `json:"instruction"`
					Polyline    wireString `json:"polyline"`
				} `json:"steps"`
			} `json:"paths"`
			Transits []struct {
				Cost struct {
					TransitFee wireString `json:"transit_fee"`
					Duration   wireString `json:"duration"`
				} `json:"cost"`
				NightFlag       wireString `json:"nightflag"`
				WalkingDistance wireString `json:"walking_distance"`
				Distance        wireString `json:"distance"`
			} `json:"transits"`
		} `json:"route"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}

	resp := &search.RouteResponse{Count: wire.Count.int()}
	if wire.Route == nil {
		return resp, nil
	}

	payload := &search.RoutePayload{TaxiCost: wire.Route.TaxiCost.float()}
	if string(wire.Route.Origin) != "" {
		c := wire.Route.Origin.coordinate()
		payload.Origin = &c
	}
	if string(wire.Route.Destination) != "" {
		c := wire.Route.Destination.coordinate()
		payload.Destination = &c
	}
	for _, p := range wire.Route.Paths {
		duration := p.Duration.float()
		if duration == 0 {
			duration = p.Cost.Duration.float()
		}
		path := search.RoutePath{
			Distance: p.Distance.float(),
			Duration: duration,
			Polyline: string(p.Polyline),
		}
		for _, s := range p.Steps {
			path.Steps = append(path.Steps, search.RouteStep{
				Instruction: string(s.Instruction),
				Polyline:    string(s.Polyline),
			})
		}
		payload.Paths = append(payload.Paths, path)
	}
	for _, t := range wire.Route.Transits {
		payload.Transits = append(payload.Transits, search.RouteTransit{
			Cost:            t.Cost.TransitFee.float(),
			Duration:        t.Cost.Duration.float(),
			NightFlag:       string(t.NightFlag) == "1",
			WalkingDistance: t.WalkingDistance.float(),
			Distance:        t.Distance.float(),
		})
	}
	resp.Route = payload
	return resp, nil
}
