package parser

import (
	"fmt"

	"github.com/shanshu/mapbridge/internal/model/core"
)

// ParseMarkers decodes a marker descriptor list. Every marker must carry a
// unique id; duplicates are decode errors because id is the diff identity.
func (p *Parser) ParseMarkers(data []byte) ([]core.Marker, error) {
	var markers []core.Marker
	if err := decode("markers", data, &markers); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(markers))
	for i, m := range markers {
		if m.ID == "" {
			return nil, &DecodeError{Payload: "markers", Field: fmt.Sprintf("[%d].id", i), Reason: "required"}
		}
		if seen[m.ID] {
			return nil, &DecodeError{Payload: "markers", Field: fmt.Sprintf("[%d].id", i), Reason: "duplicate id " + m.ID}
		}
		seen[m.ID] = true
	}
	return markers, nil
}

// ParseAnnotationStyles decodes a style template list. Styles must carry an
// id and an image reference; annotations bind to them by id.
func (p *Parser) ParseAnnotationStyles(data []byte) ([]core.AnnotationStyle, error) {
	var styles []core.AnnotationStyle
	if err := decode("annotationStyles", data, &styles); err != nil {
		return nil, err
	}
	for i, s := range styles {
		if s.ID == "" {
			return nil, &DecodeError{Payload: "annotationStyles", Field: fmt.Sprintf("[%d].id", i), Reason: "required"}
		}
		if s.Image.URL == "" {
			return nil, &DecodeError{Payload: "annotationStyles", Field: fmt.Sprintf("[%d].image.url", i), Reason: "required"}
		}
	}
	return styles, nil
}

// ParseAnnotations decodes an annotation list. A styleId referencing no
// known style is not checked here: the reconciler drops such annotations at
// render time by policy.
func (p *Parser) ParseAnnotations(data []byte) ([]core.Annotation, error) {
	var annotations []core.Annotation
	if err := decode("annotations", data, &annotations); err != nil {
		return nil, err
	}
	for i, a := range annotations {
		if a.ID == "" {
			return nil, &DecodeError{Payload: "annotations", Field: fmt.Sprintf("[%d].id", i), Reason: "required"}
		}
		if a.StyleID == "" {
			return nil, &DecodeError{Payload: "annotations", Field: fmt.Sprintf("[%d].styleId", i), Reason: "required"}
		}
	}
	return annotations, nil
}

// ParsePolylines decodes a polyline list. Coordinate counts are not
// validated: degenerate lines are skipped by the reconciler, matching the
// pass-through policy for out-of-range values.
func (p *Parser) ParsePolylines(data []byte) ([]core.Polyline, error) {
	var polylines []core.Polyline
	if err := decode("polylines", data, &polylines); err != nil {
		return nil, err
	}
	return polylines, nil
}

// ParseRegion decodes a visible-region payload.
func (p *Parser) ParseRegion(data []byte) (core.Region, error) {
	var region core.Region
	if err := decode("region", data, &region); err != nil {
		return core.Region{}, err
	}
	return region, nil
}

// ParseCoordinate decodes a bare coordinate payload.
func (p *Parser) ParseCoordinate(data []byte) (core.Coordinate, error) {
	var c core.Coordinate
	if err := decode("coordinate", data, &c); err != nil {
		return core.Coordinate{}, err
	}
	return c, nil
}

// ParseCustomStyle decodes a vendor custom-style payload.
func (p *Parser) ParseCustomStyle(data []byte) (core.CustomStyle, error) {
	var style core.CustomStyle
	if err := decode("customStyle", data, &style); err != nil {
		return core.CustomStyle{}, err
	}
	return style, nil
}
