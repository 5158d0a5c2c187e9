// internal/model/core/view.go
package core

// TextStyle configures the label drawn on a marker or annotation view.
type TextStyle struct {
	Color         *string  `json:"color,omitempty"`
	FontSize      *float64 `json:"fontSize,omitempty"`
	FontWeight    *string  `json:"fontWeight,omitempty"`
	FontFamily    *string  `json:"fontFamily,omitempty"`
	NumberOfLines *int     `json:"numberOfLines,omitempty"`
	TextAlign     *string  `json:"textAlign,omitempty"`
	Offset        *Point   `json:"offset,omitempty"`
}

// Equal reports whether two optional text styles describe the same label.
func (s *TextStyle) Equal(o *TextStyle) bool {
	if s == nil || o == nil {
		return s == o
	}
	return eqStr(s.Color, o.Color) &&
		eqF64(s.FontSize, o.FontSize) &&
		eqStr(s.FontWeight, o.FontWeight) &&
		eqStr(s.FontFamily, o.FontFamily) &&
		eqInt(s.NumberOfLines, o.NumberOfLines) &&
		eqStr(s.TextAlign, o.TextAlign) &&
		eqPoint(s.Offset, o.Offset)
}

// MarkerImage references an image by URL, base64 data URI, bundle name or
// file path, together with the size it should be rendered at.
type MarkerImage struct {
	URL  string `json:"url"`
	Size Size   `json:"size"`
}

// Marker is the declarative description of a single map marker. Identity is
// ID; every other field may change between updates.
type Marker struct {
	ID                string       `json:"id"`
	Coordinate        Coordinate   `json:"coordinate"`
	Title             *string      `json:"title,omitempty"`
	Subtitle          *string      `json:"subtitle,omitempty"`
	ZIndex            *int         `json:"zIndex,omitempty"`
	Image             *MarkerImage `json:"image,omitempty"`
	CenterOffset      *Point       `json:"centerOffset,omitempty"`
	CalloutOffset     *Point       `json:"calloutOffset,omitempty"`
	TextOffset        *Point       `json:"textOffset,omitempty"`
	Enabled           *bool        `json:"enabled,omitempty"`
	Highlighted       *bool        `json:"highlighted,omitempty"`
	CanShowCallout    *bool        `json:"canShowCallout,omitempty"`
	Draggable         *bool        `json:"draggable,omitempty"`
	CanAdjustPosition *bool        `json:"canAdjustPosition,omitempty"`
	TextStyle         *TextStyle   `json:"textStyle,omitempty"`
	PinColor          *int         `json:"pinColor,omitempty"`
}

// ImageURL returns the marker's image reference, or "" if it has none.
func (m Marker) ImageURL() string {
	if m.Image == nil {
		return ""
	}
	return m.Image.URL
}

// AnnotationStyle is a reusable view template referenced by annotations via
// StyleID. Style content is expected to be stable per render pass; changing
// it forces a full re-resolution of its image.
type AnnotationStyle struct {
	ID           string      `json:"id"`
	ZIndex       *int        `json:"zIndex,omitempty"`
	Image        MarkerImage `json:"image"`
	TextStyle    *TextStyle  `json:"textStyle,omitempty"`
	CenterOffset *Point      `json:"centerOffset,omitempty"`
	Enabled      *bool       `json:"enabled,omitempty"`
}

// Annotation is the lighter-weight marker variant bound to a style.
type Annotation struct {
	ID         string     `json:"id"`
	Coordinate Coordinate `json:"coordinate"`
	StyleID    string     `json:"styleId"`
	Title      *string    `json:"title,omitempty"`
	Selected   *bool      `json:"selected,omitempty"`
}

// PathShowRange restricts rendering to a sub-range [Begin, End] of a path.
type PathShowRange struct {
	Begin float64 `json:"begin"`
	End   float64 `json:"end"`
}

// PolylineStyle carries every rendering attribute of a polyline overlay.
// Colors are hex strings (#RRGGBB or #RRGGBBAA).
type PolylineStyle struct {
	FillColor        *string        `json:"fillColor,omitempty"`
	StrokeColor      *string        `json:"strokeColor,omitempty"`
	LineWidth        *float64       `json:"lineWidth,omitempty"`
	LineJoinType     *int           `json:"lineJoinType,omitempty"`
	LineCapType      *int           `json:"lineCapType,omitempty"`
	MiterLimit       *float64       `json:"miterLimit,omitempty"`
	LineDashType     *int           `json:"lineDashType,omitempty"`
	ReducePoint      *bool          `json:"reducePoint,omitempty"`
	Is3DArrowLine    *bool          `json:"is3DArrowLine,omitempty"`
	SideColor        *string        `json:"sideColor,omitempty"`
	Interactive      *bool          `json:"userInteractionEnabled,omitempty"`
	HitTestInset     *float64       `json:"hitTestInset,omitempty"`
	ShowRangeEnabled *bool          `json:"showRangeEnabled,omitempty"`
	PathShowRange    *PathShowRange `json:"pathShowRange,omitempty"`
	TextureImage     *string        `json:"textureImage,omitempty"`
}

// Polyline is one overlay segment. Polylines carry no host-side identity;
// the whole set is replaced on every update.
type Polyline struct {
	Coordinates []Coordinate  `json:"coordinates"`
	Style       PolylineStyle `json:"style"`
}

// CustomStyle carries a vendor custom map style blob.
type CustomStyle struct {
	Enabled        bool   `json:"enabled"`
	StyleData      []byte `json:"styleData,omitempty"`
	StyleExtraData []byte `json:"styleExtraData,omitempty"`
}

func eqStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqF64(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqPoint(a, b *Point) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.X == b.X && a.Y == b.Y
}

// EqualStr, EqualF64, EqualInt, EqualBool and EqualPoint are exported for
// the reconcilers' field-by-field change detection.
func EqualStr(a, b *string) bool  { return eqStr(a, b) }
func EqualF64(a, b *float64) bool { return eqF64(a, b) }
func EqualInt(a, b *int) bool     { return eqInt(a, b) }
func EqualBool(a, b *bool) bool   { return eqBool(a, b) }
func EqualPoint(a, b *Point) bool { return eqPoint(a, b) }
