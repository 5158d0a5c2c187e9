// Package hostapi is the inbound surface a UI host calls: one entry point
// taking a string command and a JSON payload. Prop updates and camera
// calls apply synchronously; searches and location requests are queued and
// settle later on the Responses stream.
package hostapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shanshu/mapbridge/internal/bridge"
	"github.com/shanshu/mapbridge/internal/channel"
	"github.com/shanshu/mapbridge/internal/dispatcher"
	"github.com/shanshu/mapbridge/internal/logging"
	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/shanshu/mapbridge/internal/parser"
)

// Response statuses.
const (
	StatusOK     = "ok"
	StatusQueued = "queued"
	StatusError  = "error"
)

const responseBufferSize = 64

// Response is the shaped result of a call. Synchronous commands return it
// from Call; queued commands deliver it later on Responses.
type Response struct {
	Command string `json:"command"`
	Status  string `json:"status"`
	Result  any    `json:"result,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Host routes commands to the bridge through the dispatcher.
type Host struct {
	version    string
	bridge     *bridge.Bridge
	parser     *parser.Parser
	dispatcher *dispatcher.Dispatcher
	log        zerolog.Logger

	ctx       context.Context
	responses channel.Channel[Response]
}

// New builds a host around a bridge and registers the command set.
func New(b *bridge.Bridge, version string, log zerolog.Logger) (*Host, error) {
	d, err := dispatcher.New(logging.NewDispatcherLogger(log))
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}
	h := &Host{
		version:    version,
		bridge:     b,
		parser:     parser.New(log),
		dispatcher: d,
		log:        log.With().Str("component", "hostapi").Logger(),
		ctx:        context.Background(),
		responses:  channel.New[Response](responseBufferSize),
	}
	h.register()
	return h, nil
}

// Version reports the version string handed to New.
func (h *Host) Version() string {
	return h.version
}

// Responses is the stream of queued-command settlements.
func (h *Host) Responses() channel.Receiver[Response] {
	return h.responses
}

// Events exposes the bridge's outbound native-callback stream.
func (h *Host) Events() channel.Receiver[bridge.Event] {
	return h.bridge.Events()
}

// HasCommand reports whether the command is registered.
func (h *Host) HasCommand(command string) bool {
	return h.dispatcher.HasHandler(command)
}

// Call dispatches one command. The returned string is the marshalled
// Response; it never fails to marshal.
func (h *Host) Call(command string, payload []byte) string {
	if !h.dispatcher.HasHandler(command) {
		return marshal(Response{Command: command, Status: StatusError, Message: "no handler registered"})
	}

	result, err := h.dispatcher.Dispatch(dispatcher.Event{
		Command:   command,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		return marshal(Response{Command: command, Status: StatusError, Message: err.Error()})
	}
	if result == StatusQueued {
		return marshal(Response{Command: command, Status: StatusQueued})
	}
	return marshal(Response{Command: command, Status: StatusOK, Result: result})
}

func marshal(r Response) string {
	data, err := json.Marshal(r)
	if err != nil {
		return `{"status":"error","message":"response marshal failed"}`
	}
	return string(data)
}

func (h *Host) register() {
	d := h.dispatcher

	d.Register("map:setMarkers", h.handleSetMarkers, dispatcher.Logged())
	d.Register("map:setAnnotationStyles", h.handleSetAnnotationStyles, dispatcher.Logged())
	d.Register("map:setAnnotations", h.handleSetAnnotations, dispatcher.Logged())
	d.Register("map:setSelectedAnnotationId", h.handleSetSelectedAnnotation)
	d.Register("map:setPolylines", h.handleSetPolylines, dispatcher.Logged())

	d.Register("map:setCenter", h.handleSetCenter)
	d.Register("map:setRegion", h.handleSetRegion)
	d.Register("map:setInitialRegion", h.handleSetInitialRegion)
	d.Register("map:setLimitRegion", h.handleSetLimitRegion)
	d.Register("map:setZoomLevel", h.handleSetZoomLevel)
	d.Register("map:setMinZoomLevel", h.handleSetMinZoomLevel)
	d.Register("map:setMaxZoomLevel", h.handleSetMaxZoomLevel)
	d.Register("map:setMapType", h.handleSetMapType)
	d.Register("map:setLanguage", h.handleSetLanguage)
	d.Register("map:setCustomStyle", h.handleSetCustomStyle)
	d.Register("map:setShowUserLocation", h.handleSetShowUserLocation)
	d.Register("map:setUserTrackingMode", h.handleSetUserTrackingMode)
	d.Register("map:dispose", h.handleDispose)

	d.Register("location:request", h.handleRequestLocation, dispatcher.Logged())

	d.Register("search:inputTips", h.handleSearchInputTips, dispatcher.Logged())
	d.Register("search:geocode", h.handleSearchGeocode, dispatcher.Logged())
	d.Register("search:regeocode", h.handleSearchReGeocode, dispatcher.Logged())
	d.Register("search:driving", h.handleSearchDriving, dispatcher.Logged())
	d.Register("search:walking", h.handleSearchWalking, dispatcher.Logged())
	d.Register("search:riding", h.handleSearchRiding, dispatcher.Logged())
	d.Register("search:transit", h.handleSearchTransit, dispatcher.Logged())
}

// View props.

func (h *Host) handleSetMarkers(e dispatcher.Event) (any, error) {
	markers, err := h.parser.ParseMarkers(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SetMarkers(h.ctx, markers)
	return len(markers), nil
}

func (h *Host) handleSetAnnotationStyles(e dispatcher.Event) (any, error) {
	styles, err := h.parser.ParseAnnotationStyles(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SetAnnotationStyles(h.ctx, styles)
	return len(styles), nil
}

func (h *Host) handleSetAnnotations(e dispatcher.Event) (any, error) {
	annotations, err := h.parser.ParseAnnotations(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SetAnnotations(annotations)
	return len(annotations), nil
}

func (h *Host) handleSetSelectedAnnotation(e dispatcher.Event) (any, error) {
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeInto(e, &body); err != nil {
		return nil, err
	}
	h.bridge.SetSelectedAnnotationID(body.ID)
	return nil, nil
}

func (h *Host) handleSetPolylines(e dispatcher.Event) (any, error) {
	polylines, err := h.parser.ParsePolylines(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SetPolylines(h.ctx, polylines)
	return len(polylines), nil
}

// Camera and surface props.

func (h *Host) handleSetCenter(e dispatcher.Event) (any, error) {
	c, err := h.parser.ParseCoordinate(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SetCenter(c, true)
	return nil, nil
}

func (h *Host) handleSetRegion(e dispatcher.Event) (any, error) {
	r, err := h.parser.ParseRegion(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SetRegion(r, true)
	return nil, nil
}

func (h *Host) handleSetInitialRegion(e dispatcher.Event) (any, error) {
	r, err := h.parser.ParseRegion(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SetInitialRegion(r)
	return nil, nil
}

func (h *Host) handleSetLimitRegion(e dispatcher.Event) (any, error) {
	r, err := h.parser.ParseRegion(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SetLimitRegion(r)
	return nil, nil
}

func (h *Host) handleSetZoomLevel(e dispatcher.Event) (any, error) {
	var body struct {
		ZoomLevel float64 `json:"zoomLevel"`
	}
	if err := decodeInto(e, &body); err != nil {
		return nil, err
	}
	h.bridge.SetZoomLevel(body.ZoomLevel, true)
	return nil, nil
}

func (h *Host) handleSetMinZoomLevel(e dispatcher.Event) (any, error) {
	var body struct {
		ZoomLevel float64 `json:"zoomLevel"`
	}
	if err := decodeInto(e, &body); err != nil {
		return nil, err
	}
	h.bridge.SetMinZoomLevel(body.ZoomLevel)
	return nil, nil
}

func (h *Host) handleSetMaxZoomLevel(e dispatcher.Event) (any, error) {
	var body struct {
		ZoomLevel float64 `json:"zoomLevel"`
	}
	if err := decodeInto(e, &body); err != nil {
		return nil, err
	}
	h.bridge.SetMaxZoomLevel(body.ZoomLevel)
	return nil, nil
}

func (h *Host) handleSetMapType(e dispatcher.Event) (any, error) {
	var body struct {
		MapType int `json:"mapType"`
	}
	if err := decodeInto(e, &body); err != nil {
		return nil, err
	}
	h.bridge.SetMapType(core.MapType(body.MapType))
	return nil, nil
}

func (h *Host) handleSetLanguage(e dispatcher.Event) (any, error) {
	var body struct {
		Language string `json:"language"`
	}
	if err := decodeInto(e, &body); err != nil {
		return nil, err
	}
	h.bridge.SetLanguage(body.Language)
	return nil, nil
}

func (h *Host) handleSetCustomStyle(e dispatcher.Event) (any, error) {
	s, err := h.parser.ParseCustomStyle(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SetCustomStyle(s)
	return nil, nil
}

func (h *Host) handleSetShowUserLocation(e dispatcher.Event) (any, error) {
	var body struct {
		Show bool `json:"show"`
	}
	if err := decodeInto(e, &body); err != nil {
		return nil, err
	}
	h.bridge.SetShowUserLocation(body.Show)
	return nil, nil
}

func (h *Host) handleSetUserTrackingMode(e dispatcher.Event) (any, error) {
	var body struct {
		Mode int `json:"mode"`
	}
	if err := decodeInto(e, &body); err != nil {
		return nil, err
	}
	h.bridge.SetUserTrackingMode(core.UserTrackingMode(body.Mode))
	return nil, nil
}

func (h *Host) handleDispose(dispatcher.Event) (any, error) {
	h.bridge.Dispose()
	return nil, nil
}

// Queued calls. The settlement arrives on Responses under the same command
// name.

func (h *Host) handleRequestLocation(e dispatcher.Event) (any, error) {
	h.bridge.RequestLocation(settle[core.Location](h, e.Command), failing(h, e.Command))
	return StatusQueued, nil
}

func (h *Host) handleSearchInputTips(e dispatcher.Event) (any, error) {
	opts, err := h.parser.ParseInputTipsOptions(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SearchInputTips(opts, settle[core.InputTipsResult](h, e.Command), failing(h, e.Command))
	return StatusQueued, nil
}

func (h *Host) handleSearchGeocode(e dispatcher.Event) (any, error) {
	opts, err := h.parser.ParseGeocodeOptions(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SearchGeocode(opts, settle[core.GeocodeResult](h, e.Command), failing(h, e.Command))
	return StatusQueued, nil
}

func (h *Host) handleSearchReGeocode(e dispatcher.Event) (any, error) {
	opts, err := h.parser.ParseReGeocodeOptions(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SearchReGeocode(opts, settle[core.ReGeocodeResult](h, e.Command), failing(h, e.Command))
	return StatusQueued, nil
}

func (h *Host) handleSearchDriving(e dispatcher.Event) (any, error) {
	opts, err := h.parser.ParseDrivingRouteOptions(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SearchDrivingRoute(opts, settle[core.RouteResult](h, e.Command), failing(h, e.Command))
	return StatusQueued, nil
}

func (h *Host) handleSearchWalking(e dispatcher.Event) (any, error) {
	opts, err := h.parser.ParseWalkingRouteOptions(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SearchWalkingRoute(opts, settle[core.RouteResult](h, e.Command), failing(h, e.Command))
	return StatusQueued, nil
}

func (h *Host) handleSearchRiding(e dispatcher.Event) (any, error) {
	opts, err := h.parser.ParseRidingRouteOptions(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SearchRidingRoute(opts, settle[core.RouteResult](h, e.Command), failing(h, e.Command))
	return StatusQueued, nil
}

func (h *Host) handleSearchTransit(e dispatcher.Event) (any, error) {
	opts, err := h.parser.ParseTransitRouteOptions(e.Payload)
	if err != nil {
		return nil, err
	}
	h.bridge.SearchTransitRoute(opts, settle[core.RouteResult](h, e.Command), failing(h, e.Command))
	return StatusQueued, nil
}

// settle shapes a queued command's success into a Response.
func settle[T any](h *Host, command string) func(T) {
	return func(v T) {
		h.push(Response{Command: command, Status: StatusOK, Result: v})
	}
}

// failing shapes a queued command's rejection into a Response.
func failing(h *Host, command string) func(code, message string) {
	return func(code, message string) {
		h.push(Response{Command: command, Status: StatusError, Code: code, Message: message})
	}
}

func (h *Host) push(r Response) {
	if !h.responses.TrySend(r) {
		h.log.Warn().Str("command", r.Command).Msg("response buffer full, dropping")
	}
}

func decodeInto(e dispatcher.Event, v any) error {
	dec := json.NewDecoder(bytes.NewReader(e.Payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Command, err)
	}
	return nil
}
