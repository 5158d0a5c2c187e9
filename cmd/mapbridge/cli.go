package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shanshu/mapbridge/internal/config"
	"github.com/shanshu/mapbridge/internal/imageloader"
	"github.com/shanshu/mapbridge/internal/influx"
	"github.com/shanshu/mapbridge/internal/monitor"
	"github.com/shanshu/mapbridge/internal/surface/memsurface"
	"github.com/shanshu/mapbridge/pkg/hostapi"
)

const settleTimeout = 15 * time.Second

// call dispatches one command and prints the immediate response. For
// queued commands it also waits for the settlement.
func call(host *hostapi.Host, command string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Errorf("failed to marshal payload: %w", err))
	}

	raw := host.Call(command, data)
	fmt.Println(raw)

	var resp hostapi.Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil || resp.Status != hostapi.StatusQueued {
		return
	}

	select {
	case settled := <-host.Responses().Receive():
		pretty, err := json.MarshalIndent(settled, "", "  ")
		if err != nil {
			fmt.Println(settled)
			return
		}
		fmt.Println(string(pretty))
	case <-time.After(settleTimeout):
		fmt.Println("timed out waiting for", command)
	}
}

func runGeocode(host *hostapi.Host, args []string) {
	if len(args) == 0 {
		fmt.Println("No address provided.")
		return
	}
	payload := map[string]any{"address": args[0]}
	if len(args) > 1 {
		payload["city"] = args[1]
	}
	call(host, "search:geocode", payload)
}

func runInputTips(host *hostapi.Host, args []string) {
	if len(args) == 0 {
		fmt.Println("No keywords provided.")
		return
	}
	payload := map[string]any{"keywords": args[0]}
	if len(args) > 1 {
		payload["city"] = args[1]
	}
	call(host, "search:inputTips", payload)
}

func runRoute(host *hostapi.Host, args []string) {
	if len(args) < 3 {
		fmt.Println("Usage: route <driving|walking|riding> <lat,lon> <lat,lon>")
		return
	}

	category := strings.ToLower(args[0])
	command, ok := map[string]string{
		"driving": "search:driving",
		"walking": "search:walking",
		"riding":  "search:riding",
	}[category]
	if !ok {
		fmt.Println("Unknown route category:", category)
		return
	}

	origin, err := parseLatLon(args[1])
	if err != nil {
		fmt.Println("Bad origin:", err)
		return
	}
	destination, err := parseLatLon(args[2])
	if err != nil {
		fmt.Println("Bad destination:", err)
		return
	}

	call(host, command, map[string]any{
		"origin":        origin,
		"destination":   destination,
		"showFieldType": "polyline",
	})
}

func parseLatLon(s string) (map[string]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("want lat,lon, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, err
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, err
	}
	return map[string]float64{"latitude": lat, "longitude": lon}, nil
}

// runDemo drives a scripted scenario against the in-memory surface and
// prints the events the bridge emits, with the stats monitor running.
func runDemo(host *hostapi.Host, surf *memsurface.Surface, cache *imageloader.LRUCache) {
	var influxMgr *influx.Manager
	if config.GetBool("influx.enabled") {
		influxMgr = influx.NewManager(logger, config.GetString("influx.backupDir")+"/bridge_stats.gz")
		if err := influxMgr.Connect(); err != nil {
			logger.Warn().Err(err).Msg("stats shipping disabled")
			influxMgr = nil
		}
	}

	mon := monitor.NewService(monitor.Dependencies{
		Cache:    cache,
		Surface:  surf,
		Backlog:  func() int { return host.Events().Len() },
		Influx:   influxMgr,
		Logger:   logger,
		Interval: 500 * time.Millisecond,
	})
	mon.Start()
	defer func() {
		mon.Stop()
		if influxMgr != nil {
			influxMgr.Close()
		}
	}()

	fmt.Println(host.Call("map:setRegion", []byte(`{
		"center": {"latitude": 31.2304, "longitude": 121.4737},
		"span": {"latitudeDelta": 0.3, "longitudeDelta": 0.3}
	}`)))

	fmt.Println(host.Call("map:setMarkers", []byte(`[
		{"id": "bund", "coordinate": {"latitude": 31.2400, "longitude": 121.4904}, "title": "外滩"},
		{"id": "pearl", "coordinate": {"latitude": 31.2397, "longitude": 121.4998}, "title": "东方明珠", "zIndex": 2}
	]`)))

	fmt.Println(host.Call("map:setPolylines", []byte(`[{
		"coordinates": [
			{"latitude": 31.2400, "longitude": 121.4904},
			{"latitude": 31.2397, "longitude": 121.4998}
		],
		"style": {"strokeColor": "#1e90ff", "lineWidth": 6}
	}]`)))

	fmt.Println(host.Call("map:setZoomLevel", []byte(`{"zoomLevel": 14}`)))

	surf.FinishLoading()
	surf.Tap("bund")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-host.Events().Receive():
			pretty, err := json.Marshal(e)
			if err != nil {
				fmt.Printf("%+v\n", e)
				continue
			}
			fmt.Println(string(pretty))
		case <-deadline:
			stats := mon.Sample()
			fmt.Printf("annotations=%d overlays=%d cacheBytes=%d\n",
				stats.Annotations, stats.Overlays, stats.CacheBytes)
			fmt.Println(host.Call("map:dispose", nil))
			return
		}
	}
}
