// pilot/pilot.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package pilot is the top-level controller: it owns the flight phase,
// invokes navigation, terrain, weather, performance, and the approach
// monitor in a fixed order each tick, and emits the resulting commands
// to the simulator bridge.
package pilot

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Plane14/AICopilotFS-sub000/approach"
	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/bridge"
	"github.com/Plane14/AICopilotFS-sub000/log"
	"github.com/Plane14/AICopilotFS-sub000/math"
	"github.com/Plane14/AICopilotFS-sub000/nav"
	"github.com/Plane14/AICopilotFS-sub000/perf"
	"github.com/Plane14/AICopilotFS-sub000/taws"
	"github.com/Plane14/AICopilotFS-sub000/terrain"
	"github.com/Plane14/AICopilotFS-sub000/wx"

	"github.com/goforj/godump"
)

const (
	// TickInterval is the control loop period, nominally 20 Hz.
	TickInterval = 50 * time.Millisecond

	// maxSkippedTicks is how many consecutive bridge failures are
	// tolerated before the connection counts as lost.
	maxSkippedTicks = 100

	// Approach geometry: a standard 3 degree glidepath, with course
	// deviation indicator dots of 0.35 degrees (glideslope) and 1.25
	// degrees (localizer).
	glideslopeAngle = 3
	dotGlideslope   = 0.35
	dotLocalizer    = 1.25

	// tawsLookAheadSec is how far ahead terrain conflicts are
	// predicted.
	tawsLookAheadSec = 60

	descentAltitude   = 3000 // feet MSL, initial approach altitude
	gearExtendAGL     = 3000
	goAroundClimb     = 1500 // feet above the field
	avgasPoundsPerGal = 6
)

var ErrConnectionLost = errors.New("Simulator connection lost")

// Pilot flies the aircraft through the phases of a flight plan.
type Pilot struct {
	bridge  bridge.Bridge
	nav     *nav.Nav
	taws    *taws.System
	monitor *approach.Monitor
	wx      *wx.Cache
	runways *aviation.RunwayDB
	acft    *perf.AircraftConfig
	lg      *log.Logger

	active  atomic.Bool
	verbose bool

	phase       Phase
	phaseFresh  bool // first tick in the current phase
	skipped     int
	landingRwy  *aviation.Runway
	fieldElev   float32
	vspeeds     perf.VSpeeds
	lowFuelSaid bool
}

// Config carries everything a Pilot needs beyond the simulator link.
type Config struct {
	Nav      *nav.Nav
	Terrain  *taws.System
	Weather  *wx.Cache
	Runways  *aviation.RunwayDB
	Aircraft *perf.AircraftConfig
	Verbose  bool
}

func New(b bridge.Bridge, cfg Config, lg *log.Logger) *Pilot {
	acft := cfg.Aircraft
	if acft == nil {
		acft = perf.DefaultAircraftConfig()
	}
	p := &Pilot{
		bridge:     b,
		nav:        cfg.Nav,
		taws:       cfg.Terrain,
		monitor:    approach.NewMonitor(lg),
		wx:         cfg.Weather,
		runways:    cfg.Runways,
		acft:       acft,
		lg:         lg,
		verbose:    cfg.Verbose,
		phaseFresh: true,
	}
	if p.wx == nil {
		p.wx = wx.NewCache()
	}
	if p.nav == nil {
		p.nav = nav.NewNav(&nav.FlightPlan{}, lg)
	}
	if p.taws == nil {
		p.taws = taws.NewSystem(terrain.NewStore("", lg), lg)
	}
	return p
}

func (p *Pilot) Phase() Phase { return p.phase }

// Observe feeds a raw METAR into the pilot's weather picture.
func (p *Pilot) Observe(raw string) error {
	m := wx.ParseMETAR(raw)
	if !p.wx.Add(m) {
		return errors.New(m.ParseError)
	}
	p.lg.Info("weather observed", slog.String("station", m.Station),
		slog.Float64("ceiling", float64(m.Ceiling)),
		slog.Float64("visibility", float64(m.Visibility)))
	return nil
}

// Stop requests an orderly shutdown; the next tick runs the SHUTDOWN
// actions and the loop returns.
func (p *Pilot) Stop() {
	p.active.Store(false)
}

// Run drives the control loop until the flight shuts down, the context
// is canceled, or the simulator connection is lost.
func (p *Pilot) Run(ctx context.Context) error {
	p.active.Store(true)
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.shutdownPass()
			return ctx.Err()
		case <-ticker.C:
			if !p.active.Load() {
				p.shutdownPass()
				return nil
			}
			if err := p.Tick(); err != nil {
				return err
			}
		}
	}
}

// shutdownPass runs one final SHUTDOWN tick so the aircraft is left
// secured.
func (p *Pilot) shutdownPass() {
	p.setPhase(PhaseShutdown)
	if st, err := p.bridge.State(); err == nil {
		p.act(st, nav.Guidance{Done: true})
	}
}

func (p *Pilot) setPhase(next Phase) {
	if next == p.phase {
		return
	}
	p.lg.Info("phase", slog.String("from", p.phase.String()), slog.String("to", next.String()))
	p.phase = next
	p.phaseFresh = true
}

// Tick runs one control cycle: pull telemetry, evaluate the phase, run
// guidance/terrain/approach checks, then emit this phase's commands.
// Commands are always computed from the single snapshot pulled at the
// top of the tick.
func (p *Pilot) Tick() error {
	st, err := p.bridge.State()
	if err != nil {
		p.skipped++
		if p.skipped >= maxSkippedTicks {
			return ErrConnectionLost
		}
		p.lg.Debugf("tick skipped: %v", err)
		return nil
	}
	p.skipped = 0

	// Safety probes run before anything else; a failed probe suppresses
	// normal actions.
	safety := CheckSafety(p.phase, st)
	if safety.LowFuel && !p.lowFuelSaid {
		p.lg.Warn("low fuel, requesting diversion", slog.Float64("gallons", float64(st.FuelGallons)))
		p.lowFuelSaid = true
		if !st.OnGround {
			p.divert(st)
		}
	}

	distToDest := p.nav.DistanceTo(st.Position) + p.nav.RemainingDistance()
	next := NextPhase(p.phase, st, p.cruiseAltitude(), distToDest)
	p.setPhase(next)
	if p.phaseFresh && p.verbose {
		godump.Dump(st)
	}

	guidance := p.nav.Update(st.Position)

	// Terrain escape overrides everything else; inhibited on the
	// ground and in the landing configuration, where low AGL is the
	// point.
	landing := p.phase == PhaseLanding && st.GearDown
	if !st.OnGround && !landing {
		if alert := p.taws.PredictConflict(st, tawsLookAheadSec); alert.Level == taws.AlertPullUp {
			p.escapeTerrain(alert)
			return nil
		}
	}

	if !safety.OK() {
		p.lg.Warn("systems probe failed, holding commands",
			slog.Float64("rpm", float64(st.EngineRPM)))
		return nil
	}

	p.act(st, guidance)
	p.phaseFresh = false
	return nil
}

func (p *Pilot) cruiseAltitude() float32 {
	if p.nav.Plan != nil && p.nav.Plan.CruiseAltitude > 0 {
		return p.nav.Plan.CruiseAltitude
	}
	return p.acft.CruiseAltitude
}

func (p *Pilot) cruiseSpeed() float32 {
	if p.nav.Plan != nil && p.nav.Plan.CruiseSpeed > 0 {
		return p.nav.Plan.CruiseSpeed
	}
	return p.acft.CruiseSpeed
}

// grossWeight estimates current weight from the configured stations
// plus fuel on board.
func (p *Pilot) grossWeight(st aviation.AircraftState) float32 {
	w := p.acft.EmptyWeight + st.FuelGallons*avgasPoundsPerGal
	for _, item := range p.acft.Stations {
		w += item.Weight
	}
	return w
}

func (p *Pilot) send(cmds ...bridge.Command) {
	for _, cmd := range cmds {
		if err := p.bridge.Send(cmd); err != nil {
			p.lg.Debugf("%s: send: %v", cmd.Op, err)
		}
	}
}

// escapeTerrain flies the terrain escape: full power, climb to the
// prescribed target.
func (p *Pilot) escapeTerrain(alert taws.Alert) {
	m := taws.Escape(alert)
	p.lg.Warn("terrain escape", slog.Float64("target", float64(m.TargetAltitude)),
		slog.Float64("agl", float64(alert.AGL)))
	p.send(
		bridge.Throttle(1),
		bridge.APMaster(true),
		bridge.APAltitude(m.TargetAltitude),
		bridge.APVerticalSpeed(1500),
	)
}

// act emits this tick's commands for the current phase. Entry actions
// run on the first tick in a phase.
func (p *Pilot) act(st aviation.AircraftState, guidance nav.Guidance) {
	switch p.phase {
	case PhasePreflight:
		if p.phaseFresh {
			p.send(
				bridge.ParkingBrake(true),
				bridge.SetLight(bridge.LightNav, true),
				bridge.SetLight(bridge.LightBeacon, true),
			)
			p.preflightChecks(st)
		}

	case PhaseTaxiOut:
		if p.phaseFresh {
			p.send(bridge.SetLight(bridge.LightTaxi, true))
		}

	case PhaseTakeoff:
		if p.phaseFresh {
			p.fieldElev = p.taws.ElevationAt(st.Position)
			p.vspeeds = p.takeoffVSpeeds(st)
			p.send(
				bridge.SetLight(bridge.LightLanding, true),
				bridge.SetLight(bridge.LightStrobe, true),
				bridge.ParkingBrake(false),
			)
		}
		p.send(bridge.Throttle(1))
		if st.OnGround && st.IAS > 1.3*p.vspeeds.Vs {
			p.send(bridge.Elevator(0.4)) // rotate
		}
		if !st.OnGround && st.Altitude-p.fieldElev > 50 && st.VerticalSpeed > 0 {
			p.send(bridge.Gear(false), bridge.Flaps(0))
		}

	case PhaseClimb:
		if p.phaseFresh {
			p.send(bridge.APMaster(true), bridge.APNav(true))
		}
		p.send(
			bridge.APAltitude(p.cruiseAltitude()),
			bridge.APSpeed(0.75*p.cruiseSpeed()),
			bridge.APHeading(guidance.Heading),
		)

	case PhaseCruise:
		p.send(
			bridge.APAltitude(p.cruiseAltitude()),
			bridge.APSpeed(p.cruiseSpeed()),
			bridge.APHeading(guidance.Heading),
		)

	case PhaseDescent:
		if p.phaseFresh {
			p.planLanding(st)
		}
		p.send(
			bridge.APAltitude(descentAltitude),
			bridge.APHeading(guidance.Heading),
		)

	case PhaseApproach:
		if p.phaseFresh {
			p.monitor.Reset()
			p.send(bridge.APApproach(true))
		}
		if st.Altitude < gearExtendAGL+p.fieldElev {
			p.send(
				bridge.Gear(true),
				bridge.Flaps(50),
				bridge.SetLight(bridge.LightLanding, true),
			)
		}
		p.monitorApproach(st, guidance)

	case PhaseLanding:
		p.send(bridge.Flaps(100), bridge.Gear(true))
		if st.OnGround {
			p.send(bridge.Throttle(0), bridge.Brakes(0.4))
		} else {
			p.monitorApproach(st, guidance)
		}

	case PhaseTaxiIn:
		if p.phaseFresh {
			p.send(
				bridge.Throttle(0),
				bridge.SetLight(bridge.LightTaxi, true),
				bridge.SetLight(bridge.LightLanding, false),
				bridge.SetLight(bridge.LightStrobe, false),
			)
		}

	case PhaseShutdown:
		if p.phaseFresh {
			p.send(
				bridge.ParkingBrake(true),
				bridge.Throttle(0),
				bridge.Mixture(0),
				bridge.Magnetos(0),
				bridge.EngineStop(),
				bridge.SetLight(bridge.LightTaxi, false),
				bridge.SetLight(bridge.LightNav, false),
				bridge.SetLight(bridge.LightBeacon, false),
			)
		}
	}
}

// preflightChecks runs weight and balance and, when a departure METAR
// is on hand, the weather suitability call.
func (p *Pilot) preflightChecks(st aviation.AircraftState) {
	items := append([]perf.WeightItem{
		{Name: "empty", Weight: p.acft.EmptyWeight, Arm: p.acft.EmptyArm},
		{Name: "fuel", Weight: st.FuelGallons * avgasPoundsPerGal, Arm: p.acft.EmptyArm},
	}, p.acft.Stations...)

	wb, err := perf.ComputeWB(items, p.acft.Envelope)
	if err != nil {
		p.lg.Errorf("weight and balance: %v", err)
	} else {
		p.lg.Info("weight and balance", slog.Float64("weight", float64(wb.TotalWeight)),
			slog.Float64("cg_pct_mac", float64(wb.CGPercentMAC)),
			slog.String("status", wb.Status.String()))
		if wb.Status != perf.WBOK {
			p.lg.Warn("loading outside envelope", slog.String("status", wb.Status.String()))
		}
	}

	if p.nav.Plan == nil {
		return
	}
	if m, ok := p.wx.Get(p.nav.Plan.Departure); ok && !m.SuitableForTakeoff() {
		p.lg.Warn("departure weather below takeoff minima", slog.String("station", m.Station),
			slog.String("raw", m.Raw))
	}
}

func (p *Pilot) takeoffVSpeeds(st aviation.AircraftState) perf.VSpeeds {
	env := perf.Environment{
		FieldElevation: p.fieldElev,
		TemperatureC:   perf.StandardTempC,
		Altimeter:      st.Altimeter,
	}
	if p.nav.Plan != nil {
		if m, ok := p.wx.Get(p.nav.Plan.Departure); ok {
			env.TemperatureC = m.Temperature
			env.Wind = aviation.Wind{Direction: float32(m.WindDir), Speed: float32(m.WindSpeed), Gust: float32(m.WindGust)}
		}
	}
	return perf.ComputeVSpeeds(p.grossWeight(st), env, perf.Configuration{Flaps: st.Flaps, GearDown: true})
}

// planLanding picks the landing runway at the destination from the
// cached weather and the runway database, and computes the approach
// speeds.
func (p *Pilot) planLanding(st aviation.AircraftState) {
	p.vspeeds = perf.ComputeVSpeeds(p.grossWeight(st), perf.Environment{Altimeter: st.Altimeter},
		perf.Configuration{Flaps: 50, GearDown: true})

	if p.runways == nil || p.nav.Plan == nil || p.nav.Plan.Arrival == "" {
		return
	}
	runways, err := p.runways.Runways(p.nav.Plan.Arrival)
	if err != nil {
		p.lg.Warnf("%s: %v", p.nav.Plan.Arrival, err)
		return
	}

	env := perf.Environment{
		TemperatureC: perf.StandardTempC,
		Altimeter:    st.Altimeter,
	}
	if m, ok := p.wx.Get(p.nav.Plan.Arrival); ok {
		env.Wind = aviation.Wind{Direction: float32(m.WindDir), Speed: float32(m.WindSpeed), Gust: float32(m.WindGust)}
		env.TemperatureC = m.Temperature
		if !m.SuitableForLanding() {
			p.lg.Warn("destination weather below landing minima", slog.String("station", m.Station))
		}
	}

	required := perf.LandingDistance(p.grossWeight(st), env)
	wind := env.Wind
	rwy, err := aviation.SelectRunway(runways, wind, aviation.LandingCriteria(required))
	if err != nil {
		p.lg.Errorf("%s: %v", p.nav.Plan.Arrival, err)
		return
	}
	p.landingRwy = &rwy
	p.fieldElev = p.taws.ElevationAt(rwy.Threshold)
	p.lg.Info("landing runway", slog.String("airport", rwy.Airport), slog.String("runway", rwy.Id),
		slog.Float64("required_ft", float64(required)), slog.Bool("ils", rwy.HasILS))
}

// divert replaces the flight plan with a direct leg to the nearest
// field in the runway database. The original plan is snapshotted first
// and restored if no runway there is usable.
func (p *Pilot) divert(st aviation.AircraftState) {
	if p.runways == nil || p.nav.Plan == nil {
		return
	}

	var nearest string
	var nearestDist float32
	var nearestPos math.Point2LL
	for icao, rwys := range p.runways.Airports {
		if len(rwys) == 0 {
			continue
		}
		if d := math.NMDistance2LL(st.Position, rwys[0].Threshold); nearest == "" || d < nearestDist {
			nearest, nearestDist, nearestPos = icao, d, rwys[0].Threshold
		}
	}
	if nearest == "" || nearest == p.nav.Plan.Arrival {
		return
	}

	snap := p.nav.TakeSnapshot()
	p.nav.Plan = &nav.FlightPlan{
		Departure:      p.nav.Plan.Departure,
		Arrival:        nearest,
		CruiseAltitude: p.nav.Plan.CruiseAltitude,
		CruiseSpeed:    p.nav.Plan.CruiseSpeed,
		Waypoints: []aviation.Waypoint{
			{Id: nearest, Type: aviation.WaypointAirport, Location: nearestPos},
		},
	}
	p.nav.Reset()

	p.landingRwy = nil
	p.planLanding(st)
	if p.landingRwy == nil {
		p.lg.Warn("diversion field unusable, keeping plan", slog.String("airport", nearest))
		p.nav.Restore(snap)
		return
	}
	p.lg.Warn("diverting", slog.String("airport", nearest),
		slog.Float64("distance_nm", float64(nearestDist)))
}

// monitorApproach runs the stabilized-approach checks; a trigger
// commits the pilot to an immediate go-around.
func (p *Pilot) monitorApproach(st aviation.AircraftState, guidance nav.Guidance) {
	// Measure against the selected runway threshold when one has been
	// picked, otherwise against the active waypoint.
	dist, xtk := guidance.DistanceNM, guidance.CrossTrackNM
	if rwy := p.landingRwy; rwy != nil {
		dist = math.NMDistance2LL(st.Position, rwy.Threshold)
		// Cross-track from the extended centerline, final approach
		// fix toward the threshold.
		faf := math.Offset2LL(rwy.Threshold, math.OppositeHeading(rwy.Heading), 10)
		xtk = math.CrossTrackErrorNM(faf, rwy.Threshold, st.Position)
	}

	agl := st.Altitude - p.fieldElev
	state := approach.State{
		AGL:            agl,
		Altitude:       st.Altitude,
		TargetAltitude: p.fieldElev + dist*glideslopeFeetPerNM(),
		IAS:            st.IAS,
		TargetSpeed:    p.vspeeds.Vapp,
		VerticalSpeed:  st.VerticalSpeed,
		Glideslope:     glideslopeDots(agl, dist),
		Localizer:      localizerDots(xtk, dist),
		GearDown:       st.GearDown,
		Flaps:          st.Flaps,
	}

	if _, called := p.monitor.GoAroundCalled(); called {
		return
	}
	if _, reason := p.monitor.Update(state); reason != approach.GoAroundNone {
		p.goAround(reason)
	}
}

func (p *Pilot) goAround(reason approach.GoAroundReason) {
	p.lg.Warn("executing go-around", slog.String("reason", reason.String()))
	p.send(
		bridge.Throttle(1),
		bridge.Flaps(50),
		bridge.APMaster(true),
		bridge.APAltitude(p.fieldElev+goAroundClimb),
		bridge.APVerticalSpeed(1000),
		bridge.APApproach(false),
	)
}

// glideslopeFeetPerNM is the height of a 3 degree path per NM along it.
func glideslopeFeetPerNM() float32 {
	return math.Tan(math.Radians(glideslopeAngle)) * math.NauticalMilesToFeet
}

// glideslopeDots converts height above field and distance to run into
// CDI dots relative to the standard glidepath; positive is above the
// path.
func glideslopeDots(heightFt, distNM float32) float32 {
	if distNM <= 0 {
		return 0
	}
	angle := math.Degrees(math.Atan2(heightFt, distNM*math.NauticalMilesToFeet))
	return (angle - glideslopeAngle) / dotGlideslope
}

// localizerDots converts cross-track distance into CDI dots; positive
// is right of course.
func localizerDots(crossTrackNM, distNM float32) float32 {
	if distNM <= 0 {
		return 0
	}
	angle := math.Degrees(math.Atan2(crossTrackNM, distNM))
	return angle / dotLocalizer
}
