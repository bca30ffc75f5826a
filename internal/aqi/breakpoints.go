package aqi

// Breakpoint maps a concentration band (µg/m³) linearly onto an index band.
// Tables are ordered, contiguous (each ConcHi equals the next ConcLo) and
// start at zero concentration.
type Breakpoint struct {
	ConcLo  float64
	ConcHi  float64
	IndexLo int
	IndexHi int
}

// PM25Breakpoints is the CPCB-style breakpoint table for PM2.5.
var PM25Breakpoints = []Breakpoint{
	{0, 30, 0, 50},
	{30, 60, 51, 100},
	{60, 90, 101, 200},
	{90, 120, 201, 300},
	{120, 250, 301, 400},
	{250, 350, 401, 500},
	{350, 500, 501, 999},
}

// PM10Breakpoints is the CPCB-style breakpoint table for PM10.
var PM10Breakpoints = []Breakpoint{
	{0, 50, 0, 50},
	{50, 100, 51, 100},
	{100, 250, 101, 200},
	{250, 350, 201, 300},
	{350, 430, 301, 400},
	{430, 500, 401, 500},
	{500, 1000, 501, 999},
}
