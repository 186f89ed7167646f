// The timing package tracks frame times for the main loop. Times are in seconds.
package timing

import "time"

// Clock accumulates frame durations. The package level functions use a shared clock,
// but a Clock can be driven manually (e.g. in tests) by passing explicit timestamps.
type Clock struct {
	start      time.Time
	frameStart time.Time

	dt      float32
	elapsed float32

	fpsWindowStart  time.Time
	fpsWindowFrames int
	avgFps          float32
}

func (c *Clock) Reset(now time.Time) {
	*c = Clock{
		start:          now,
		frameStart:     now,
		fpsWindowStart: now,
	}
}

func (c *Clock) FrameStarted(now time.Time) {
	c.frameStart = now
}

func (c *Clock) FrameEnded(now time.Time) {

	c.dt = float32(now.Sub(c.frameStart).Seconds())
	c.elapsed = float32(now.Sub(c.start).Seconds())

	// Average fps is recomputed once per second
	c.fpsWindowFrames++
	windowLen := now.Sub(c.fpsWindowStart)
	if windowLen >= time.Second {
		c.avgFps = float32(float64(c.fpsWindowFrames) / windowLen.Seconds())
		c.fpsWindowFrames = 0
		c.fpsWindowStart = now
	}
}

// DT is the duration of the last completed frame
func (c *Clock) DT() float32 {
	return c.dt
}

// ElapsedTime is the time between Reset and the end of the last completed frame
func (c *Clock) ElapsedTime() float32 {
	return c.elapsed
}

func (c *Clock) AvgFPS() float32 {
	return c.avgFps
}

var (
	clock Clock
)

func Init() {
	clock.Reset(time.Now())
}

func FrameStarted() {
	clock.FrameStarted(time.Now())
}

func FrameEnded() {
	clock.FrameEnded(time.Now())
}

func DT() float32 {
	return clock.DT()
}

func ElapsedTime() float32 {
	return clock.ElapsedTime()
}

func GetAvgFPS() float32 {
	return clock.AvgFPS()
}
