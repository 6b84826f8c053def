package system

// Clock reports the current tick number. cmd/hullsim passes Runner.Ticks.
type Clock func() uint64
