package sim

// TrafficModel selects how a node's traffic generator supplies packets.
type TrafficModel string

const (
	// TrafficSaturated keeps exactly one packet outstanding: the queue is
	// refilled (with a small arrival jitter) as soon as it drains.
	TrafficSaturated TrafficModel = "saturated"
	// TrafficPoisson generates exponential inter-arrival times and drops
	// arrivals when the queue is at capacity.
	TrafficPoisson TrafficModel = "poisson"
)

// AdaptationLaw selects the control law driving a node's dynamic sensing
// threshold.
type AdaptationLaw string

const (
	// AdaptHysteresis steps the threshold by ±1 depending on whether the
	// gap since the node's own last transmission is under or over target.
	AdaptHysteresis AdaptationLaw = "hysteresis"
	// AdaptAIMD applies multiplicative decrease / additive increase on an
	// exponential moving average of the transmission gap.
	AdaptAIMD AdaptationLaw = "aimd"
)

// MACConfig groups the node-side MAC parameters shared by all nodes of a
// scenario. Zero value is not usable; start from DefaultMACConfig.
type MACConfig struct {
	TMin   float64 `yaml:"t_min"`   // lower bound of the dynamic sensing threshold
	TMax   float64 `yaml:"t_max"`   // upper bound of the dynamic sensing threshold
	TStart float64 `yaml:"t_start"` // initial threshold value

	Law            AdaptationLaw `yaml:"adaptation_law"`
	EMAAlpha       float64       `yaml:"ema_alpha"`        // smoothing factor for the AIMD gap estimate
	TargetGapSlots float64       `yaml:"target_gap_slots"` // target own-transmission gap, in slot times

	BroadcastInterval  int64 `yaml:"broadcast_interval_ticks"`  // status broadcast cadence
	BroadcastFreshness int64 `yaml:"broadcast_freshness_ticks"` // max broadcast age the sensing rule trusts

	ExtraPenaltyFrac float64 `yaml:"extra_penalty_frac"` // extra CW fraction charged to best-effort on deferral
	JitterSlots      float64 `yaml:"jitter_slots"`       // bound for random penalty/threshold jitter

	DelayThresholdS  float64 `yaml:"delay_threshold_s"` // neighbor mean delay triggering starvation deference
	NRUDelayScale    float64 `yaml:"nru_delay_scale"`   // threshold scale-down for the LBT technology
	PostTxDeferSlots int64   `yaml:"post_tx_defer_slots"`

	PacketBytes int `yaml:"packet_bytes"`
}

// DefaultMACConfig mirrors the reference coexistence parameters: threshold
// starting at 4 within [2,8], 1500-byte packets, 5 ms broadcast freshness.
func DefaultMACConfig() MACConfig {
	return MACConfig{
		TMin:               2,
		TMax:               8,
		TStart:             4,
		Law:                AdaptHysteresis,
		EMAAlpha:           0.25,
		TargetGapSlots:     4,
		BroadcastInterval:  SecondsToTicks(0.002),
		BroadcastFreshness: SecondsToTicks(0.005),
		ExtraPenaltyFrac:   0.25,
		JitterSlots:        1,
		DelayThresholdS:    0.4,
		NRUDelayScale:      0.9,
		PostTxDeferSlots:   1,
		PacketBytes:        1500,
	}
}

// withDefaults fills unset fields so that partially specified YAML
// scenarios cannot produce degenerate loops (zero cadences) or an
// unclamped threshold range.
func (m MACConfig) withDefaults() MACConfig {
	def := DefaultMACConfig()
	if m.TMax <= m.TMin {
		m.TMin, m.TMax = def.TMin, def.TMax
	}
	if m.TStart < m.TMin || m.TStart > m.TMax {
		m.TStart = (m.TMin + m.TMax) / 2
	}
	if m.Law == "" {
		m.Law = def.Law
	}
	if m.EMAAlpha <= 0 || m.EMAAlpha > 1 {
		m.EMAAlpha = def.EMAAlpha
	}
	if m.TargetGapSlots <= 0 {
		m.TargetGapSlots = def.TargetGapSlots
	}
	if m.BroadcastInterval <= 0 {
		m.BroadcastInterval = def.BroadcastInterval
	}
	if m.BroadcastFreshness <= 0 {
		m.BroadcastFreshness = def.BroadcastFreshness
	}
	if m.DelayThresholdS <= 0 {
		m.DelayThresholdS = def.DelayThresholdS
	}
	if m.NRUDelayScale <= 0 {
		m.NRUDelayScale = def.NRUDelayScale
	}
	if m.PacketBytes <= 0 {
		m.PacketBytes = def.PacketBytes
	}
	return m
}

// ControllerConfig groups one controller's arbitration parameters.
type ControllerConfig struct {
	Tech           Technology `yaml:"tech"`
	Band           Band       `yaml:"band"`
	CWMin          int        `yaml:"cw_min"`
	CWMax          int        `yaml:"cw_max"`
	EDThresholdDbm float64    `yaml:"ed_threshold_dbm"`
	BasePos        Position   `yaml:"base_pos"` // base station position, the SINR receiver

	SampleInterval int64 `yaml:"sample_interval_ticks"` // reservation monitor cadence
	BusyThreshold  int   `yaml:"busy_threshold"`        // busy streak that arms the NAV
	NavDuration    int64 `yaml:"nav_duration_ticks"`

	FairnessInterval int64   `yaml:"fairness_interval_ticks"` // fairness monitor cadence
	StarvationFactor float64 `yaml:"starvation_factor"`       // baseline multiplier for the starvation bar
	FastMinRecentTx  int     `yaml:"fast_min_recent_tx"`      // min recent transmissions to count as fast
	FastWindow       int64   `yaml:"fast_window_ticks"`
}

// DefaultControllerConfig returns arbitration parameters for the given
// technology on the given band.
func DefaultControllerConfig(tech Technology, band Band) ControllerConfig {
	return ControllerConfig{
		Tech:             tech,
		Band:             band,
		CWMin:            8,
		CWMax:            256,
		EDThresholdDbm:   -72.0,
		SampleInterval:   SecondsToTicks(0.001),
		BusyThreshold:    5,
		NavDuration:      SecondsToTicks(0.002),
		FairnessInterval: SecondsToTicks(0.010),
		StarvationFactor: 2.0,
		FastMinRecentTx:  5,
		FastWindow:       SecondsToTicks(0.100),
	}
}

// NodeConfig describes one station of a scenario.
type NodeConfig struct {
	Name       string       `yaml:"name"`
	Tech       Technology   `yaml:"tech"`
	Weight     float64      `yaml:"priority_weight"`
	Pos        Position     `yaml:"pos"`
	Traffic    TrafficModel `yaml:"traffic"`
	LambdaPerS float64      `yaml:"lambda_per_s"` // Poisson arrival rate
	QueueLimit int          `yaml:"queue_limit"`  // 0 = unbounded
	PhyRateBps float64      `yaml:"phy_rate_bps"` // 0 = technology default
}
