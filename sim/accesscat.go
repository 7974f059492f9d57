package sim

// NodeID identifies a node. Cross-references between nodes, controllers
// and broadcast tables are by ID lookup, never by owning pointer.
type NodeID int

// Technology tags which channel-access method a station uses.
type Technology string

const (
	// TechWiFi is the CSMA/CA technology. It respects controller
	// reservations (NAV) but is not obligated to obey fairness grants.
	TechWiFi Technology = "WiFi"
	// TechNRU is the Listen-Before-Talk technology. It obeys fairness
	// grants but ignores the NAV.
	TechNRU Technology = "NR-U"
)

// BaseSlot returns the technology's base slot duration in ticks, before
// airtime-share scaling.
func (t Technology) BaseSlot() int64 {
	if t == TechNRU {
		return 25_000 // 25 µs
	}
	return 9_000 // 9 µs
}

// SenseMultiplier scales a node's dynamic sensing threshold by
// technology. LBT stations run slightly tighter than CSMA/CA ones.
func (t Technology) SenseMultiplier() float64 {
	if t == TechNRU {
		return 0.9
	}
	return 1.0
}

// DefaultPhyRateBps returns the technology's default PHY rate.
func (t Technology) DefaultPhyRateBps() float64 {
	if t == TechNRU {
		return 100e6
	}
	return 54e6
}

// AccessCategory is the priority class of a station. It determines AIFS,
// sensing sensitivity and penalty treatment.
type AccessCategory int

const (
	// ACBestEffort is the best-effort/low-priority class.
	ACBestEffort AccessCategory = iota
	// ACVoice is the voice/high-priority class.
	ACVoice
)

// highPriorityWeight is the cutoff partitioning priority weights into
// access categories. The partition is deterministic: weight ≥ cutoff maps
// to ACVoice, anything below to ACBestEffort.
const highPriorityWeight = 1.5

// CategoryForWeight maps a priority weight to its access category.
func CategoryForWeight(w float64) AccessCategory {
	if w >= highPriorityWeight {
		return ACVoice
	}
	return ACBestEffort
}

func (ac AccessCategory) String() string {
	if ac == ACVoice {
		return "voice"
	}
	return "best-effort"
}

// AIFSSlots returns the arbitration inter-frame space for the category.
// Voice waits fewer slots than best-effort, as in EDCA.
func (ac AccessCategory) AIFSSlots() int {
	if ac == ACVoice {
		return 2
	}
	return 3
}

// SenseMultiplier scales a node's dynamic sensing threshold. Best-effort
// stations see a tighter multiplier, so they perceive the medium as busy
// sooner than voice stations do.
func (ac AccessCategory) SenseMultiplier() float64 {
	if ac == ACVoice {
		return 1.2
	}
	return 0.8
}
