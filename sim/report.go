package sim

import (
	"fmt"
	"sort"
)

// NodeReport is the per-node slice of the final report.
type NodeReport struct {
	ID           NodeID     `json:"id"`
	Name         string     `json:"name"`
	Tech         Technology `json:"tech"`
	Category     string     `json:"access_category"`
	Throughput   float64    `json:"throughput_tx_per_s"`
	MeanDelayS   float64    `json:"mean_delay_s"`
	DelayP95S    float64    `json:"delay_p95_s"`
	TxCount      int        `json:"tx_count"`
	BackoffCount int        `json:"backoff_count"`
	Successes    int        `json:"successes"`
	Losses       int        `json:"losses"`
	Drops        int        `json:"drops"`
	LossRate     float64    `json:"loss_rate"`
	QueueLen     int        `json:"queue_len"`
	Starved      bool       `json:"starved"`
}

// TimeSeriesSample is one instantaneous-rate sample taken by the periodic
// report sampler, consumed by external plotting tooling.
type TimeSeriesSample struct {
	TimeS       float64            `json:"time_s"`
	Fairness    float64            `json:"fairness"`
	Throughputs map[NodeID]float64 `json:"throughputs"`
}

// Report is the read-only snapshot handed to the orchestration layer. It
// must only be built between or after runs, never from inside the
// cooperative loop.
type Report struct {
	Nodes                []NodeReport           `json:"nodes"`
	AvgThroughputPerTech map[Technology]float64 `json:"avg_throughput_per_tech"`
	Fairness             float64                `json:"fairness"`
	FairnessByClass      map[string]float64     `json:"fairness_by_class"`
	StarvedNodes         []NodeID               `json:"starved_nodes"`
	TimeSeries           []TimeSeriesSample     `json:"time_series,omitempty"`
}

// BuildReport derives the final statistics for the given roster at time
// now. Cumulative throughput feeds both the global Jain index and the
// per-access-class partition.
func (m *Metrics) BuildReport(nodes []*Node, now int64) *Report {
	tp := m.CumulativeThroughputs(now)

	r := &Report{
		AvgThroughputPerTech: make(map[Technology]float64),
		FairnessByClass:      make(map[string]float64),
	}

	techSum := make(map[Technology]float64)
	techN := make(map[Technology]int)
	classVecs := make(map[AccessCategory][]float64)
	var all []float64

	for _, n := range nodes {
		x := tp[n.ID]
		all = append(all, x)
		starved := m.IsStarved(n.ID, now)
		if starved {
			r.StarvedNodes = append(r.StarvedNodes, n.ID)
		}
		techSum[n.Tech] += x
		techN[n.Tech]++
		classVecs[n.Category] = append(classVecs[n.Category], x)

		r.Nodes = append(r.Nodes, NodeReport{
			ID:           n.ID,
			Name:         n.Name,
			Tech:         n.Tech,
			Category:     n.Category.String(),
			Throughput:   x,
			MeanDelayS:   m.MeanDelaySeconds(n.ID),
			DelayP95S:    TicksToSeconds(int64(CalculatePercentile(m.Delays[n.ID], 95))),
			TxCount:      n.TxCount,
			BackoffCount: n.BackoffCount,
			Successes:    m.Successes[n.ID],
			Losses:       m.Losses[n.ID],
			Drops:        m.Drops[n.ID],
			LossRate:     m.LossRate(n.ID),
			QueueLen:     n.Queue.Len(),
			Starved:      starved,
		})
	}
	sort.Slice(r.Nodes, func(i, j int) bool { return r.Nodes[i].ID < r.Nodes[j].ID })
	sort.Slice(r.StarvedNodes, func(i, j int) bool { return r.StarvedNodes[i] < r.StarvedNodes[j] })

	for tech, sum := range techSum {
		r.AvgThroughputPerTech[tech] = sum / float64(techN[tech])
	}
	r.Fairness = JainFairness(all)
	for cat, vec := range classVecs {
		r.FairnessByClass[cat.String()] = JainFairness(vec)
	}
	return r
}

// Print writes a human-readable summary of the report to stdout.
func (r *Report) Print() {
	fmt.Println("=== Simulation Report ===")
	for _, n := range r.Nodes {
		starved := ""
		if n.Starved {
			starved = "  STARVED"
		}
		fmt.Printf("%-10s (%s/%s): thr=%.1f tx/s  delay=%.4fs  loss=%.3f  backoffs=%d  queue=%d%s\n",
			n.Name, n.Tech, n.Category, n.Throughput, n.MeanDelayS, n.LossRate, n.BackoffCount, n.QueueLen, starved)
	}
	for tech, avg := range r.AvgThroughputPerTech {
		fmt.Printf("avg throughput %-5s : %.1f tx/s\n", tech, avg)
	}
	fmt.Printf("Jain fairness        : %.4f\n", r.Fairness)
	for class, f := range r.FairnessByClass {
		fmt.Printf("fairness [%s] : %.4f\n", class, f)
	}
}
