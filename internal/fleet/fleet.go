// Package fleet models the authorized UAV roster and its link topology.
package fleet

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"firestige.xyz/strix/internal/core"
)

// Vehicle is one authorized fleet member.
type Vehicle struct {
	ID                 string  `yaml:"id"`
	Region             string  `yaml:"region"`
	ConnectionStrength float64 `yaml:"connection_strength"`
	Status             string  `yaml:"status"`

	LastSeen time.Time `yaml:"-"`
}

// Fleet is the authorized roster plus the inter-vehicle link graph.
// The roster is fixed for the duration of a run; only per-vehicle
// status and last-seen markers mutate.
type Fleet struct {
	vehicles map[string]*Vehicle
	order    []string // roster order, stable for deterministic iteration
	links    map[string]map[string]bool
}

// NetworkStats summarizes the topology.
type NetworkStats struct {
	TotalVehicles    int            `json:"total_vehicles"`
	ActiveVehicles   int            `json:"active_vehicles"`
	InactiveVehicles int            `json:"inactive_vehicles"`
	TotalLinks       int            `json:"total_links"`
	AvgLinksPerUnit  float64        `json:"avg_links_per_unit"`
	RegionDistrib    map[string]int `json:"region_distribution"`
	NetworkDensity   float64        `json:"network_density"`
	IsolatedVehicles []string       `json:"isolated_vehicles,omitempty"`
}

var regions = []string{"north", "east", "south", "west", "center"}

// Generate builds the default roster UAV_001..UAV_<size> with paired
// region assignment, random connection strengths and probabilistic
// links. r supplies all randomness so the topology is reproducible.
func Generate(size int, connProbability float64, r *rand.Rand) (*Fleet, error) {
	if size <= 0 {
		return nil, core.ErrRosterEmpty
	}
	f := newFleet()
	for i := 1; i <= size; i++ {
		id := fmt.Sprintf("UAV_%03d", i)
		f.add(&Vehicle{
			ID:                 id,
			Region:             regions[((i-1)/2)%len(regions)],
			ConnectionStrength: 0.5 + r.Float64()*0.5,
			Status:             "active",
		})
	}
	for i := 0; i < len(f.order); i++ {
		for j := i + 1; j < len(f.order); j++ {
			if r.Float64() < connProbability {
				f.Link(f.order[i], f.order[j])
			}
		}
	}
	return f, nil
}

// rosterFile is the YAML shape of an external roster.
type rosterFile struct {
	Fleet struct {
		Vehicles []Vehicle   `yaml:"vehicles"`
		Links    [][2]string `yaml:"links"`
	} `yaml:"fleet"`
}

// LoadFile reads a roster from a YAML file.
func LoadFile(path string) (*Fleet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file %s: %w", path, err)
	}
	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse roster file %s: %w", path, err)
	}
	if len(rf.Fleet.Vehicles) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrRosterEmpty, path)
	}
	f := newFleet()
	for i := range rf.Fleet.Vehicles {
		v := rf.Fleet.Vehicles[i]
		if v.ID == "" {
			return nil, fmt.Errorf("roster file %s: vehicle %d has no id", path, i)
		}
		if v.Status == "" {
			v.Status = "active"
		}
		f.add(&v)
	}
	for _, pair := range rf.Fleet.Links {
		if !f.IsAuthorized(pair[0]) || !f.IsAuthorized(pair[1]) {
			return nil, fmt.Errorf("roster file %s: link references unknown vehicle %v", path, pair)
		}
		f.Link(pair[0], pair[1])
	}
	return f, nil
}

func newFleet() *Fleet {
	return &Fleet{
		vehicles: make(map[string]*Vehicle),
		links:    make(map[string]map[string]bool),
	}
}

func (f *Fleet) add(v *Vehicle) {
	f.vehicles[v.ID] = v
	f.order = append(f.order, v.ID)
	f.links[v.ID] = make(map[string]bool)
}

// Size returns the roster size.
func (f *Fleet) Size() int { return len(f.order) }

// Roster returns vehicle IDs in roster order.
func (f *Fleet) Roster() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// IsAuthorized reports whether id belongs to the roster.
func (f *Fleet) IsAuthorized(id string) bool {
	_, ok := f.vehicles[id]
	return ok
}

// Vehicle returns the roster entry for id, or nil.
func (f *Fleet) Vehicle(id string) *Vehicle {
	return f.vehicles[id]
}

// Link wires a bidirectional link between two roster members.
func (f *Fleet) Link(a, b string) {
	if a == b || !f.IsAuthorized(a) || !f.IsAuthorized(b) {
		return
	}
	f.links[a][b] = true
	f.links[b][a] = true
}

// Connected returns the sorted neighbor set of id.
func (f *Fleet) Connected(id string) []string {
	neighbors := make([]string, 0, len(f.links[id]))
	for n := range f.links[id] {
		neighbors = append(neighbors, n)
	}
	sort.Strings(neighbors)
	return neighbors
}

// MarkSeen records a sighting for an authorized vehicle.
func (f *Fleet) MarkSeen(id string, at time.Time) {
	if v, ok := f.vehicles[id]; ok {
		v.LastSeen = at
	}
}

// RegionVehicles returns roster members assigned to a region.
func (f *Fleet) RegionVehicles(region string) []string {
	var out []string
	for _, id := range f.order {
		if f.vehicles[id].Region == region {
			out = append(out, id)
		}
	}
	return out
}

// FindPath runs a breadth-first search over the link graph and returns
// the hop sequence from source to destination, or nil when unreachable.
func (f *Fleet) FindPath(source, destination string) []string {
	if !f.IsAuthorized(source) || !f.IsAuthorized(destination) {
		return nil
	}
	if source == destination {
		return []string{source}
	}
	visited := map[string]bool{source: true}
	type node struct {
		id   string
		path []string
	}
	queue := []node{{id: source, path: []string{source}}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range f.Connected(current.id) {
			if visited[neighbor] {
				continue
			}
			next := append(append([]string{}, current.path...), neighbor)
			if neighbor == destination {
				return next
			}
			visited[neighbor] = true
			queue = append(queue, node{id: neighbor, path: next})
		}
	}
	return nil
}

// Isolated returns vehicles with no links, in roster order.
func (f *Fleet) Isolated() []string {
	var out []string
	for _, id := range f.order {
		if len(f.links[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// HighlyConnected returns vehicles with at least min links.
func (f *Fleet) HighlyConnected(min int) []string {
	var out []string
	for _, id := range f.order {
		if len(f.links[id]) >= min {
			out = append(out, id)
		}
	}
	return out
}

// Stats computes topology statistics for reporting.
func (f *Fleet) Stats() NetworkStats {
	total := len(f.order)
	active := 0
	regionCounts := make(map[string]int)
	totalLinks := 0
	for _, id := range f.order {
		v := f.vehicles[id]
		if v.Status == "active" {
			active++
		}
		regionCounts[v.Region]++
		totalLinks += len(f.links[id])
	}
	totalLinks /= 2 // each link counted from both ends

	stats := NetworkStats{
		TotalVehicles:    total,
		ActiveVehicles:   active,
		InactiveVehicles: total - active,
		TotalLinks:       totalLinks,
		RegionDistrib:    regionCounts,
		IsolatedVehicles: f.Isolated(),
	}
	if total > 0 {
		stats.AvgLinksPerUnit = float64(totalLinks) / float64(total)
	}
	if total > 1 {
		stats.NetworkDensity = float64(totalLinks) / (float64(total) * float64(total-1) / 2)
	}
	return stats
}
