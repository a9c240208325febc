package traffic

import "strings"

// Highway is a monitored Metro Manila road corridor.
type Highway struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Aliases   []string `json:"-"`
}

// highways is the static corridor catalog. Coordinates mark a representative
// midpoint of each road, not its full extent.
var highways = []Highway{
	{ID: "edsa", Name: "EDSA", Latitude: 14.5547, Longitude: 121.0244, Aliases: []string{"edsa"}},
	{ID: "c5", Name: "C-5 Road", Latitude: 14.5657, Longitude: 121.0614, Aliases: []string{"c5", "c-5"}},
	{ID: "commonwealth", Name: "Commonwealth Avenue", Latitude: 14.6760, Longitude: 121.0685, Aliases: []string{"commonwealth"}},
	{ID: "quezon-ave", Name: "Quezon Avenue", Latitude: 14.6417, Longitude: 121.0325, Aliases: []string{"quezon ave", "quezon avenue"}},
	{ID: "espana", Name: "España Boulevard", Latitude: 14.6096, Longitude: 120.9919, Aliases: []string{"españa", "espana"}},
	{ID: "roxas-blvd", Name: "Roxas Boulevard", Latitude: 14.5716, Longitude: 120.9822, Aliases: []string{"roxas"}},
	{ID: "marcos-highway", Name: "Marcos Highway", Latitude: 14.6205, Longitude: 121.1030, Aliases: []string{"marcos highway", "marcos hwy", "marilaque"}},
	{ID: "ortigas-ave", Name: "Ortigas Avenue", Latitude: 14.5866, Longitude: 121.0617, Aliases: []string{"ortigas"}},
	{ID: "shaw-blvd", Name: "Shaw Boulevard", Latitude: 14.5813, Longitude: 121.0530, Aliases: []string{"shaw"}},
	{ID: "aurora-blvd", Name: "Aurora Boulevard", Latitude: 14.6133, Longitude: 121.0550, Aliases: []string{"aurora"}},
	{ID: "taft-ave", Name: "Taft Avenue", Latitude: 14.5608, Longitude: 120.9948, Aliases: []string{"taft"}},
	{ID: "katipunan", Name: "Katipunan Avenue", Latitude: 14.6390, Longitude: 121.0740, Aliases: []string{"katipunan"}},
}

// Highways returns the monitored corridor catalog.
func Highways() []Highway {
	out := make([]Highway, len(highways))
	copy(out, highways)
	return out
}

// FindHighway resolves a catalog entry by ID.
func FindHighway(id string) (Highway, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, h := range highways {
		if h.ID == id {
			return h, true
		}
	}
	return Highway{}, false
}

// mentionsHighway reports whether alert text names the given corridor.
func mentionsHighway(text string, h Highway) bool {
	lower := strings.ToLower(text)
	for _, alias := range h.Aliases {
		if strings.Contains(lower, alias) {
			return true
		}
	}
	return false
}
