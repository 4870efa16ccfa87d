package schema

const (
	DefaultRegionSpan = 0.04
)

// Region is the map viewport tracked around the current location
type Region struct {
	Center         Location `json:"center"`
	LatitudeDelta  float64  `json:"latitude_delta"`
	LongitudeDelta float64  `json:"longitude_delta"`
}

func NewRegion(center Location) Region {
	return Region{
		Center:         center,
		LatitudeDelta:  DefaultRegionSpan,
		LongitudeDelta: DefaultRegionSpan,
	}
}

// AddressComponent - political description of a location
type AddressComponent struct {
	Country string `json:"country"`
	State   string `json:"state"`
	County  string `json:"county"`
	Address string `json:"address"`
}
