package currency

import (
	"context"
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// ReverseGeocoder maps a position to an ISO 3166-1 alpha-2 country code.
type ReverseGeocoder interface {
	Country(ctx context.Context, pos Position) (string, error)
}

// City is a reference point used by NearestCityGeocoder.
type City struct {
	Name      string
	Country   string
	Latitude  float64
	Longitude float64
}

// NearestCityGeocoder is an offline reverse geocoder: it picks the country of
// the closest known population center within MaxDistanceKm.
type NearestCityGeocoder struct {
	Cities        []City
	MaxDistanceKm float64
}

var _ ReverseGeocoder = (*NearestCityGeocoder)(nil)

// NewNearestCityGeocoder returns a geocoder seeded with the built-in cities.
func NewNearestCityGeocoder() *NearestCityGeocoder {
	return &NearestCityGeocoder{
		Cities:        defaultCities,
		MaxDistanceKm: 400,
	}
}

func (g *NearestCityGeocoder) Country(ctx context.Context, pos Position) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !pos.Valid() {
		return "", fmt.Errorf("%w: position %v out of range", ErrSignalUnavailable, pos)
	}

	best := -1
	bestDistance := math.MaxFloat64
	for i, city := range g.Cities {
		d := haversineKm(pos.Latitude, pos.Longitude, city.Latitude, city.Longitude)
		if d < bestDistance {
			best, bestDistance = i, d
		}
	}

	if best < 0 || (g.MaxDistanceKm > 0 && bestDistance > g.MaxDistanceKm) {
		return "", fmt.Errorf("%w: no reference city near %.3f,%.3f", ErrCountryNotFound, pos.Latitude, pos.Longitude)
	}
	return normalizeCountry(g.Cities[best].Country), nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

var defaultCities = []City{
	{"New York", "US", 40.7128, -74.0060},
	{"Chicago", "US", 41.8781, -87.6298},
	{"Houston", "US", 29.7604, -95.3698},
	{"Denver", "US", 39.7392, -104.9903},
	{"Los Angeles", "US", 34.0522, -118.2437},
	{"Seattle", "US", 47.6062, -122.3321},
	{"Miami", "US", 25.7617, -80.1918},
	{"Toronto", "CA", 43.6532, -79.3832},
	{"Montreal", "CA", 45.5017, -73.5673},
	{"Vancouver", "CA", 49.2827, -123.1207},
	{"Calgary", "CA", 51.0447, -114.0719},
	{"Mexico City", "MX", 19.4326, -99.1332},
	{"Monterrey", "MX", 25.6866, -100.3161},
	{"Sao Paulo", "BR", -23.5505, -46.6333},
	{"Rio de Janeiro", "BR", -22.9068, -43.1729},
	{"Brasilia", "BR", -15.7939, -47.8828},
	{"Buenos Aires", "AR", -34.6037, -58.3816},
	{"Santiago", "CL", -33.4489, -70.6693},
	{"Bogota", "CO", 4.7110, -74.0721},
	{"Lima", "PE", -12.0464, -77.0428},
	{"London", "GB", 51.5074, -0.1278},
	{"Manchester", "GB", 53.4808, -2.2426},
	{"Dublin", "IE", 53.3498, -6.2603},
	{"Paris", "FR", 48.8566, 2.3522},
	{"Lyon", "FR", 45.7640, 4.8357},
	{"Madrid", "ES", 40.4168, -3.7038},
	{"Barcelona", "ES", 41.3874, 2.1686},
	{"Lisbon", "PT", 38.7223, -9.1393},
	{"Amsterdam", "NL", 52.3676, 4.9041},
	{"Brussels", "BE", 50.8503, 4.3517},
	{"Berlin", "DE", 52.5200, 13.4050},
	{"Munich", "DE", 48.1351, 11.5820},
	{"Hamburg", "DE", 53.5511, 9.9937},
	{"Zurich", "CH", 47.3769, 8.5417},
	{"Vienna", "AT", 48.2082, 16.3738},
	{"Rome", "IT", 41.9028, 12.4964},
	{"Milan", "IT", 45.4642, 9.1900},
	{"Copenhagen", "DK", 55.6761, 12.5683},
	{"Oslo", "NO", 59.9139, 10.7522},
	{"Stockholm", "SE", 59.3293, 18.0686},
	{"Helsinki", "FI", 60.1699, 24.9384},
	{"Warsaw", "PL", 52.2297, 21.0122},
	{"Prague", "CZ", 50.0755, 14.4378},
	{"Budapest", "HU", 47.4979, 19.0402},
	{"Athens", "GR", 37.9838, 23.7275},
	{"Istanbul", "TR", 41.0082, 28.9784},
	{"Kyiv", "UA", 50.4501, 30.5234},
	{"Moscow", "RU", 55.7558, 37.6173},
	{"Dubai", "AE", 25.2048, 55.2708},
	{"Riyadh", "SA", 24.7136, 46.6753},
	{"Kuwait City", "KW", 29.3759, 47.9774},
	{"Tel Aviv", "IL", 32.0853, 34.7818},
	{"Cairo", "EG", 30.0444, 31.2357},
	{"Lagos", "NG", 6.5244, 3.3792},
	{"Nairobi", "KE", -1.2921, 36.8219},
	{"Johannesburg", "ZA", -26.2041, 28.0473},
	{"Cape Town", "ZA", -33.9249, 18.4241},
	{"Mumbai", "IN", 19.0760, 72.8777},
	{"Delhi", "IN", 28.7041, 77.1025},
	{"Bangalore", "IN", 12.9716, 77.5946},
	{"Karachi", "PK", 24.8607, 67.0011},
	{"Bangkok", "TH", 13.7563, 100.5018},
	{"Ho Chi Minh City", "VN", 10.8231, 106.6297},
	{"Hanoi", "VN", 21.0278, 105.8342},
	{"Jakarta", "ID", -6.2088, 106.8456},
	{"Kuala Lumpur", "MY", 3.1390, 101.6869},
	{"Singapore", "SG", 1.3521, 103.8198},
	{"Manila", "PH", 14.5995, 120.9842},
	{"Hong Kong", "HK", 22.3193, 114.1694},
	{"Shanghai", "CN", 31.2304, 121.4737},
	{"Beijing", "CN", 39.9042, 116.4074},
	{"Shenzhen", "CN", 22.5431, 114.0579},
	{"Taipei", "TW", 25.0330, 121.5654},
	{"Seoul", "KR", 37.5665, 126.9780},
	{"Tokyo", "JP", 35.6762, 139.6503},
	{"Osaka", "JP", 34.6937, 135.5023},
	{"Sydney", "AU", -33.8688, 151.2093},
	{"Melbourne", "AU", -37.8136, 144.9631},
	{"Perth", "AU", -31.9505, 115.8605},
	{"Auckland", "NZ", -36.8485, 174.7633},
}
