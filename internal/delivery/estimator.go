package delivery

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

type Estimate struct {
	DistanceKm    float64 `json:"distance_km"`
	TravelMinutes float64 `json:"travel_minutes"`
	TotalMinutes  float64 `json:"total_minutes"`
	DisplayRange  string  `json:"display_range"`
}

// Estimator считает ориентировочное время доставки. Надбавки по ресторанам
// задаются таблицей при конструировании, а не зашиваются в код.
type Estimator struct {
	speedKmh    float64
	prepMinutes float64
	surcharges  map[string]float64
}

// NewEstimator создает эстимейтор с фиксированной средней скоростью курьера,
// временем готовки и таблицей надбавок (имя ресторана -> минуты).
func NewEstimator(speedKmh, prepMinutes float64, surcharges map[string]float64) *Estimator {
	if speedKmh <= 0 {
		speedKmh = 40
	}

	table := make(map[string]float64, len(surcharges))
	for name, extra := range surcharges {
		table[name] = extra
	}

	return &Estimator{
		speedKmh:    speedKmh,
		prepMinutes: prepMinutes,
		surcharges:  table,
	}
}

// Estimate возвращает расстояние по дуге большого круга и оценку времени.
// Координаты не валидируются — это ответственность вызывающего.
func (e *Estimator) Estimate(fromLat, fromLon, toLat, toLon float64, restaurantName string) Estimate {
	distance := haversineKm(fromLat, fromLon, toLat, toLon)
	travel := distance / e.speedKmh * 60

	total := e.prepMinutes + travel
	if extra, ok := e.surcharges[restaurantName]; ok {
		total += extra
	}

	return Estimate{
		DistanceKm:    distance,
		TravelMinutes: travel,
		TotalMinutes:  total,
		DisplayRange:  displayRange(total),
	}
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// displayRange округляет минуты вниз до ближайшего кратного 5
// и отдает диапазон в формате источника: "20-25 dk".
func displayRange(totalMinutes float64) string {
	lower := int(totalMinutes/5) * 5
	return fmt.Sprintf("%d-%d dk", lower, lower+5)
}
