package delivery

import (
	"math"
	"testing"
)

// TestEstimateCoincidentPoints проверяет нулевое расстояние и базовое время.
func TestEstimateCoincidentPoints(t *testing.T) {
	est := NewEstimator(40, 20, nil)

	got := est.Estimate(41.0082, 28.9784, 41.0082, 28.9784, "")
	if got.DistanceKm != 0 {
		t.Fatalf("expected zero distance, got %v", got.DistanceKm)
	}
	if got.TotalMinutes != 20 {
		t.Fatalf("expected total to equal prep minutes, got %v", got.TotalMinutes)
	}
	if got.DisplayRange != "20-25 dk" {
		t.Fatalf("unexpected range: %s", got.DisplayRange)
	}
}

// TestEstimateKnownDistance проверяет хаверсин на известной паре точек.
func TestEstimateKnownDistance(t *testing.T) {
	est := NewEstimator(40, 0, nil)

	// Стамбул (Кадыкёй) -> Стамбул (Бешикташ), порядка 7 км по прямой.
	got := est.Estimate(40.9830, 29.0291, 41.0430, 29.0061, "")
	if got.DistanceKm < 6 || got.DistanceKm > 8 {
		t.Fatalf("expected ~7 km, got %v", got.DistanceKm)
	}

	wantTravel := got.DistanceKm / 40 * 60
	if math.Abs(got.TravelMinutes-wantTravel) > 1e-9 {
		t.Fatalf("expected travel %v, got %v", wantTravel, got.TravelMinutes)
	}
}

// TestEstimateSurcharge проверяет надбавку из таблицы по имени ресторана.
func TestEstimateSurcharge(t *testing.T) {
	est := NewEstimator(40, 20, map[string]float64{"Pide Durağı": 10})

	plain := est.Estimate(41, 29, 41, 29, "Başka Yer")
	slow := est.Estimate(41, 29, 41, 29, "Pide Durağı")

	if slow.TotalMinutes-plain.TotalMinutes != 10 {
		t.Fatalf("expected +10 minutes surcharge, got %v vs %v", slow.TotalMinutes, plain.TotalMinutes)
	}
}

// TestDisplayRangeBuckets проверяет округление вниз до кратного 5.
func TestDisplayRangeBuckets(t *testing.T) {
	cases := map[float64]string{
		23: "20-25 dk",
		20: "20-25 dk",
		4:  "0-5 dk",
		59: "55-60 dk",
	}

	for minutes, want := range cases {
		if got := displayRange(minutes); got != want {
			t.Fatalf("displayRange(%v): expected %s, got %s", minutes, want, got)
		}
	}
}
