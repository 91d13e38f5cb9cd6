package domain

import "fmt"

// TariffClass is one of the two mutually exclusive pricing regimes.
type TariffClass string

const (
	TariffPeak    TariffClass = "peak"     // Hochtarif (HT)
	TariffOffPeak TariffClass = "off_peak" // Niedertarif (NT)
)

// SavingsTip is a static recommendation surfaced with the pricing config.
type SavingsTip struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	PotentialSavings string `json:"potential_savings"`
}

// TariffConfig holds the dual-tariff (Doppeltarif) pricing rules. Loaded once
// at startup and passed by reference; immutable for the life of the process.
// The peak window applies on weekdays only; everything else is off-peak, so
// the two classes partition every (hour, weekday-flag) combination.
type TariffConfig struct {
	Currency       string  `json:"currency"`
	CurrencySymbol string  `json:"currency_symbol"`
	PeakName       string  `json:"peak_name"`
	OffPeakName    string  `json:"off_peak_name"`
	PeakRate       float64 `json:"peak_rate_per_kwh"`     // currency per kWh
	OffPeakRate    float64 `json:"off_peak_rate_per_kwh"` // currency per kWh
	AverageRate    float64 `json:"average_rate_per_kwh"`
	PeakStartHour  int     `json:"peak_start_hour"` // inclusive
	PeakEndHour    int     `json:"peak_end_hour"`   // exclusive

	SavingsTips []SavingsTip `json:"savings_tips,omitempty"`
}

// DefaultSwissTariff returns typical Zurich-area residential rates.
func DefaultSwissTariff() *TariffConfig {
	return &TariffConfig{
		Currency:       "CHF",
		CurrencySymbol: "Fr.",
		PeakName:       "Hochtarif (HT)",
		OffPeakName:    "Niedertarif (NT)",
		PeakRate:       0.32,
		OffPeakRate:    0.22,
		AverageRate:    0.27,
		PeakStartHour:  7,
		PeakEndHour:    20,
		SavingsTips: []SavingsTip{
			{
				Title:            "Shift laundry to off-peak",
				Description:      "Run washing machine and dryer after 20:00 or on weekends",
				PotentialSavings: "~30% on laundry costs",
			},
			{
				Title:            "Charge EV overnight",
				Description:      "Schedule EV charging between 22:00-06:00 for lowest rates",
				PotentialSavings: "~31% vs daytime charging",
			},
			{
				Title:            "Dishwasher timing",
				Description:      "Use delay start to run after 20:00",
				PotentialSavings: "~30% on dishwashing costs",
			},
			{
				Title:            "Weekend cooking",
				Description:      "Heavy cooking (oven, multiple appliances) costs less on weekends",
				PotentialSavings: "~31% on cooking energy",
			},
		},
	}
}

// Classify maps (hour-of-day, weekend flag) to a tariff class and its rate.
// Pure and total: weekends are always off-peak, weekday hours inside
// [PeakStartHour, PeakEndHour) are peak, the rest off-peak.
func (c *TariffConfig) Classify(hour int, isWeekend bool) (TariffClass, float64) {
	if isWeekend {
		return TariffOffPeak, c.OffPeakRate
	}
	if hour >= c.PeakStartHour && hour < c.PeakEndHour {
		return TariffPeak, c.PeakRate
	}
	return TariffOffPeak, c.OffPeakRate
}

// Rate returns the rate for a tariff class.
func (c *TariffConfig) Rate(class TariffClass) float64 {
	if class == TariffPeak {
		return c.PeakRate
	}
	return c.OffPeakRate
}

// HourRate is one row of the per-hour rate table used by frontends.
type HourRate struct {
	Hour          int         `json:"hour"`
	HourLabel     string      `json:"hour_label"`
	WeekdayRate   float64     `json:"weekday_rate"`
	WeekdayTariff TariffClass `json:"weekday_tariff"`
	WeekendRate   float64     `json:"weekend_rate"`
	WeekendTariff TariffClass `json:"weekend_tariff"`
}

// HourlyRates returns the rate for every hour of day, weekday and weekend.
func (c *TariffConfig) HourlyRates() []HourRate {
	rates := make([]HourRate, 0, 24)
	for hour := 0; hour < 24; hour++ {
		weekdayClass, weekdayRate := c.Classify(hour, false)
		weekendClass, weekendRate := c.Classify(hour, true)
		rates = append(rates, HourRate{
			Hour:          hour,
			HourLabel:     fmt.Sprintf("%02d:00", hour),
			WeekdayRate:   weekdayRate,
			WeekdayTariff: weekdayClass,
			WeekendRate:   weekendRate,
			WeekendTariff: weekendClass,
		})
	}
	return rates
}
